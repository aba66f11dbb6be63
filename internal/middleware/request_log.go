package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RequestObserver receives one sample per served request
type RequestObserver interface {
	ObserveRequest(route, method, status string, seconds float64)
}

// RequestLogger logs every request with zerolog and reports it to observer, which may be nil
func RequestLogger(observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			if observer != nil {
				observer.ObserveRequest(route, req.Method, strconv.Itoa(res.Status), latency.Seconds())
			}

			event := log.Info()
			if res.Status >= 500 {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", latency).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
