package handler

import (
	"net/http"

	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/finoa/finos-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated clients to live event streams
type WebSocketHandler struct {
	hub            *websocket.Hub
	tokens         middleware.TokenValidator
	allowAll       bool
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. An origin of "*" allows any origin.
func NewWebSocketHandler(hub *websocket.Hub, tokens middleware.TokenValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		tokens:         tokens,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			h.allowAll = true
		}
		h.allowedOrigins[origin] = true
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowAll || h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /api/ws?token=
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}

	ownerID, err := h.tokens.Validate(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return NewUnauthorizedError(c, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, ownerID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("owner_id", ownerID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
