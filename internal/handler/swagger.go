package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/finoa/finos-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 document
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// ServeOpenAPI3Spec serves the registered swagger 2.0 doc converted to OpenAPI 3.0,
// with the requesting host as the server
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return NewInternalError(c)
	}

	spec, err := convertSwagger2(doc)
	if err != nil {
		return NewInternalError(c)
	}
	spec.Servers = []Server{{
		URL:         c.Scheme() + "://" + c.Request().Host + docs.SwaggerInfo.BasePath,
		Description: "This server",
	}}

	return c.JSON(http.StatusOK, spec)
}

func convertSwagger2(doc string) (*OpenAPI3Spec, error) {
	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return nil, err
	}

	spec := &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Paths:      map[string]interface{}{},
		Components: map[string]interface{}{},
	}
	spec.Info, _ = swagger2["info"].(map[string]interface{})

	if defs, ok := swagger2["definitions"].(map[string]interface{}); ok {
		spec.Components["schemas"] = rewriteRefs(defs)
	}
	if sec, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		spec.Components["securitySchemes"] = sec
	}

	paths, _ := swagger2["paths"].(map[string]interface{})
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = convertOperation(operation)
			}
		}
		spec.Paths[path] = converted
	}
	return spec, nil
}

// convertOperation moves body parameters into requestBody and wraps
// response schemas in a content map
func convertOperation(op map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(op))
	produces := mediaTypes(op["produces"])
	consumes := mediaTypes(op["consumes"])

	for key, value := range op {
		switch key {
		case "produces", "consumes":
		case "parameters":
			params, body := splitParameters(value)
			if len(params) > 0 {
				out["parameters"] = params
			}
			if body != nil {
				out["requestBody"] = map[string]interface{}{
					"required": body["required"],
					"content":  contentFor(consumes, rewriteRefs(body["schema"])),
				}
			}
		case "responses":
			out["responses"] = convertResponses(value, produces)
		default:
			out[key] = value
		}
	}
	return out
}

func splitParameters(value interface{}) ([]interface{}, map[string]interface{}) {
	list, _ := value.([]interface{})
	var params []interface{}
	var body map[string]interface{}

	for _, p := range list {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if param["in"] == "body" {
			body = param
			continue
		}
		converted := map[string]interface{}{}
		schema := map[string]interface{}{}
		for k, v := range param {
			switch k {
			case "name", "in", "description", "required":
				converted[k] = v
			case "type", "format", "enum", "default", "items":
				schema[k] = rewriteRefs(v)
			}
		}
		if len(schema) > 0 {
			converted["schema"] = schema
		}
		params = append(params, converted)
	}
	return params, body
}

func convertResponses(value interface{}, produces []string) map[string]interface{} {
	responses, _ := value.(map[string]interface{})
	out := make(map[string]interface{}, len(responses))
	for code, r := range responses {
		resp, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		converted := map[string]interface{}{"description": resp["description"]}
		if schema, ok := resp["schema"]; ok {
			converted["content"] = contentFor(produces, rewriteRefs(schema))
		}
		out[code] = converted
	}
	return out
}

func contentFor(types []string, schema interface{}) map[string]interface{} {
	if len(types) == 0 {
		types = []string{"application/json"}
	}
	content := make(map[string]interface{}, len(types))
	for _, t := range types {
		content[t] = map[string]interface{}{"schema": schema}
	}
	return content
}

func mediaTypes(value interface{}) []string {
	list, _ := value.([]interface{})
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// rewriteRefs points swagger 2.0 definition refs at components/schemas
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, swagger2RefPrefix, openAPI3RefPrefix, 1)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return data
	}
}
