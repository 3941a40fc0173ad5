package http

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the contract is read from, relative to the working directory.
var OpenAPIPath = "api/openapi.yaml"

// apiContract is the loaded and validated API description in both encodings.
type apiContract struct {
	title   string
	version string
	yaml    []byte
	json    []byte
}

func loadContract(ctx context.Context, path string) (*apiContract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	js, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return &apiContract{
		title:   doc.Info.Title,
		version: doc.Info.Version,
		yaml:    raw,
		json:    js,
	}, nil
}

func (c *apiContract) page() string {
	title := html.EscapeString(c.title + " " + c.version)
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>` + title + `</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>body{margin:0}header{font:14px sans-serif;padding:8px 16px;background:#3388ff;color:#fff}header a{color:#fff}</style>
</head>
<body>
  <header>` + title + ` | <a href="/">map</a> | <a href="/docs/openapi.yaml">openapi.yaml</a></header>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true });
  </script>
</body>
</html>`
}

// SetupDocs loads the contract once and serves it at /docs (Swagger UI),
// /docs/openapi.yaml and /docs/openapi.json. A missing or invalid contract
// leaves the routes answering 404.
func SetupDocs(app *fiber.App) {
	contract, err := loadContract(context.Background(), OpenAPIPath)
	if err != nil {
		slog.Info("api docs disabled", "path", OpenAPIPath, "error", err)
	}

	serve := func(contentType string, body func(*apiContract) []byte) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if contract == nil {
				return newError(c, 404, "not_found", "api contract not available")
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send(body(contract))
		}
	}

	app.Get("/docs", serve(fiber.MIMETextHTMLCharsetUTF8, func(a *apiContract) []byte { return []byte(a.page()) }))
	app.Get("/docs/openapi.yaml", serve("application/yaml", func(a *apiContract) []byte { return a.yaml }))
	app.Get("/docs/openapi.json", serve(fiber.MIMEApplicationJSON, func(a *apiContract) []byte { return a.json }))
}
