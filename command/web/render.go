package web

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// renderer adapts html/template to echo.Renderer.
type renderer struct {
	t *template.Template
}

func newRenderer() *renderer {
	return &renderer{t: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}
