// Package render renders the server-side HTML views. Templates are embedded
// in the binary; each view is composed with the shared layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// views lists the renderable view names. Each corresponds to
// templates/<name>.html.
var views = []string{"home", "login", "signup", "feed", "userinfo", "editprofile"}

// PageData is the context every view receives. Class and Msg drive the
// banner (Class "error" or "success"); Data carries view-specific payload.
type PageData struct {
	Class string
	Msg   string
	Data  any
}

// Renderer holds the parsed view templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(views))
	for _, name := range views {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %q: %w", name, err)
		}
		templates[name] = t
	}
	return &Renderer{templates: templates}, nil
}

// Page renders the named view with data and the given status code. The view
// is rendered to a buffer first so a template failure cannot leave a
// half-written response.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data PageData) {
	t, ok := r.templates[name]
	if !ok {
		slog.Error("unknown view", slog.String("view", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render view", slog.String("view", name), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
