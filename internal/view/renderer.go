// Package view renders the HTML pages.  Every page template is parsed
// together with the shared layout at startup, so a broken template fails
// the process instead of a request.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates static
var files embed.FS

const layoutFile = "templates/layouts/boilerplate.html"

var funcs = template.FuncMap{
	"price": func(p float64) string { return fmt.Sprintf("$%.2f", p) },
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		if n > 5 {
			n = 5
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}

// Renderer implements echo.Renderer.  Page names are template paths
// relative to templates/ without the extension, e.g. "campgrounds/show".
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page under templates/ except the layouts.
func New() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	err := fs.WalkDir(files, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || strings.HasPrefix(p, "templates/layouts/") {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(files, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for program startup.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic("view: " + err.Error())
	}
	return r
}

// Render executes the layout with the named page as its content.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: no template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "boilerplate", data)
}

// Has reports whether a page exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// StaticFS returns the embedded assets served under /static.
func StaticFS() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic("view: embedded static directory missing: " + err.Error())
	}
	return sub
}
