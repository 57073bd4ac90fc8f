package handlers

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/render"

	"luxebites/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"menu.html", "cart.html", "checkout.html", "confirmation.html"}

// TemplateFuncs are available to every page.
var TemplateFuncs = template.FuncMap{
	"price": services.FormatPrice,
}

// HTMLRenderer keeps one template set per page.
type HTMLRenderer struct {
	Templates map[string]*template.Template
}

// LoadTemplates parses the embedded pages.
func LoadTemplates() (*HTMLRenderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(TemplateFuncs).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &HTMLRenderer{Templates: templates}, nil
}

// Instance returns the renderer for page name.
func (r *HTMLRenderer) Instance(name string, data any) render.Render {
	return render.HTML{
		Template: r.Templates[name],
		Data:     data,
	}
}
