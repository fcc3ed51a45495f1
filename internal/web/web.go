// Package web holds the server-rendered pages: embedded templates, static
// assets and the Renderer that executes them for gin handlers.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	PageIndex     = "index.html"
	PageDiscover  = "discover.html"
	PageMyBooks   = "my_books.html"
	PageLists     = "lists.html"
	PageCommunity = "community.html"
	PageAuth      = "auth.html"
	PageNotFound  = "not_found.html"
)

// DecorateFunc adds request-scoped values (session, flashes, CSRF field)
// to the data of every rendered page.
type DecorateFunc func(c *gin.Context, data gin.H)

type Renderer struct {
	templates *template.Template
	decorate  DecorateFunc
}

// NewRenderer parses the embedded templates. decorate may be nil.
func NewRenderer(decorate DecorateFunc) (*Renderer, error) {
	tmpl, err := template.New("booky").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl, decorate: decorate}, nil
}

// MustRenderer is NewRenderer for callers that cannot continue without templates.
func MustRenderer(decorate DecorateFunc) *Renderer {
	r, err := NewRenderer(decorate)
	if err != nil {
		panic(err)
	}
	return r
}

// HTML renders the named page. The page is executed into a buffer first so
// a template error produces a clean 500 instead of a half-written body.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	for _, key := range []string{"Title", "Active", "Query", "Path"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	if data["Path"] == "" && c.Request != nil {
		data["Path"] = c.Request.URL.RequestURI()
	}
	if _, ok := data["CSRFField"]; !ok {
		data["CSRFField"] = template.HTML("")
	}
	if r.decorate != nil {
		r.decorate(c, data)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Failed to render %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Static serves the embedded stylesheet and other assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
