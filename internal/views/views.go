// Package views holds the embedded HTML templates for the admin dashboard.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var content embed.FS

// Engine builds the template engine from the embedded files, so the binary
// renders the same pages regardless of working directory.
func Engine() *html.Engine {
	templates, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(templates), ".html")
}
