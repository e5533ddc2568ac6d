package util

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var funcs = template.FuncMap{
	"markdown": Markdown,
}

func Render(w http.ResponseWriter, name string, data any) {
	files := []string{
		filepath.Join("web", "templates", "layout.html"),
		filepath.Join("web", "templates", name),
	}
	t := template.Must(template.New("layout.html").Funcs(funcs).ParseFiles(files...))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = t.ExecuteTemplate(w, "base", data)
}

// Markdown renders a post body. El contenido viene del API, que es la
// autoridad sobre los posts; no se sanea aparte.
func Markdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(src), p, r))
}
