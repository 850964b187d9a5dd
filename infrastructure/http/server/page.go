package server

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed index.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "index.html"))

type PageData struct {
	Title string
}

// renderPage serves the embedded chat page. Same origin only, so no CORS
// header here, unlike the JSON endpoints.
func (s *ChatServer) renderPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, PageData{Title: "Chat Relay"}); err != nil {
		s.log.Error("Failed to render page", "error", err)
	}
}
