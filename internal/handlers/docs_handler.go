package handlers

import (
	"embed"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed openapi.json
var openAPISpec []byte

// docsContentSecurityPolicy replaces the API policy on documentation pages,
// which load their renderer from a CDN.
const docsContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://cdn.redoc.ly; " +
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; worker-src 'self' blob:; object-src 'none'"

// DocsHandler handles API documentation endpoints.
type DocsHandler struct {
	specContent []byte
}

// NewDocsHandler creates a DocsHandler serving the embedded OpenAPI document.
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{specContent: openAPISpec}
}

// NewDocsHandlerWithSpec creates a DocsHandler serving specContent.
func NewDocsHandlerWithSpec(specContent []byte) *DocsHandler {
	return &DocsHandler{specContent: specContent}
}

// SwaggerUI serves the Swagger UI at /docs.
func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	h.page(w, "templates/swagger.html")
}

// Redoc serves the ReDoc UI at /redoc.
func (h *DocsHandler) Redoc(w http.ResponseWriter, r *http.Request) {
	h.page(w, "templates/redoc.html")
}

func (h *DocsHandler) page(w http.ResponseWriter, name string) {
	html, err := templatesFS.ReadFile(name)
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", docsContentSecurityPolicy)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// OpenAPISpec serves the OpenAPI document at /openapi.json.
func (h *DocsHandler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.specContent) == 0 {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.specContent)
}
