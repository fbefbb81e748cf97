// Package handlers serves the provider config pages and the read-only JSON API.
//
// Route registration lives in internal/app; handlers do not register their own routes.
package handlers

import (
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"

	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// contentSourceWeb tags transactions written through the edit form.
const contentSourceWeb = "web"

// Pinger reports database reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server implements the page and API handlers.
type Server struct {
	editor    *usecase.ProviderConfigEditor
	db        Pinger
	templates *template.Template
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Editor *usecase.ProviderConfigEditor
	// DB is optional; without it readiness reports ok.
	DB Pinger
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) (*Server, error) {
	tmpl, err := template.New("pages").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Server{
		editor:    deps.Editor,
		db:        deps.DB,
		templates: tmpl,
	}, nil
}

// viewerFromCtx returns the authenticated viewer of the request.
func viewerFromCtx(c *gin.Context) domain.Viewer {
	return middleware.GetViewer(c.Request.Context())
}

// actorFromCtx extracts the authenticated user ID from the request context.
func actorFromCtx(c *gin.Context) string {
	if uid := viewerFromCtx(c).UserID; uid != "" {
		return uid
	}
	return "anonymous"
}
