package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

const serviceWorkerJS = "self.addEventListener('install', e => { self.skipWaiting(); }); " +
	"self.addEventListener('activate', e => { self.clients.claim(); });"

// PWAHandler serves the fixed-content progressive-web-app endpoints.
type PWAHandler struct {
	staticDir string
}

func NewPWAHandler(staticDir string) *PWAHandler {
	return &PWAHandler{staticDir: staticDir}
}

func (h *PWAHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/manifest.json", h.Manifest)
	r.GET("/sw.js", h.ServiceWorker)
	r.GET("/favicon.ico", h.Favicon)
	r.GET("/offline", h.Offline)
}

func (h *PWAHandler) Manifest(c *gin.Context) {
	manifest := map[string]interface{}{
		"name":             "CookShare",
		"short_name":       "CookShare",
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#ffffff",
		"theme_color":      "#ffffff",
		"icons":            []interface{}{},
	}
	body, _ := json.Marshal(manifest)
	c.Data(http.StatusOK, "application/manifest+json", body)
}

func (h *PWAHandler) ServiceWorker(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript", []byte(serviceWorkerJS))
}

func (h *PWAHandler) Favicon(c *gin.Context) {
	path := filepath.Join(h.staticDir, "favicon.ico")
	if _, err := os.Stat(path); err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.File(path)
}

func (h *PWAHandler) Offline(c *gin.Context) {
	c.HTML(http.StatusOK, "offline.html", pageContext(c))
}
