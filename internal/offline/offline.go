// Package offline serves the web manifest and service worker that let the
// app keep working without a connection.
package offline

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ManifestPath      = "/manifest.webmanifest"
	ServiceWorkerPath = "/service-worker.js"
)

//go:embed assets/manifest.webmanifest assets/service-worker.js
var assets embed.FS

// Register adds the manifest and service worker routes to r.
func Register(r gin.IRoutes) {
	r.GET(ManifestPath, serve("assets/manifest.webmanifest", "application/manifest+json"))
	r.GET(ServiceWorkerPath, func(c *gin.Context) {
		// The worker controls the whole origin and must be revalidated on every load.
		c.Header("Service-Worker-Allowed", "/")
		c.Header("Cache-Control", "no-cache")
		serve("assets/service-worker.js", "text/javascript; charset=utf-8")(c)
	})
}

func serve(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := assets.ReadFile(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
