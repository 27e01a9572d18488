package api

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"doorbell/config"
	"doorbell/internal/mw"
	"doorbell/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// NewRouter creates and configures the lister's Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(indexTemplate)

	handler := NewHandler(s)

	r.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))

	// The listing is never cached so it always reflects the directory.
	// Clip responses are keyed by the file's size and mtime.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL, handler.clipVersion)

	r.GET("/", handler.ListVideos)
	r.GET("/static/*filename", caching, handler.FetchVideo)
	r.GET("/healthz", handler.Health)

	return r
}
