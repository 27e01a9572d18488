package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// Versioner reports the current version of the resource a request names,
// for example a file's size and modification time. ok is false when the
// resource is missing or must not be served from memory.
type Versioner func(c *gin.Context) (version string, ok bool)

type snapshot struct {
	status int
	header http.Header
	body   []byte
}

// teeWriter copies everything the handler writes into buf.
type teeWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// conditionalHeaders make a response depend on more than the path.
var conditionalHeaders = []string{"Range", "If-Range", "If-Modified-Since", "If-None-Match"}

func cacheable(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	for _, h := range conditionalHeaders {
		if r.Header.Get(h) != "" {
			return false
		}
	}
	return true
}

// Cache replays complete 200 responses from memory. Entries are keyed by
// URL path and the version the Versioner reports at request time, so a
// resource that changed or disappeared always reaches the handler.
func Cache(store *cache.Cache, ttl time.Duration, version Versioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cacheable(c.Request) {
			c.Next()
			return
		}
		v, ok := version(c)
		if !ok {
			c.Next()
			return
		}

		key := c.Request.URL.Path + "#" + v
		if hit, found := store.Get(key); found {
			snap := hit.(snapshot)
			header := c.Writer.Header()
			for k, vals := range snap.header {
				header[k] = vals
			}
			header.Set("X-Cache", "HIT")
			c.Writer.WriteHeader(snap.status)
			c.Writer.Write(snap.body)
			c.Abort()
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		if tee.Status() == http.StatusOK {
			store.Set(key, snapshot{
				status: tee.Status(),
				header: tee.Header().Clone(),
				body:   bytes.Clone(tee.buf.Bytes()),
			}, ttl)
		}
	}
}
