package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doorbell/internal/errs"
)

// ListVideos handles GET / and renders every entry of the video directory.
func (h *Handler) ListVideos(c *gin.Context) {
	clips, err := h.store.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"clips": clips})
}

// FetchVideo handles GET /static/*filename and returns the file's bytes.
// Range and conditional requests are answered by http.ServeContent.
func (h *Handler) FetchVideo(c *gin.Context) {
	f, err := h.store.Open(c.Param("filename"))
	if errors.Is(err, errs.ErrClipNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to open video"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to open video"})
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// clipVersion identifies the current contents of the requested file so the
// response cache never replays bytes of a file that was rewritten or removed.
func (h *Handler) clipVersion(c *gin.Context) (string, bool) {
	info, err := h.store.Stat(c.Param("filename"))
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10), true
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
