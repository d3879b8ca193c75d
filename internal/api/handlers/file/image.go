package file

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/gin-gonic/gin"
)

const imageAccept = "image/*,application/octet-stream"

var imageHeaders = map[string]string{
	"Cache-Control":             "public, max-age=31536000, immutable",
	"X-Content-Type-Options":    "nosniff",
	"Content-Security-Policy":   "default-src 'self'",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains; preload",
}

// Image re-serves a stored image from the service's own origin.
func (h *Handler) Image(c *gin.Context) {
	fileID := strings.TrimSpace(c.Param("fileId"))
	fileName := strings.TrimSpace(c.Param("fileName"))
	if fileID == "" || fileName == "" {
		c.String(http.StatusBadRequest, "Invalid fileId or fileName")
		return
	}

	store, err := h.deps.PublicStore()
	if err != nil {
		log.Printf("[IMAGE] store unavailable: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	resp, err := store.GetFile(c.Request.Context(), h.deps.Config.Backend.ImageCollection, fileID, fileName, imageAccept)
	if err != nil {
		if status := backend.StatusOf(err); status != 0 {
			log.Printf("[IMAGE] upstream answered %d for %s/%s", status, fileID, fileName)
			c.String(status, "Failed to fetch image")
			return
		}
		log.Printf("[IMAGE] fetch failed for %s/%s: %v", fileID, fileName, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		log.Printf("[IMAGE] refusing content type %q for %s/%s", contentType, fileID, fileName)
		c.String(http.StatusBadRequest, "Invalid content type")
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[IMAGE] read failed for %s/%s: %v", fileID, fileName, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	for k, v := range imageHeaders {
		c.Header(k, v)
	}
	c.Data(http.StatusOK, contentType, data)
}
