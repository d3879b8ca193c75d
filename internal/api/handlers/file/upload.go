package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	uploadErrorMessage = "An error occurred while processing your request"
	formMemory         = 8 << 20
)

var errNotMultipart = errors.New("request is not multipart/form-data")

// Upload relays a multipart upload to the files collection unchanged.
func (h *Handler) Upload(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.deps.Config.Server.MaxBodyBytes))
	if err != nil {
		uploadFailed(c, fmt.Errorf("read body: %w", err))
		return
	}

	contentType := c.GetHeader("Content-Type")
	if err := checkMultipart(contentType, body); err != nil {
		uploadFailed(c, err)
		return
	}

	store, err := h.deps.PublicStore()
	if err != nil {
		uploadFailed(c, err)
		return
	}

	header := http.Header{}
	header.Set("X-Requested-With", "XMLHttpRequest")

	data, err := store.Collection(models.FilesCollection).CreateMultipart(
		c.Request.Context(), contentType, bytes.NewReader(body), header)
	if err != nil {
		uploadFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})

	h.deps.PublishEvent(models.SubjectFileUploaded, uploadedEvent(data))
}

// checkMultipart parses body as the multipart form announced by contentType.
func checkMultipart(contentType string, body []byte) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("parse content type: %w", err)
	}
	if mediaType != "multipart/form-data" || params["boundary"] == "" {
		return errNotMultipart
	}

	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(formMemory)
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return form.RemoveAll()
}

func uploadedEvent(data map[string]any) models.FileUploadedEvent {
	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	collection := str("collectionId")
	if collection == "" {
		collection = str("collectionName")
	}
	return models.FileUploadedEvent{
		FileID:     str("id"),
		Collection: collection,
		Image:      str("image"),
		Author:     str("author"),
		FileSize:   str("fileSize"),
		UploadedAt: time.Now().UTC(),
	}
}

func uploadFailed(c *gin.Context, err error) {
	log.Printf("[UPLOAD] relay failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": uploadErrorMessage,
	})
}
