package file

import (
	"net/http"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/sanitize"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/query"
	"github.com/gin-gonic/gin"
)

// GetScan returns the antivirus status of a file. The author query
// parameter selects the ledger shard. Only the status is exposed; the
// author, image name and quarantine location stay internal.
func GetScan(c *gin.Context) {
	author := c.Query("author")
	if author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author is required"})
		return
	}

	rec, ok := query.GetScanRecord(c.Request.Context(), c.Param("fileId"), sanitize.String(author))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":    rec.FileID,
		"status":     rec.Status,
		"scanned_at": rec.ScannedAt,
	})
}

func GetScanStats(c *gin.Context) {
	c.JSON(http.StatusOK, query.GetScanStats(c.Request.Context()))
}
