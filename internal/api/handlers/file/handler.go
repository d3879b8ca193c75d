package file

import (
	"net/http"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

// Handler serves the upload relay and the image proxy.
type Handler struct {
	deps handlers.Deps
}

func NewHandler(deps handlers.Deps) *Handler {
	return &Handler{deps: deps}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
