package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	name    string
	version string
	now     func() time.Time
}

type rootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func NewHealthHandler(name, version string) *HealthHandler {
	return &HealthHandler{name: name, version: version, now: time.Now}
}

func (h *HealthHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.root)
	router.GET("/api/health", h.health)
}

func (h *HealthHandler) root(c *gin.Context) {
	c.JSON(http.StatusOK, rootResponse{
		Status:  "ok",
		Message: h.name + " is running",
		Version: h.version,
	})
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
