// Health and liveness HTTP handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// startTime anchors the uptime reported by the health endpoint.
var startTime = time.Now()

// HealthData is the payload of the health endpoint.
type HealthData struct {
	Status    string  `json:"status" example:"ok"`
	Message   string  `json:"message" example:"API is healthy"`
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version" example:"v1"`
	Uptime    float64 `json:"uptime"` // seconds
}

// Hello godoc
// @ID          hello
// @Summary     Root greeting
// @Tags        Health
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      / [get]
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, world mantap"})
}

// Health godoc
// @ID          health
// @Summary     Liveness check with uptime
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.Envelope
// @Router      /health [get]
func Health(c *gin.Context) {
	success(c, http.StatusOK, "Health check successful", HealthData{
		Status:    "ok",
		Message:   "API is healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "v1",
		Uptime:    time.Since(startTime).Seconds(),
	})
}
