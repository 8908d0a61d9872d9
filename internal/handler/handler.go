package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrovision/stress-map-service/internal/domain/model"
	"github.com/agrovision/stress-map-service/internal/service"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

// GenerateStressMapRequest is the JSON body of POST /generate-stress-map/.
// Both paths are object keys inside the configured bucket.
type GenerateStressMapRequest struct {
	RGBImagePath string `json:"rgb_image_path" binding:"required"`
	NIRImagePath string `json:"nir_image_path" binding:"required"`
}

type Handler struct {
	logger       *slog.Logger
	orchestrator *service.JobOrchestrator
}

func NewHandler(logger *slog.Logger, orchestrator *service.JobOrchestrator) *Handler {
	return &Handler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

func (h *Handler) GenerateStressMap(c *gin.Context) {
	var req GenerateStressMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}

	job, err := model.NewJob(req.RGBImagePath, req.NIRImagePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	outputURL, err := h.orchestrator.GenerateStressMap(c.Request.Context(), job)
	if err != nil {
		h.logger.Error("Stress-map job failed", "job_id", job.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Stress map generated successfully!",
		"output_url": outputURL,
	})
}

func (h *Handler) ProcessLocalImages(c *gin.Context) {
	outputPath, err := h.orchestrator.ProcessLocalImages(c.Request.Context())
	if err != nil {
		if errors.Is(err, errors.ErrorTypeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"detail": "Test files not found. Make sure 'test_rgb.jpg' and 'test_nir.jpg' are in the local test data folder.",
			})
			return
		}
		h.logger.Error("Local processing job failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Local processing successful!",
		"output_saved_to": outputPath,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
