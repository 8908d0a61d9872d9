package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/agrovision/stress-map-service/internal/handler"
	"github.com/agrovision/stress-map-service/pkg/config"
)

// NewRouter builds the gin engine with all routes wired. Split out from
// Start so tests can drive it through httptest.
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", h.Health)
	router.POST("/process-local-images/", h.ProcessLocalImages)
	router.POST("/generate-stress-map/", APIKeyAuth(cfg.Auth.APIKey), h.GenerateStressMap)

	return router
}

func Start(cfg *config.Config, h *handler.Handler) error {
	router := NewRouter(cfg, h)
	return router.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}
