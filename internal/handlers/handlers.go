// Package handlers implements the HTTP API of the resolution engine.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amaumene/packarr/internal/config"
	"github.com/amaumene/packarr/internal/constants"
	"github.com/amaumene/packarr/internal/services"
)

// Handler handles HTTP requests against the resolver.
type Handler struct {
	services *services.Container
	config   *config.Config
}

// New creates a new Handler with the provided services and configuration.
func New(services *services.Container, config *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/parse", h.handleParse)
		api.GET("/resolve/:hash", h.handleResolve)
		api.POST("/resolve/torrent", h.handleResolveTorrent)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"version": constants.AppVersion,
	})
}
