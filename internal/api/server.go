// Package api exposes the configuration studio over HTTP: profile state,
// flat-file import/export, targeted edits, validation, snapshots and a
// websocket feed of configuration activity.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"robot-config-studio/internal/events"
	"robot-config-studio/internal/logging"
	"robot-config-studio/internal/studio"
)

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	service    *studio.Service
	eventBus   *events.EventBus
	config     ServerConfig
	logger     *logging.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins string
	ProductionMode bool
}

// NewServer creates a new API server
func NewServer(config ServerConfig, service *studio.Service, eventBus *events.EventBus, logger *logging.Logger) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	if config.AllowedOrigins == "" || config.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(config.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	if logger == nil {
		logger = logging.Default()
	}

	server := &Server{
		router:   router,
		service:  service,
		eventBus: eventBus,
		config:   config,
		logger:   logger.WithComponent("api"),
	}

	server.setupRoutes()

	// Initialize WebSocket hub for real-time event broadcasting
	InitWebSocket(eventBus)

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/profiles", s.handleListProfiles)

		profile := api.Group("/profiles/:profile")
		{
			profile.GET("/config", s.handleGetConfig)
			profile.PUT("/config", s.handleLoadConfig)
			profile.GET("/export", s.handleExport)
			profile.POST("/import/preview", s.handlePreviewImport)
			profile.POST("/import/apply", s.handleApplyImport)
			profile.POST("/parameter", s.handleSetParameter)
			profile.GET("/validate", s.handleValidate)
			profile.GET("/history", s.handleChangeHistory)

			profile.GET("/snapshots", s.handleListSnapshots)
			profile.POST("/snapshots", s.handleSaveSnapshot)
			profile.POST("/snapshots/:id/restore", s.handleRestoreSnapshot)
		}

		api.POST("/compare", s.handleCompareFiles)
		api.GET("/audit/recent", s.handleRecentAudit)
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"clients":   GetWSClientCount(),
	})
}
