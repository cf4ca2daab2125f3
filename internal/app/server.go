// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/config"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/firebase"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/jobs"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/middleware"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/notification"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/ride"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	notificationHandler *notification.Handler
	rideHandler         *ride.Handler
	rideReminderJob     *jobs.RideReminderJob
}

// NewServer assembles the gin engine, middleware and routes.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	notificationHandler *notification.Handler,
	rideHandler *ride.Handler,
	rideReminderJob *jobs.RideReminderJob,
	firebaseService *firebase.Service,
	userRepo user.Repository,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, userRepo, logger.Named("AuthMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "LFG Cycling API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	notificationGroup := v1.Group("/notifications", authMW)
	notificationHandler.RegisterRoutes(notificationGroup)

	rideGroup := v1.Group("/rides", authMW)
	rideHandler.RegisterRoutes(rideGroup)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		notificationHandler: notificationHandler,
		rideHandler:         rideHandler,
		rideReminderJob:     rideReminderJob,
	}, nil
}

// Start launches the reminder job and the HTTP listener.
func (s *Server) Start() error {
	if s.rideReminderJob != nil {
		if err := s.rideReminderJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start ride reminder job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops the reminder job and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.rideReminderJob != nil {
		s.rideReminderJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
