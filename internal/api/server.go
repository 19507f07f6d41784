package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/screening"
)

// Server exposes the screening service over HTTP.
type Server struct {
	router    *gin.Engine
	screening *screening.Service
	cases     casestore.Store
	logger    *zap.Logger
	http      *http.Server
	cfg       config.ServerConfig
}

// NewServer builds the HTTP server around the screening service.
func NewServer(cfg config.ServerConfig, svc *screening.Service, cases casestore.Store, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server := &Server{
		router:    router,
		screening: svc,
		cases:     cases,
		logger:    logger,
		cfg:       cfg,
	}
	server.registerRoutes()
	return server
}

func (s *Server) registerRoutes() {
	public := s.router.Group("/api/v1")
	{
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.GET("/health", s.healthCheck)

		screenings := public.Group("/screenings")
		{
			screenings.POST("", s.screenTransaction)
		}

		cases := public.Group("/cases")
		{
			cases.GET("", s.listCases)
			cases.GET("/:id", s.getCase)
		}
	}
}

// Start runs the server until the context is cancelled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Router returns the internal gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
