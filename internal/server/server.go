package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/auth"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/buoy"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/config"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/reservation"
)

// Deps are the wired services the HTTP layer routes to.
type Deps struct {
	Reservations reservation.Service
	Buoys        buoy.Service
	Health       HealthChecker
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	router.GET("/health", Health(deps.Health))
	router.GET("/metrics", Metrics())

	limiter := NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	reservationHandler := reservation.NewHandler(deps.Reservations)
	buoyHandler := buoy.NewHandler(deps.Buoys)

	protected := router.Group("/")
	protected.Use(authMiddleware, RateLimitMiddleware(limiter))
	{
		protected.POST("/reservations", reservationHandler.Create)
		protected.GET("/reservations", reservationHandler.ListMine)
		protected.GET("/reservations/:id", reservationHandler.Get)
		protected.PATCH("/reservations/:id", reservationHandler.Update)
		protected.POST("/reservations/:id/cancel", reservationHandler.Cancel)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin), RateLimitMiddleware(limiter))
	{
		admin.POST("/reservations/:id/approve", reservationHandler.Approve)
		admin.POST("/reservations/:id/reject", reservationHandler.Reject)
		admin.POST("/reservations/:id/buoy", buoyHandler.MoveToBuoy)

		admin.GET("/buoy-groups", buoyHandler.ListGroups)
		admin.POST("/buoy-groups/recompute", buoyHandler.Recompute)
		admin.POST("/buoy-groups/lock", buoyHandler.Lock)
		admin.POST("/buoy-groups/unlock", buoyHandler.Unlock)
		admin.POST("/buoy-groups/boat", buoyHandler.AssignBoat)
	}

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
