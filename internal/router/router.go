package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// GuardedHandler registers open reads and runs guard in front of its writes
type GuardedHandler interface {
	RegisterRoutes(r *gin.RouterGroup, guard ...gin.HandlerFunc)
}

type AuthHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Auth          AuthHandler
	Health        Handler
	Doctor        Handler
	Patient       Handler
	Staff         Handler
	Appointment   Handler
	MedicalRecord GuardedHandler
	Billing       GuardedHandler
	Geo           Handler
	// Metrics serves /metrics; nil leaves it unrouted
	Metrics gin.HandlerFunc
}

type Config struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	// RateLimiter is optional
	RateLimiter *middleware.RateLimiter
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	h       Handlers
	limiter *middleware.RateLimiter
}

func NewRouter(logger zerolog.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers, config Config) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(logger),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.ErrorHandler(logger),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORS),
		middleware.SizeLimit(middleware.SizeLimitConfig{
			MaxBodySize:   config.MaxBodyBytes,
			MaxHeaderSize: middleware.DefaultSizeLimitConfig().MaxHeaderSize,
		}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	r := &Router{
		engine:  engine,
		auth:    auth,
		h:       h,
		limiter: config.RateLimiter,
	}
	r.setup()
	return r
}

func (r *Router) limit() []gin.HandlerFunc {
	if r.limiter == nil {
		return nil
	}
	return []gin.HandlerFunc{r.limiter.RateLimit()}
}

func (r *Router) setup() {
	if r.h.Metrics != nil {
		r.engine.GET("/metrics", r.h.Metrics)
	}

	api := r.engine.Group("/api/v1")
	r.h.Health.RegisterRoutes(api)

	public := api.Group("", r.limit()...)
	r.h.Auth.RegisterRoutes(public)

	protected := api.Group("", r.auth.Authenticate())
	protected.Use(r.limit()...)
	r.h.Auth.RegisterProtectedRoutes(protected)
	r.h.Doctor.RegisterRoutes(protected)
	r.h.Patient.RegisterRoutes(protected)
	r.h.Appointment.RegisterRoutes(protected)
	r.h.Geo.RegisterRoutes(protected)
	r.h.MedicalRecord.RegisterRoutes(protected, r.auth.RequireRole(model.RoleAdmin, model.RoleNurse))
	r.h.Billing.RegisterRoutes(protected, r.auth.RequireRole(model.RoleAdmin, model.RoleBilling))

	admin := protected.Group("", r.auth.RequireRole(model.RoleAdmin))
	r.h.Staff.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
