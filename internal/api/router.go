package api

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/rapidaid/livetracker/docs"
	"github.com/rapidaid/livetracker/internal/api/handler"
	"github.com/rapidaid/livetracker/internal/api/middleware"
	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

// httpMetrics registers the request collectors once per process so several
// routers (tests) can share the default registry.
var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("livetracker")
})

// RouterConfig carries everything the HTTP layer needs. Readiness is optional;
// when nil, /health/ready is not registered.
type RouterConfig struct {
	JWTSecret   string
	Auth        ports.AuthService
	Emergencies ports.EmergencyService
	Dispatcher  handler.LocationDispatcher
	Readiness   *handler.ReadinessHandler
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(httpMetrics())

	// --- Health, metrics, docs (no auth required) ---
	e.GET("/health", handler.Liveness)
	if cfg.Readiness != nil {
		e.GET("/health/ready", cfg.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(cfg.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	emergencyHandler := handler.NewEmergencyHandler(cfg.Emergencies)
	mapHandler := handler.NewMapHandler(cfg.Emergencies, cfg.Dispatcher)
	responderHandler := handler.NewResponderHandler(cfg.Emergencies)

	authed := e.Group("", middleware.Auth(cfg.JWTSecret))

	authed.POST("/emergency", emergencyHandler.Report, middleware.RBAC(domain.RoleVictim))
	authed.POST("/emergency/:id/resolve", emergencyHandler.Resolve,
		middleware.RBAC(domain.RoleVictim, domain.RoleResponder, domain.RoleAdmin))

	authed.GET("/map/active", mapHandler.Active)
	authed.GET("/map/:id/location", mapHandler.Locations)
	authed.POST("/map/:id/location", mapHandler.ReportLocation,
		middleware.RBAC(domain.RoleVictim, domain.RoleResponder))

	authed.POST("/responder/accept/:id", responderHandler.Accept, middleware.RBAC(domain.RoleResponder))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
