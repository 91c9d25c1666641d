package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/otenet/task-manager/internal/api/handler"
	"github.com/otenet/task-manager/internal/api/middleware"
	"github.com/otenet/task-manager/internal/core/ports"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth     ports.AuthService
	Accounts ports.AccountService
	Tasks    ports.TaskService
}

// Options carries the optional pieces of the router.
type Options struct {
	Log zerolog.Logger
	// Limiter throttles signup and login. Nil disables rate limiting.
	Limiter middleware.Limiter
	// Probes are checked by GET /health/ready.
	Probes []handler.Probe
	// MetricsRegisterer enables HTTP request metrics and GET /metrics.
	// Nil disables both.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	if opts.MetricsRegisterer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "taskmanager",
			Registerer: opts.MetricsRegisterer,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: opts.MetricsGatherer,
		}))
	}

	// --- Dependencies ---
	users := handler.NewUserHandler(svc.Auth, svc.Accounts)
	tasks := handler.NewTaskHandler(svc.Tasks)
	health := handler.NewHealthHandler(opts.Probes...)
	auth := middleware.Auth(svc.Auth)

	var throttle []echo.MiddlewareFunc
	if opts.Limiter != nil {
		throttle = append(throttle, middleware.RateLimit(opts.Limiter, opts.Log))
	}

	// --- User routes ---
	e.POST("/users", users.Signup, throttle...)
	e.POST("/users/login", users.Login, throttle...)
	e.POST("/users/logout", users.Logout, auth)
	e.POST("/users/logoutAll", users.LogoutAll, auth)
	e.GET("/users/me", users.Me, auth)
	e.PATCH("/users/me", users.UpdateMe, auth)
	e.DELETE("/users/me", users.DeleteMe, auth)
	e.POST("/users/me/avatar", users.UploadAvatar, auth, echomiddleware.BodyLimit("11M"))
	e.DELETE("/users/me/avatar", users.DeleteAvatar, auth)
	e.GET("/users/:id/avatar", users.GetAvatar)

	// --- Task routes ---
	t := e.Group("/tasks", auth)
	t.POST("", tasks.Create)
	t.GET("", tasks.List)
	t.GET("/:id", tasks.Get)
	t.PATCH("/:id", tasks.Update)
	t.DELETE("/:id", tasks.Delete)

	// --- Health probes (no auth required) ---
	e.GET("/health", health.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
