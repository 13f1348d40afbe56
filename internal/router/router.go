package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hackathon/internal/auth"
	"hackathon/internal/cache"
	"hackathon/internal/config"
	"hackathon/internal/handler"
	"hackathon/internal/metrics"
	"hackathon/internal/model"
	"hackathon/internal/service"
)

const bodyLimit = "10M"

// Dependencies are the shared components the router wires into middleware.
type Dependencies struct {
	Config    *config.Config
	Logger    *slog.Logger
	JWT       *auth.JWTService
	Users     service.UserService
	Validator *service.Validator
	Cache     *cache.Client
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// Handlers groups the HTTP handlers exposed by the API.
type Handlers struct {
	Auth   *handler.AuthHandler
	Team   *handler.TeamHandler
	User   *handler.UserHandler
	Status *handler.StatusHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Dependencies, h Handlers) {
	cfg := deps.Config

	e.HideBanner = true
	e.Validator = &CustomValidator{validator: deps.Validator}
	e.HTTPErrorHandler = handler.NewErrorHandler(deps.Logger, cfg.IsProduction())

	e.Use(middleware.RequestID())
	e.Use(observe(deps.Metrics))
	e.Use(middleware.RequestLoggerWithConfig(requestLogger(deps.Logger)))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(bodyLimit))

	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	store := newWindowStore(deps.Cache, cfg.RateLimitMax, cfg.RateLimitWindow, deps.Logger)
	api := e.Group("/api", rateLimiter(store, deps.Metrics))

	api.GET("/health", h.Status.Health)
	api.GET("/status", h.Status.Status)

	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/admin/login", h.Auth.AdminLogin)

	api.POST("/teams", h.Team.Register, optionalParticipant(deps.JWT))

	admin := api.Group("/teams", requireRole(deps.JWT, model.RoleAdmin))
	admin.GET("", h.Team.List)
	admin.GET("/export", h.Team.Export)
	admin.GET("/:id", h.Team.Get)
	admin.PUT("/:id/status", h.Team.UpdateStatus)
	admin.PUT("/:id", h.Team.Update)
	admin.DELETE("/:id", h.Team.Delete)

	user := api.Group("/user", requireRole(deps.JWT, model.RoleParticipant), requireExistingUser(deps.Users))
	user.GET("/profile", h.User.GetProfile)
	user.PUT("/profile", h.User.UpdateProfile)
	user.GET("/team", h.User.GetTeam)
	user.PUT("/team", h.User.UpdateTeam)
}

func requestLogger(log *slog.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Status >= http.StatusInternalServerError {
				log.Error("request", attrs...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}
}

// CustomValidator adapts service.Validator to echo.Validator.
type CustomValidator struct {
	validator *service.Validator
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
