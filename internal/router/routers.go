package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/handler"
	"github.com/prep-study/pronto/internal/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	accountHandler      *handler.AccountHandler
	passwordHandler     *handler.PasswordHandler
	emailChangeHandler  *handler.EmailChangeHandler
	userHandler         *handler.UserHandler
	sessionHandler      *handler.SessionHandler
	notificationHandler *handler.NotificationHandler
	locationHandler     *handler.LocationHandler
	catalogHandler      *handler.CatalogHandler
	healthHandler       *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	account *handler.AccountHandler,
	password *handler.PasswordHandler,
	emailChange *handler.EmailChangeHandler,
	user *handler.UserHandler,
	session *handler.SessionHandler,
	notification *handler.NotificationHandler,
	location *handler.LocationHandler,
	catalog *handler.CatalogHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:         auth,
		accountHandler:      account,
		passwordHandler:     password,
		emailChangeHandler:  emailChange,
		userHandler:         user,
		sessionHandler:      session,
		notificationHandler: notification,
		locationHandler:     location,
		catalogHandler:      catalog,
		healthHandler:       health,
		jwtMw:               jwtMw,
		Config:              config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Use custom logging and recovery middleware
	router.Use(middleware.CorrelationMiddleware())
	router.Use(middleware.RequestTimeoutMiddleware(r.Config.App.Timeout))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestResponseMiddleware())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/full", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.referenceRoutes(v1)
			r.notificationRoutes(v1)
		}
	}

	return router
}
