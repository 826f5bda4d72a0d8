package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/seidelmaycon/game-api/config"
	"github.com/seidelmaycon/game-api/internal/application"
	"github.com/seidelmaycon/game-api/internal/container"
	handlers "github.com/seidelmaycon/game-api/internal/interface/http"
	"github.com/seidelmaycon/game-api/internal/interface/middleware"
	"github.com/seidelmaycon/game-api/internal/router/modules"
)

type ModuleDeps struct {
	UserService      *application.UserService
	GameEventService *application.GameEventService
	Auth             gin.HandlerFunc

	UserHandler      *handlers.UserHandler
	SessionHandler   *handlers.SessionHandler
	GameEventHandler *handlers.GameEventHandler
	HealthHandler    *handlers.HealthHandler
}

func buildDeps() ModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	userSvc := application.NewUserService(
		container.GetUserRepo(),
		container.GetEventRepo(),
		jwt,
		container.GetBilling(),
		container.GetMailPublisher(),
		cfg.MailSendEnabled,
		logger,
	)
	eventSvc := application.NewGameEventService(
		container.GetEventRepo(),
		logger,
		container.GetES(),
		cfg.ESEventsIndex,
	)

	return ModuleDeps{
		UserService:      userSvc,
		GameEventService: eventSvc,
		Auth:             middleware.Auth(jwt, container.GetUserRepo(), logger),
		UserHandler:      handlers.NewUserHandler(userSvc, logger),
		SessionHandler:   handlers.NewSessionHandler(userSvc, logger),
		GameEventHandler: handlers.NewGameEventHandler(eventSvc, logger),
		HealthHandler:    handlers.NewHealthHandler(container.GetStore(), logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	r.Add(modules.NewUserModule(deps.UserHandler, deps.Auth))
	r.Add(modules.NewSessionModule(deps.SessionHandler))
	r.Add(modules.NewGameEventModule(deps.GameEventHandler, deps.Auth))
	r.AddRoot(modules.NewHealthModule(deps.HealthHandler))
}

// NewEngine builds the Gin engine with global middleware and every module
// registered from the container.
func NewEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// An empty CORS_ALLOWED_ORIGINS allows every origin.
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()
	return r
}
