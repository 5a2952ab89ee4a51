package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"thingapi/internal/auth"
	"thingapi/internal/config"
	"thingapi/internal/database"
	"thingapi/internal/handler"
	"thingapi/internal/middleware"
	"thingapi/internal/model"
	"thingapi/internal/repository"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Log    zerolog.Logger
}

func Init(cfg *config.Config) (*Server, error) {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("role", "server").Logger()

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("connected to database, migrations applied")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		// Generic body only, nothing internal crosses the boundary.
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:        http.StatusInternalServerError,
			Name:        http.StatusText(http.StatusInternalServerError),
			Description: "The server encountered an internal error",
		})
	}))
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, model.ErrorResponse{
			Code:        http.StatusNotFound,
			Name:        http.StatusText(http.StatusNotFound),
			Description: "The requested resource does not exist",
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, model.ErrorResponse{
			Code:        http.StatusMethodNotAllowed,
			Name:        http.StatusText(http.StatusMethodNotAllowed),
			Description: "The method is not allowed for the requested resource",
		})
	})

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLSecs)*time.Second)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	thingRepo := repository.NewThingRepository(db)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo, tokens)
	userHandler := handler.NewUserHandler(userRepo)
	thingHandler := handler.NewThingHandler(thingRepo)

	v1 := r.Group("/v1")

	v1.GET("/auth/token", authHandler.GetToken)

	// User routes - unauthenticated in this revision
	users := v1.Group("/users")
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	// Thing routes - require a bearer token
	things := v1.Group("/things")
	things.Use(middleware.JWTAuthMiddleware(tokens))
	{
		things.GET("", thingHandler.List)
		things.POST("", thingHandler.Create)
		things.GET("/:id", thingHandler.GetByID)
		things.PUT("/:id", thingHandler.Update)
		things.DELETE("/:id", thingHandler.Delete)
	}

	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Log:    log,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Info().Str("port", s.Config.ServerPort).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatal().Err(err).Msg("failed to listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	s.Log.Info().Msg("server exited properly")
}
