// Package app wires repositories, services and handlers into one gin engine.
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"dndinfo/internal/config"
	"dndinfo/internal/domain/admin"
	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/domain/favorite"
	"dndinfo/internal/domain/feed"
	"dndinfo/internal/labels"
	"dndinfo/internal/middleware"
	"dndinfo/internal/pkg/jwt"
	"dndinfo/internal/pkg/logger"
)

const serviceName = "dndinfo"

// Models lists every table the service owns.
func Models() []any {
	return append([]any{&auth.User{}, &favorite.Favorite{}}, catalog.Models()...)
}

type App struct {
	Router    *gin.Engine
	Auth      *auth.Service
	Catalog   *catalog.Service
	Favorites *favorite.Service
	Admin     *admin.Service
	Feed      *feed.Hub
}

func New(cfg *config.Config, db *gorm.DB, table *labels.Table, log *logger.Logger) *App {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := feed.NewHub(log)

	authService := auth.NewService(auth.NewUserRepository(db), tokens)
	catalogService := catalog.NewService(catalog.NewRepository(db), table, log, catalog.Options{
		SimilarLimit:     cfg.SimilarLimit,
		SimilarScanLimit: cfg.SimilarScanLimit,
		Events:           hub,
	})
	favoriteService := favorite.NewService(favorite.NewRepository(db), catalogService, table, log)
	adminService := admin.NewService(catalogService, db, log)

	authHandler := auth.NewHandler(authService, tokens.TTL())
	catalogHandler := catalog.NewHandler(catalogService)
	favoriteHandler := favorite.NewHandler(favoriteService, table)
	adminHandler := admin.NewHandler(adminService, catalogHandler)
	feedHandler := feed.NewHandler(hub, tokens, cfg.AllowedOrigins())

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		otelgin.Middleware(serviceName),
		middleware.Metrics(),
		middleware.RequestLogger(log),
		middleware.ErrorLogger(log),
		middleware.CORS(cfg.AllowedOrigins()),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		public := v1.Group("", middleware.OptionalAuth(tokens))
		protected := v1.Group("", middleware.JWTAuth(tokens))
		adminOnly := v1.Group("", middleware.JWTAuth(tokens), middleware.AdminOnly())

		authHandler.RegisterProtectedRoutes(protected)
		catalogHandler.RegisterRoutes(public, protected, adminOnly)
		favoriteHandler.RegisterRoutes(protected)
		adminHandler.RegisterRoutes(adminOnly.Group("/admin"))
		feedHandler.RegisterRoutes(v1)
	}

	return &App{
		Router:    r,
		Auth:      authService,
		Catalog:   catalogService,
		Favorites: favoriteService,
		Admin:     adminService,
		Feed:      hub,
	}
}
