package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/cache"
	"github.com/plumeapp/plume/pkg/plume/comments"
	"github.com/plumeapp/plume/pkg/plume/config"
	"github.com/plumeapp/plume/pkg/plume/database"
	"github.com/plumeapp/plume/pkg/plume/follows"
	"github.com/plumeapp/plume/pkg/plume/groups"
	"github.com/plumeapp/plume/pkg/plume/logging"
	"github.com/plumeapp/plume/pkg/plume/media"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/posts"
	"github.com/plumeapp/plume/pkg/plume/profiles"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewSugar(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	auth.SetSecret(cfg.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	pageCache, err := newCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to create cache: %v", err)
	}

	// Set up Gin router
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Unmatched routes get a JSON 404 rather than gin's plain-text one
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	// Uploaded images
	r.Static("/media", cfg.UploadDir)

	// API routes
	api := r.Group("/api")
	{
		db := database.GetDB()

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Posts: global feed, create, detail, edit, delete
		postsHandler := posts.NewHandler(db, pageCache, cfg.Cache.IndexTTL)
		postsHandler.RegisterRoutes(api)

		// Groups and the group feed
		groupsHandler := groups.NewHandler(db)
		groupsHandler.RegisterRoutes(api)

		// Author profiles
		profilesHandler := profiles.NewHandler(db)
		profilesHandler.RegisterRoutes(api)

		// Comments
		commentsHandler := comments.NewHandler(db)
		commentsHandler.RegisterRoutes(api)

		// Follows and the followed-authors feed
		followsHandler := follows.NewHandler(db)
		followsHandler.RegisterRoutes(api)

		// Image uploads
		mediaHandler := media.NewHandler(cfg.UploadDir)
		mediaHandler.RegisterRoutes(api)
	}

	logger.Infof("Starting Plume server on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// newCache builds the page cache selected by config. Memory is the
// default; redis shares cached pages across instances.
func newCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cfg.Cache.RedisAddr, "plume")
	}
	return cache.NewMemoryCache(), nil
}
