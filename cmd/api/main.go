// main.go
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/scenecast/scenecast-api/auth"
	"github.com/scenecast/scenecast-api/generation"
	"github.com/scenecast/scenecast-api/internal/platform"
	"github.com/scenecast/scenecast-api/jobs"
	"github.com/scenecast/scenecast-api/processing"
	"github.com/scenecast/scenecast-api/projects"
)

type Server struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Jobs   *jobs.Manager
	Router *gin.Engine
	Cron   *cron.Cron
}

func NewServer() (*Server, error) {
	// Use the shared connection initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	ai, err := processing.NewClient()
	if err != nil {
		return nil, err
	}
	manager := jobs.NewManager(jobs.NewMemoryStore(), db, ai, ai)

	// Reap terminal jobs past their retention TTL
	c := cron.New()
	if _, err := c.AddFunc("@every 1m", manager.Sweep); err != nil {
		return nil, err
	}
	c.Start()

	// Create Gin router with CORS middleware
	router := gin.Default()

	// Add database to context middleware
	router.Use(func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	})

	// Add CORS middleware for your frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("FRONTEND_URL"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		DB:     db,
		Redis:  rdb,
		Jobs:   manager,
		Router: router,
		Cron:   c,
	}

	// Setup routes
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.Router.GET("/health", func(c *gin.Context) {
		// Check database connection
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Create handlers
	authHandler := auth.NewHandler(s.DB)
	projectHandler := projects.NewHandler(s.DB, s.Redis)
	generationHandler := generation.NewHandler(s.DB, s.Jobs)

	// Root route - no auth needed
	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Scenecast API v1"})
	})

	// Auth routes
	authRoutes := s.Router.Group("/auth")
	{
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", auth.AuthMiddleware(), authHandler.GetCurrentUser)
	}

	// Protected routes that require authentication
	protected := s.Router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		// Generation pipeline
		generationRoutes := protected.Group("/generation")
		{
			generationRoutes.POST("", generationHandler.StartGeneration)
			generationRoutes.GET("/:id/stream", generationHandler.StreamProgress)
			generationRoutes.GET("/:id/status", generationHandler.PollStatus)
		}

		// Project routes
		projectRoutes := protected.Group("/projects")
		{
			projectRoutes.GET("", projectHandler.GetUserProjects)
			projectRoutes.GET("/:id", projectHandler.GetProject)
			projectRoutes.POST("/:id/export", projectHandler.ExportProject)
			projectRoutes.GET("/:id/download", projectHandler.DownloadExport)
		}
	}
}

func (s *Server) Run() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	return s.Router.Run(":" + port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
