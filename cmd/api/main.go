package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/config"
	"github.com/staubi82/KlipZ/pkg/db"
	"github.com/staubi82/KlipZ/pkg/handlers"
	"github.com/staubi82/KlipZ/pkg/media"
	"github.com/staubi82/KlipZ/pkg/middleware"
	"github.com/staubi82/KlipZ/pkg/progress"
	"github.com/staubi82/KlipZ/pkg/services"
)

func main() {
	log.SetOutput(gin.DefaultWriter)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting KlipZ API...")

	cfg := config.LoadConfig()
	services.InitJWT(cfg.JwtSecret)

	for _, dir := range []string{cfg.UploadDir(), cfg.ThumbnailDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	// A previous crash may have left half-finished staging directories behind.
	media.ReapStaleStaging(cfg.UploadDir())

	if err := db.InitDB(cfg.DatabasePath()); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	registry := progress.NewRegistry()
	processor := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath)
	fetcher := media.NewYtDlp(cfg.YtDlpPath)
	pipeline := media.NewPipeline(cfg, processor, fetcher, registry)
	apiHandlers := handlers.NewHandlers(cfg, pipeline, fetcher, registry)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"},
		ExposeHeaders:    []string{"Content-Range", "Accept-Ranges", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The binary assets are served statically under fixed prefixes.
	router.Static("/uploads", cfg.UploadDir())
	router.Static("/thumbnails", cfg.ThumbnailDir())

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", handlers.RegisterUser)
		authRoutes.POST("/login", handlers.LoginUser)
	}

	api := router.Group("/api")
	{
		api.POST("/upload", apiHandlers.UploadVideo)
		api.POST("/fetch-metadata", apiHandlers.FetchMetadata)
		api.POST("/import-url", apiHandlers.ImportURL)
		api.GET("/import-progress/:importId", apiHandlers.ImportProgress)

		api.GET("/videos", handlers.ListVideos)
		api.GET("/videos/:id", apiHandlers.StreamVideo)
		api.PUT("/videos/:id", handlers.UpdateVideo)
		api.DELETE("/videos/:id", apiHandlers.DeleteVideo)

		api.GET("/categories", handlers.ListCategories)
		api.POST("/categories", handlers.CreateCategory)
		api.DELETE("/categories/:id", handlers.DeleteCategory)
	}

	profileRoutes := router.Group("/api/profile")
	profileRoutes.Use(middleware.AuthMiddleware())
	{
		profileRoutes.GET("", handlers.GetProfile)
		profileRoutes.POST("", handlers.SaveProfile)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s:%s", cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully.")
}
