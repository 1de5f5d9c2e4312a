package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/staubi82/KlipZ/pkg/config"
	"github.com/staubi82/KlipZ/pkg/db"
	"github.com/staubi82/KlipZ/pkg/media"
	"github.com/staubi82/KlipZ/pkg/middleware"
	"github.com/staubi82/KlipZ/pkg/progress"
	"github.com/staubi82/KlipZ/pkg/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetLevel(log.ErrorLevel)
	services.InitJWT("test-secret")
	os.Exit(m.Run())
}

// stubProcessor writes non-empty output files so handler tests can exercise
// the full pipeline without ffmpeg.
type stubProcessor struct{}

func (stubProcessor) Transcode(_ context.Context, inputPath, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, media.TranscodedName(inputPath))
	return outputPath, os.WriteFile(outputPath, []byte("transcoded"), 0644)
}

func (stubProcessor) GenerateThumbnail(_ context.Context, inputPath, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, media.ThumbnailName(inputPath))
	return outputPath, os.WriteFile(outputPath, []byte("jpeg"), 0644)
}

func (stubProcessor) ProbeDuration(_ context.Context, _ string) (float64, error) {
	return 42.0, nil
}

// stubFetcher serves canned downloads and metadata without yt-dlp.
type stubFetcher struct {
	metadata *media.Metadata
	fetchErr error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string, targetDir string, onProgress func(float64)) (string, error) {
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	if onProgress != nil {
		onProgress(100)
	}
	path := filepath.Join(targetDir, "abc123.mp4")
	return path, os.WriteFile(path, []byte("downloaded"), 0644)
}

func (s *stubFetcher) FetchMetadata(_ context.Context, _ string) (*media.Metadata, error) {
	if s.metadata == nil {
		return nil, &media.ToolError{Tool: "yt-dlp", Op: "metadata", Err: os.ErrNotExist}
	}
	return s.metadata, nil
}

// setupTest wires a fresh SQLite database, fixture directories and a full
// handler set with stubbed external tools.
func setupTest(t *testing.T, fetcher media.Fetcher) (*Handlers, *gin.Engine) {
	t.Helper()

	cfg := &config.Config{DataDir: t.TempDir()}
	require.NoError(t, os.MkdirAll(cfg.UploadDir(), 0755))
	require.NoError(t, os.MkdirAll(cfg.ThumbnailDir(), 0755))
	require.NoError(t, db.InitDB(cfg.DatabasePath()))
	t.Cleanup(db.CloseDB)

	registry := progress.NewRegistry()
	pipeline := media.NewPipeline(cfg, stubProcessor{}, fetcher, registry)
	h := NewHandlers(cfg, pipeline, fetcher, registry)

	router := gin.New()
	router.GET("/health", HealthCheck)

	authRoutes := router.Group("/api/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)

	api := router.Group("/api")
	api.POST("/upload", h.UploadVideo)
	api.POST("/fetch-metadata", h.FetchMetadata)
	api.POST("/import-url", h.ImportURL)
	api.GET("/import-progress/:importId", h.ImportProgress)
	api.GET("/videos", ListVideos)
	api.GET("/videos/:id", h.StreamVideo)
	api.PUT("/videos/:id", UpdateVideo)
	api.DELETE("/videos/:id", h.DeleteVideo)
	api.GET("/categories", ListCategories)
	api.POST("/categories", CreateCategory)
	api.DELETE("/categories/:id", DeleteCategory)

	profileRoutes := router.Group("/api/profile")
	profileRoutes.Use(middleware.AuthMiddleware())
	profileRoutes.GET("", GetProfile)
	profileRoutes.POST("", SaveProfile)

	return h, router
}

func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
