package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds everything the server needs at startup. The media pipeline gets
// this struct injected instead of reading directories from globals, so tests can
// point it at throwaway fixture directories.
type Config struct {
	Host      string
	Port      string
	DataDir   string // root for the database file and the asset directories
	JwtSecret string

	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		Host:        os.Getenv("HOST"),
		Port:        os.Getenv("PORT"),
		DataDir:     os.Getenv("DATA_DIR"),
		JwtSecret:   os.Getenv("JWT_SECRET"),
		FFmpegPath:  os.Getenv("FFMPEG_PATH"),
		FFprobePath: os.Getenv("FFPROBE_PATH"),
		YtDlpPath:   os.Getenv("YTDLP_PATH"),
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "3301"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	if cfg.JwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set. This is critical for authentication.")
	}

	return cfg
}

// DatabasePath is the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "videos.db")
}

// UploadDir holds the permanent video assets.
func (c *Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// ThumbnailDir holds the generated JPEG thumbnails.
func (c *Config) ThumbnailDir() string {
	return filepath.Join(c.DataDir, "thumbnails")
}
