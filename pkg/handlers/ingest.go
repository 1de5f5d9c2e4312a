package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/config"
	"github.com/staubi82/KlipZ/pkg/media"
	"github.com/staubi82/KlipZ/pkg/progress"
	"github.com/staubi82/KlipZ/pkg/utils"
)

// Handlers bundles the dependencies the ingestion and streaming endpoints
// need.
type Handlers struct {
	Config   *config.Config
	Pipeline *media.Pipeline
	Fetcher  media.Fetcher
	Registry *progress.Registry
}

func NewHandlers(cfg *config.Config, pipeline *media.Pipeline, fetcher media.Fetcher, registry *progress.Registry) *Handlers {
	return &Handlers{
		Config:   cfg,
		Pipeline: pipeline,
		Fetcher:  fetcher,
		Registry: registry,
	}
}

type ImportURLRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
}

type FetchMetadataRequest struct {
	URL string `json:"url"`
}

// UploadVideo accepts a multipart upload, stages it and runs the synchronous
// ingestion pipeline. The response waits for the full pipeline, transcode
// included.
func (h *Handlers) UploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "No file provided.", nil)
		return
	}

	stagingDir, err := media.CreateStagingDir(h.Config.UploadDir())
	if err != nil {
		log.Errorf("UploadVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to stage upload", err)
		return
	}

	stagedFile := filepath.Join(stagingDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, stagedFile); err != nil {
		log.Errorf("UploadVideo: failed to save upload: %v", err)
		media.Cleanup(stagingDir)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to save video file", err)
		return
	}

	req := media.IngestRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Tags:        parseTagsField(c.PostForm("tags")),
		IsPublic:    c.PostForm("isPublic") != "false",
		Transcode:   c.DefaultPostForm("transcode", "true") == "true",
		MimeType:    fileHeader.Header.Get("Content-Type"),
	}

	id, err := h.Pipeline.IngestUpload(c.Request.Context(), stagedFile, stagingDir, req)
	if err != nil {
		if errors.Is(err, media.ErrEmptyFile) {
			utils.ResponseWithError(c, http.StatusBadRequest, "Video file does not exist or is empty.", nil)
			return
		}
		log.Errorf("UploadVideo: pipeline failed: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Upload or transcoding failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// FetchMetadata probes a remote URL for title/description/thumbnail/duration
// without downloading the video.
func (h *Handlers) FetchMetadata(c *gin.Context) {
	var req FetchMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "URL missing", nil)
		return
	}

	metadata, err := h.Fetcher.FetchMetadata(c.Request.Context(), req.URL)
	if err != nil {
		log.Errorf("FetchMetadata: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to fetch metadata from URL", err)
		return
	}

	c.JSON(http.StatusOK, metadata)
}

// ImportURL registers an import job and kicks off the download in the
// background. The response only carries the import id; progress and the final
// outcome are delivered over the status stream.
func (h *Handlers) ImportURL(c *gin.Context) {
	var req ImportURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "URL missing", nil)
		return
	}

	importID := progress.NewImportID()
	h.Registry.Create(importID)

	ingest := media.IngestRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		MimeType:    "video/mp4",
	}

	go h.Pipeline.ImportURL(importID, req.URL, ingest)

	log.Infof("ImportURL: started import %s for %s", importID, req.URL)
	c.JSON(http.StatusOK, gin.H{"importId": importID})
}

// ImportProgress streams the state of an import job as server-sent events
// until a terminal state is delivered or the client disconnects.
func (h *Handlers) ImportProgress(c *gin.Context) {
	importID := c.Param("importId")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ch := h.Registry.Subscribe(c.Request.Context(), importID)
	c.Stream(func(w io.Writer) bool {
		job, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("message", job)
		return true
	})
}

// parseTagsField decodes the JSON-encoded tags array of a multipart form.
func parseTagsField(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		log.Debugf("Ignoring unparseable tags field: %q", raw)
		return []string{}
	}
	return tags
}
