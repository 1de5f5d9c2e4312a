package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db"
	"github.com/staubi82/KlipZ/pkg/db/queries"
	"github.com/staubi82/KlipZ/pkg/utils"
)

// VideoResponse is the catalog entry shape sent to clients.
type VideoResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    float64  `json:"duration"`
	MimeType    string   `json:"mimeType"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"isPublic"`
	CreatedAt   string   `json:"created_at"`
}

type UpdateVideoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"is_public"`
}

func newVideoResponse(video *db.Video) VideoResponse {
	var tags []string
	if err := json.Unmarshal([]byte(video.Tags), &tags); err != nil || tags == nil {
		tags = []string{}
	}
	return VideoResponse{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Thumbnail:   video.Thumbnail,
		Duration:    video.Duration.Float64,
		MimeType:    video.MimeType,
		Category:    video.Category,
		Tags:        tags,
		IsPublic:    video.IsPublic,
		CreatedAt:   video.CreatedAt.Format(time.RFC3339),
	}
}

// ListVideos returns all catalog entries, newest first, optionally filtered by
// the category query parameter.
func ListVideos(c *gin.Context) {
	videos, err := queries.ListVideos(c.Query("category"))
	if err != nil {
		log.Errorf("ListVideos: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to list videos", nil)
		return
	}

	responses := make([]VideoResponse, len(videos))
	for i := range videos {
		responses[i] = newVideoResponse(&videos[i])
	}
	c.JSON(http.StatusOK, responses)
}

// StreamVideo serves the underlying asset file with byte-range support. A
// catalog row whose file has gone missing yields a 404, never a crash.
func (h *Handlers) StreamVideo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	video, err := queries.FindVideoByID(id)
	if err != nil {
		log.Errorf("StreamVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to load video", nil)
		return
	}
	if video == nil {
		c.Status(http.StatusNotFound)
		return
	}

	filePath := filepath.Join(h.Config.DataDir, filepath.FromSlash(video.Filepath))
	info, err := os.Stat(filePath)
	if err != nil {
		log.Warnf("StreamVideo: asset for video %d missing on disk: %s", id, filePath)
		c.String(http.StatusNotFound, "File not found.")
		return
	}
	fileSize := info.Size()

	mimeType := video.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		c.Header("Content-Length", strconv.FormatInt(fileSize, 10))
		c.Header("Content-Type", mimeType)
		c.Status(http.StatusOK)
		streamFileRange(c, filePath, 0, fileSize)
		return
	}

	start, end, ok := parseRange(rangeHeader, fileSize)
	if !ok {
		c.String(http.StatusRequestedRangeNotSatisfiable,
			"Requested range not satisfiable\n%s of %d", rangeHeader, fileSize)
		return
	}

	chunkSize := end - start + 1
	c.Header("Content-Range", "bytes "+strconv.FormatInt(start, 10)+"-"+strconv.FormatInt(end, 10)+"/"+strconv.FormatInt(fileSize, 10))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Length", strconv.FormatInt(chunkSize, 10))
	c.Header("Content-Type", mimeType)
	c.Status(http.StatusPartialContent)
	streamFileRange(c, filePath, start, chunkSize)
}

// parseRange parses "bytes=<start>-<end>" against the file size. start is
// required; end defaults to the last byte. Anything out of bounds or malformed
// is unsatisfiable.
func parseRange(header string, fileSize int64) (start, end int64, ok bool) {
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return 0, 0, false
	}
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}

	end = fileSize - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}

	if start >= fileSize || end >= fileSize || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// streamFileRange copies n bytes starting at offset to the response. The
// status line is already written, so mid-stream failures can only be logged
// and the connection dropped.
func streamFileRange(c *gin.Context, filePath string, offset, n int64) {
	file, err := os.Open(filePath)
	if err != nil {
		log.Errorf("StreamVideo: failed to open %s: %v", filePath, err)
		return
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			log.Errorf("StreamVideo: failed to seek %s to %d: %v", filePath, offset, err)
			return
		}
	}

	if _, err := io.CopyN(c.Writer, file, n); err != nil {
		log.Errorf("StreamVideo: error streaming %s: %v", filePath, err)
	}
}

// UpdateVideo edits a catalog entry's user-editable fields. The filepath,
// thumbnail, duration and mime type are fixed at ingestion.
func UpdateVideo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("UpdateVideo: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	video, err := queries.FindVideoByID(id)
	if err != nil {
		log.Errorf("UpdateVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to load video", nil)
		return
	}
	if video == nil {
		utils.ResponseWithError(c, http.StatusNotFound, "Video not found", nil)
		return
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid tags", err)
		return
	}

	video.Title = req.Title
	video.Description = req.Description
	video.Category = req.Category
	video.Tags = string(tagsJSON)
	video.IsPublic = req.IsPublic == nil || *req.IsPublic

	if err := queries.UpdateVideo(video); err != nil {
		if err == sql.ErrNoRows {
			utils.ResponseWithError(c, http.StatusNotFound, "Video not found", nil)
			return
		}
		log.Errorf("UpdateVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to update video", err)
		return
	}

	utils.ResponseWithMessage(c, http.StatusOK, "Video updated successfully")
}

// DeleteVideo removes the catalog row and best-effort deletes the asset file
// and thumbnail. File removal failures never fail the request.
func (h *Handlers) DeleteVideo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	video, err := queries.FindVideoByID(id)
	if err != nil {
		log.Errorf("DeleteVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to load video", nil)
		return
	}
	if video == nil {
		utils.ResponseWithError(c, http.StatusNotFound, "Video not found", nil)
		return
	}

	filePath := filepath.Join(h.Config.DataDir, filepath.FromSlash(video.Filepath))
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Warnf("DeleteVideo: failed to remove asset %s: %v", filePath, err)
	}
	if video.Thumbnail != "" {
		thumbPath := filepath.Join(h.Config.DataDir, filepath.FromSlash(strings.TrimPrefix(video.Thumbnail, "/")))
		if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
			log.Warnf("DeleteVideo: failed to remove thumbnail %s: %v", thumbPath, err)
		}
	}

	if err := queries.DeleteVideo(id); err != nil {
		if err == sql.ErrNoRows {
			utils.ResponseWithError(c, http.StatusNotFound, "Video not found", nil)
			return
		}
		log.Errorf("DeleteVideo: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to delete video", err)
		return
	}

	utils.ResponseWithMessage(c, http.StatusOK, "Video deleted")
}
