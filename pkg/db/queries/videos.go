package queries

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db"
)

// CreateVideo inserts a new video row and returns its assigned id. The caller
// (the ingestion pipeline) is responsible for having verified that the file at
// video.Filepath exists and is non-empty.
func CreateVideo(video *db.Video) (int64, error) {
	query := `
        INSERT INTO videos (title, description, filepath, thumbnail, duration, mime_type, category, tags, is_public)
        VALUES (:title, :description, :filepath, :thumbnail, :duration, :mime_type, :category, :tags, :is_public)`

	result, err := db.DB.NamedExec(query, video)
	if err != nil {
		log.Errorf("Error creating video: %v", err)
		return 0, fmt.Errorf("failed to create video: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new video id: %w", err)
	}

	log.Infof("Video '%s' created (ID: %d)", video.Title, id)
	return id, nil
}

// FindVideoByID retrieves a video by its ID. Returns (nil, nil) when no row exists.
func FindVideoByID(id int64) (*db.Video, error) {
	video := &db.Video{}
	query := `SELECT id, title, description, filepath, thumbnail, duration, mime_type, category, tags, is_public, created_at FROM videos WHERE id = ?`
	err := db.DB.Get(video, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debugf("Video with ID %d not found.", id)
			return nil, nil
		}
		log.Errorf("Error finding video by ID %d: %v", id, err)
		return nil, fmt.Errorf("error finding video by ID: %w", err)
	}
	return video, nil
}

// ListVideos returns all videos, newest first. An empty category means no filter.
func ListVideos(category string) ([]db.Video, error) {
	var videos []db.Video
	var err error
	if category != "" {
		query := `SELECT id, title, description, filepath, thumbnail, duration, mime_type, category, tags, is_public, created_at FROM videos WHERE category = ? ORDER BY created_at DESC`
		err = db.DB.Select(&videos, query, category)
	} else {
		query := `SELECT id, title, description, filepath, thumbnail, duration, mime_type, category, tags, is_public, created_at FROM videos ORDER BY created_at DESC`
		err = db.DB.Select(&videos, query)
	}
	if err != nil {
		log.Errorf("Error listing videos (category=%q): %v", category, err)
		return nil, fmt.Errorf("error listing videos: %w", err)
	}
	return videos, nil
}

// UpdateVideo updates the user-editable fields of a video. Filepath, thumbnail,
// duration and mime type are fixed at ingestion and never touched here.
func UpdateVideo(video *db.Video) error {
	query := `
        UPDATE videos
        SET title = :title, description = :description, category = :category,
            tags = :tags, is_public = :is_public
        WHERE id = :id`

	result, err := db.DB.NamedExec(query, video)
	if err != nil {
		log.Errorf("Error updating video with ID %d: %v", video.ID, err)
		return fmt.Errorf("failed to update video: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		log.Warnf("No video found with ID %d for update.", video.ID)
		return sql.ErrNoRows
	}

	log.Infof("Video with ID %d updated.", video.ID)
	return nil
}

// DeleteVideo removes the catalog row. Removal of the underlying files is the
// caller's (best-effort) concern.
func DeleteVideo(id int64) error {
	result, err := db.DB.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		log.Errorf("Error deleting video with ID %d: %v", id, err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		log.Warnf("No video found with ID %d for deletion.", id)
		return sql.ErrNoRows
	}

	log.Infof("Video with ID %d deleted.", id)
	return nil
}

// ClearVideoCategory blanks the category of every video carrying the given
// label. Used when a category is deleted: the videos stay, their label goes.
func ClearVideoCategory(category string) (int64, error) {
	result, err := db.DB.Exec(`UPDATE videos SET category = '' WHERE category = ?`, category)
	if err != nil {
		log.Errorf("Error clearing category %q from videos: %v", category, err)
		return 0, fmt.Errorf("failed to clear video category: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}
