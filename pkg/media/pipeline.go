package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/config"
	"github.com/staubi82/KlipZ/pkg/db"
	"github.com/staubi82/KlipZ/pkg/db/queries"
	"github.com/staubi82/KlipZ/pkg/metrics"
	"github.com/staubi82/KlipZ/pkg/progress"
)

// IngestRequest carries the caller-supplied metadata for one ingestion.
type IngestRequest struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	IsPublic    bool
	Transcode   bool
	MimeType    string
}

// Pipeline orchestrates staging, transcoding, thumbnailing, duration probing
// and catalog persistence for both upload and URL-import flows. All paths come
// from the injected config, so tests can run against fixture directories.
type Pipeline struct {
	dataDir   string
	uploadDir string
	thumbDir  string
	processor Processor
	fetcher   Fetcher
	registry  *progress.Registry
}

func NewPipeline(cfg *config.Config, processor Processor, fetcher Fetcher, registry *progress.Registry) *Pipeline {
	return &Pipeline{
		dataDir:   cfg.DataDir,
		uploadDir: cfg.UploadDir(),
		thumbDir:  cfg.ThumbnailDir(),
		processor: processor,
		fetcher:   fetcher,
		registry:  registry,
	}
}

// IngestUpload runs the synchronous upload pipeline on a file already saved
// into stagingDir. On any failure the staging directory and any promoted file
// are removed before the error surfaces: no orphaned permanent file, no
// catalog row pointing at nothing.
func (p *Pipeline) IngestUpload(ctx context.Context, stagedFile, stagingDir string, req IngestRequest) (int64, error) {
	defer Cleanup(stagingDir)

	info, err := os.Stat(stagedFile)
	if err != nil || info.Size() == 0 {
		log.Warnf("IngestUpload: staged file %s missing or empty", stagedFile)
		return 0, ErrEmptyFile
	}

	permanentPath, err := Promote(stagedFile, p.uploadDir)
	if err != nil {
		metrics.IngestFailures.WithLabelValues("upload").Inc()
		return 0, err
	}
	// Nothing of value remains in staging once the file is promoted; remove it
	// now so the catalog row is only ever created after staging is gone.
	Cleanup(stagingDir)

	id, err := p.finalize(ctx, permanentPath, req)
	if err != nil {
		metrics.IngestFailures.WithLabelValues("upload").Inc()
		return 0, err
	}

	metrics.VideosIngested.WithLabelValues("upload").Inc()
	log.Infof("Upload ingested as video %d (%s)", id, permanentPath)
	return id, nil
}

// ImportURL runs the asynchronous URL-import pipeline to completion, recording
// every state change in the progress registry. It is meant to be launched on
// its own goroutine; errors cannot reach an HTTP response anymore and end up
// in the registry instead. The background context is deliberate: a client
// disconnecting from the status stream must not cancel the download.
func (p *Pipeline) ImportURL(importID, url string, req IngestRequest) {
	ctx := context.Background()

	metrics.ActiveImports.Inc()
	defer metrics.ActiveImports.Dec()

	fail := func(stage string, err error) {
		log.Errorf("ImportURL %s: %s failed: %v", importID, stage, err)
		p.registry.Fail(importID, err.Error())
		metrics.IngestFailures.WithLabelValues("import").Inc()
	}

	stagingDir, err := CreateStagingDir(p.uploadDir)
	if err != nil {
		fail("staging", err)
		return
	}
	defer Cleanup(stagingDir)

	downloaded, err := p.fetcher.Fetch(ctx, url, stagingDir, func(percent float64) {
		p.registry.SetProgress(importID, percent)
	})
	if err != nil {
		fail("download", err)
		return
	}

	permanentPath, err := Promote(downloaded, p.uploadDir)
	if err != nil {
		fail("promote", err)
		return
	}
	Cleanup(stagingDir)

	id, err := p.finalize(ctx, permanentPath, req)
	if err != nil {
		fail("processing", err)
		return
	}

	p.registry.Complete(importID, id)
	metrics.VideosIngested.WithLabelValues("import").Inc()
	log.Infof("Import %s ingested as video %d (%s)", importID, id, permanentPath)
}

// finalize is the shared pipeline tail: optional transcode, thumbnail,
// duration probe, catalog insert. The promoted file (and a generated
// thumbnail) are removed again on every failure path.
func (p *Pipeline) finalize(ctx context.Context, permanentPath string, req IngestRequest) (int64, error) {
	mimeType := req.MimeType

	if req.Transcode {
		transcodedPath, err := p.processor.Transcode(ctx, permanentPath, p.uploadDir)
		if err != nil {
			RemoveFile(permanentPath)
			return 0, err
		}
		// Keep only the transcoded rendition.
		RemoveFile(permanentPath)
		permanentPath = transcodedPath
		mimeType = "video/mp4"
	}

	thumbPath, err := p.processor.GenerateThumbnail(ctx, permanentPath, p.thumbDir)
	if err != nil {
		RemoveFile(permanentPath)
		return 0, err
	}

	duration, err := p.processor.ProbeDuration(ctx, permanentPath)
	if err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, err
	}

	// A record must never reference a dangling or empty file.
	if err := verifyNonEmpty(permanentPath); err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, err
	}

	relFile, err := filepath.Rel(p.dataDir, permanentPath)
	if err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, fmt.Errorf("failed to relativize asset path: %w", err)
	}
	relThumb, err := filepath.Rel(p.dataDir, thumbPath)
	if err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, fmt.Errorf("failed to relativize thumbnail path: %w", err)
	}

	if mimeType == "" {
		mimeType = "video/mp4"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}

	video := &db.Video{
		Title:       req.Title,
		Description: req.Description,
		Filepath:    filepath.ToSlash(relFile),
		Thumbnail:   "/" + filepath.ToSlash(relThumb),
		Duration:    sql.NullFloat64{Float64: duration, Valid: true},
		MimeType:    mimeType,
		Category:    req.Category,
		Tags:        string(tagsJSON),
		IsPublic:    req.IsPublic,
	}

	id, err := queries.CreateVideo(video)
	if err != nil {
		RemoveFile(permanentPath)
		RemoveFile(thumbPath)
		return 0, err
	}

	return id, nil
}
