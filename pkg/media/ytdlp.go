package media

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Metadata is what a metadata-only probe of a remote URL yields.
type Metadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
}

// Fetcher wraps the external URL downloader. An interface so import tests can
// run without yt-dlp installed.
type Fetcher interface {
	Fetch(ctx context.Context, url, targetDir string, onProgress func(float64)) (string, error)
	FetchMetadata(ctx context.Context, url string) (*Metadata, error)
}

// YtDlp shells out to the yt-dlp binary.
type YtDlp struct {
	Path string
}

func NewYtDlp(path string) *YtDlp {
	return &YtDlp{Path: path}
}

// videoExtensions are the container formats the downloader may produce.
// yt-dlp writes auxiliary files (subtitles, thumbnails) next to the video, so
// the result scan has to filter by extension.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
}

// progressPattern matches the percentage in yt-dlp progress lines like
// "[download]  42.7% of 10.00MiB at 1.00MiB/s".
var progressPattern = regexp.MustCompile(`\s(\d+(?:\.\d+)?)%`)

// ParseProgressLine extracts the percentage from one line of downloader
// output. Returns false when the line carries no progress information.
func ParseProgressLine(line string) (float64, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil || percent < 0 || percent > 100 {
		return 0, false
	}
	return percent, true
}

// ScanProgress reads r line by line, invoking onProgress for every progress
// line, and returns the tail of everything read for diagnostics.
func ScanProgress(r io.Reader, onProgress func(float64)) string {
	var tail strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if percent, ok := ParseProgressLine(line); ok && onProgress != nil {
			onProgress(percent)
		}
		tail.WriteString(line)
		tail.WriteString("\n")
	}
	return excerpt(tail.String())
}

// Fetch downloads the video behind url into targetDir, reporting progress as
// the external tool emits it. Progress can appear on stdout or stderr
// depending on the tool version, so both streams are scanned. On success the
// newest file with a video extension in targetDir is returned; the caller owns
// cleanup of targetDir in every case.
func (y *YtDlp) Fetch(ctx context.Context, url, targetDir string, onProgress func(float64)) (string, error) {
	args := []string{
		"-o", filepath.Join(targetDir, "%(id)s.%(ext)s"),
		"--newline",
		url,
	}

	cmd := exec.CommandContext(ctx, y.Path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &ToolError{Tool: "yt-dlp", Op: "fetch", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", &ToolError{Tool: "yt-dlp", Op: "fetch", Err: err}
	}

	log.Infof("Starting download: %s -> %s", url, targetDir)
	if err := cmd.Start(); err != nil {
		return "", &ToolError{Tool: "yt-dlp", Op: "fetch", Err: err}
	}

	var wg sync.WaitGroup
	var stderrTail string
	wg.Add(2)
	go func() {
		defer wg.Done()
		ScanProgress(stdout, onProgress)
	}()
	go func() {
		defer wg.Done()
		stderrTail = ScanProgress(stderr, onProgress)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return "", &ToolError{Tool: "yt-dlp", Op: "fetch", Output: stderrTail, Err: err}
	}

	videoPath, err := SelectNewestVideo(targetDir)
	if err != nil {
		return "", err
	}

	log.Infof("Download finished: %s", videoPath)
	return videoPath, nil
}

// SelectNewestVideo picks the most recently modified file with a video
// extension in dir. "Most recent" is a tie-break heuristic for the rare case
// of multiple candidates, not a guarantee.
func SelectNewestVideo(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &ToolError{Tool: "yt-dlp", Op: "fetch", Err: err}
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestMod {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime().UnixNano()
		}
	}

	if newest == "" {
		return "", ErrNoVideoFile
	}
	return newest, nil
}

// FetchMetadata asks the external tool for the structured metadata of a URL
// without downloading anything.
func (y *YtDlp) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, y.Path, "--dump-json", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ToolError{Tool: "yt-dlp", Op: "metadata", Output: excerpt(stderr.String()), Err: err}
	}

	metadata := &Metadata{}
	if err := json.Unmarshal(stdout.Bytes(), metadata); err != nil {
		return nil, &ToolError{Tool: "yt-dlp", Op: "metadata", Output: excerpt(stdout.String()), Err: err}
	}

	return metadata, nil
}
