package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Processor wraps the external media tool for the three operations the
// pipeline needs. An interface so pipeline tests can run without ffmpeg
// installed.
type Processor interface {
	Transcode(ctx context.Context, inputPath, outputDir string) (string, error)
	GenerateThumbnail(ctx context.Context, inputPath, outputDir string) (string, error)
	ProbeDuration(ctx context.Context, inputPath string) (float64, error)
}

// FFmpeg shells out to the ffmpeg/ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// TranscodedName derives the output filename for a transcode from the input
// filename, so repeated runs on the same logical input stay traceable.
func TranscodedName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_transcoded.mp4"
}

// ThumbnailName derives the thumbnail filename from the input basename.
func ThumbnailName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

// Transcode re-encodes the input into an H.264/AAC MP4 with the moov atom up
// front, so playback can start before the whole file has arrived.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, TranscodedName(inputPath))

	args := []string{
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	log.Infof("Starting transcode: %s -> %s", inputPath, outputPath)
	if stderr, err := f.run(ctx, f.FFmpegPath, args); err != nil {
		RemoveFile(outputPath)
		return "", &ToolError{Tool: "ffmpeg", Op: "transcode", Output: stderr, Err: err}
	}

	if err := verifyNonEmpty(outputPath); err != nil {
		RemoveFile(outputPath)
		return "", &ToolError{Tool: "ffmpeg", Op: "transcode", Err: err}
	}

	log.Infof("Transcode finished: %s", outputPath)
	return outputPath, nil
}

// GenerateThumbnail captures a single representative frame as a JPEG.
func (f *FFmpeg) GenerateThumbnail(ctx context.Context, inputPath, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, ThumbnailName(inputPath))

	args := []string{
		"-i", inputPath,
		"-ss", "1",
		"-vframes", "1",
		"-y",
		outputPath,
	}

	if stderr, err := f.run(ctx, f.FFmpegPath, args); err != nil {
		RemoveFile(outputPath)
		return "", &ToolError{Tool: "ffmpeg", Op: "thumbnail", Output: stderr, Err: err}
	}

	if err := verifyNonEmpty(outputPath); err != nil {
		RemoveFile(outputPath)
		return "", &ToolError{Tool: "ffmpeg", Op: "thumbnail", Err: err}
	}

	log.Debugf("Thumbnail generated for %s", inputPath)
	return outputPath, nil
}

// ProbeDuration reads the container duration in seconds from stream metadata.
func (f *FFmpeg) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputPath,
	}

	cmd := exec.CommandContext(ctx, f.FFprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, &ToolError{Tool: "ffprobe", Op: "probe", Output: excerpt(stderr.String()), Err: err}
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &probe); err != nil {
		return 0, &ToolError{Tool: "ffprobe", Op: "probe", Output: excerpt(stdout.String()), Err: err}
	}
	if probe.Format.Duration == "" {
		return 0, &ToolError{Tool: "ffprobe", Op: "probe", Err: errors.New("no duration in stream metadata")}
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", Op: "probe", Output: probe.Format.Duration, Err: err}
	}

	log.Debugf("Probed duration %.2fs for %s", duration, inputPath)
	return duration, nil
}

// run executes the binary and returns a stderr excerpt on failure.
func (f *FFmpeg) run(ctx context.Context, bin string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return excerpt(stderr.String()), err
	}
	return "", nil
}

func verifyNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return ErrEmptyFile
	}
	return nil
}

// excerpt trims tool output to the tail, which is where ffmpeg and yt-dlp put
// the actual error.
func excerpt(output string) string {
	output = strings.TrimSpace(output)
	const max = 512
	if len(output) > max {
		output = "..." + output[len(output)-max:]
	}
	return output
}
