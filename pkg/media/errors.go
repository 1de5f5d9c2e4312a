package media

import (
	"errors"
	"fmt"
)

// ErrEmptyFile marks a staged upload that is missing or zero bytes. Handlers
// translate it into a 400 instead of a pipeline failure.
var ErrEmptyFile = errors.New("video file does not exist or is empty")

// ErrNoVideoFile is returned when a download finished but no file with a known
// video extension showed up in the staging directory.
var ErrNoVideoFile = errors.New("no video file found")

// ToolError is returned when an external tool (ffmpeg, ffprobe, yt-dlp) exits
// non-zero or produces unusable output. Output carries a stderr excerpt for
// diagnostics; the tools are never retried automatically.
type ToolError struct {
	Tool   string // binary name
	Op     string // "transcode", "thumbnail", "probe", "fetch", "metadata"
	Output string // stderr excerpt
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s %s failed: %v: %s", e.Tool, e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Tool, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
