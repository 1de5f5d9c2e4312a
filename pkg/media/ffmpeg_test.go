package media

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscodedName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"/data/uploads/1700000000-ab12cd34.mkv", "1700000000-ab12cd34_transcoded.mp4"},
		{"clip.mp4", "clip_transcoded.mp4"},
		{"noext", "noext_transcoded.mp4"},
		{"/tmp/archive.tar.webm", "archive.tar_transcoded.mp4"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TranscodedName(tc.input))
	}
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "clip.jpg", ThumbnailName("/data/uploads/clip.webm"))
	assert.Equal(t, "noext.jpg", ThumbnailName("noext"))
}

func TestToolError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &ToolError{Tool: "ffmpeg", Op: "transcode", Output: "invalid data found", Err: cause}

	assert.ErrorIs(t, err, cause)
	msg := err.Error()
	assert.Contains(t, msg, "ffmpeg")
	assert.Contains(t, msg, "transcode")
	assert.Contains(t, msg, "invalid data found")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("  short\n"))

	long := strings.Repeat("a", 600) + "tail"
	got := excerpt(long)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "tail"))
	assert.LessOrEqual(t, len(got), 515)
}
