package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStagingDir(t *testing.T) {
	base := t.TempDir()

	first, err := CreateStagingDir(base)
	require.NoError(t, err)
	second, err := CreateStagingDir(base)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	for _, dir := range []string{first, second} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.True(t, strings.HasPrefix(filepath.Base(dir), stagingPrefix))
	}
}

func TestPromote(t *testing.T) {
	base := t.TempDir()
	permanent := t.TempDir()

	staging, err := CreateStagingDir(base)
	require.NoError(t, err)
	staged := filepath.Join(staging, "clip.mp4")
	require.NoError(t, os.WriteFile(staged, []byte("payload"), 0644))

	promoted, err := Promote(staged, permanent)
	require.NoError(t, err)

	assert.Equal(t, permanent, filepath.Dir(promoted))
	assert.Equal(t, ".mp4", filepath.Ext(promoted))
	data, err := os.ReadFile(promoted)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staged file must be gone after promotion")
}

func TestPromoteMissingFile(t *testing.T) {
	_, err := Promote(filepath.Join(t.TempDir(), "absent.mp4"), t.TempDir())
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	base := t.TempDir()
	staging, err := CreateStagingDir(base)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, "partial.mkv"), []byte("x"), 0644))

	Cleanup(staging)

	_, err = os.Stat(staging)
	assert.True(t, os.IsNotExist(err))

	// Removing an already removed directory must stay silent.
	Cleanup(staging)
}

func TestReapStaleStaging(t *testing.T) {
	base := t.TempDir()

	stale1, err := CreateStagingDir(base)
	require.NoError(t, err)
	stale2, err := CreateStagingDir(base)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(stale1, "leftover.mp4"), []byte("x"), 0644))

	// Permanent assets and unrelated directories must survive the reaper.
	keepFile := filepath.Join(base, "123-abcd.mp4")
	require.NoError(t, os.WriteFile(keepFile, []byte("video"), 0644))
	keepDir := filepath.Join(base, "archive")
	require.NoError(t, os.Mkdir(keepDir, 0755))

	reaped := ReapStaleStaging(base)
	assert.Equal(t, 2, reaped)

	for _, gone := range []string{stale1, stale2} {
		_, err := os.Stat(gone)
		assert.True(t, os.IsNotExist(err))
	}
	_, err = os.Stat(keepFile)
	assert.NoError(t, err)
	_, err = os.Stat(keepDir)
	assert.NoError(t, err)

	assert.Equal(t, 0, ReapStaleStaging(base))
}

func TestReapStaleStagingMissingBase(t *testing.T) {
	assert.Equal(t, 0, ReapStaleStaging(filepath.Join(t.TempDir(), "nope")))
}

func TestUniqueAssetName(t *testing.T) {
	a := UniqueAssetName(".webm")
	b := UniqueAssetName(".webm")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".webm"))
}
