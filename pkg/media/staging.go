package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// stagingPrefix marks in-flight ingestion directories inside the upload dir so
// the startup reaper can tell them apart from permanent assets.
const stagingPrefix = "temp-"

// CreateStagingDir creates a uniquely named directory under baseDir for one
// in-flight ingestion. Everything the ingestion writes goes in here until the
// final file is promoted, so a crash or validation failure never leaves a
// half-written file in the permanent asset tree.
func CreateStagingDir(baseDir string) (string, error) {
	name := fmt.Sprintf("%s%d-%s", stagingPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// UniqueAssetName generates a collision-resistant filename for the permanent
// asset tree, keeping the original extension.
func UniqueAssetName(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// Promote moves a staged file into permanentDir under a freshly generated
// unique name. Rename, not copy: on the same volume this makes promotion
// effectively atomic.
func Promote(tempFile, permanentDir string) (string, error) {
	permanentPath := filepath.Join(permanentDir, UniqueAssetName(filepath.Ext(tempFile)))
	if err := os.Rename(tempFile, permanentPath); err != nil {
		return "", fmt.Errorf("failed to promote %s: %w", tempFile, err)
	}
	return permanentPath, nil
}

// Cleanup removes a staging directory recursively. Best effort only: cleanup is
// always secondary to the primary operation's result, so failures are logged
// and never returned.
func Cleanup(stagingDir string) {
	if err := os.RemoveAll(stagingDir); err != nil {
		log.Warnf("Failed to remove staging directory %s: %v", stagingDir, err)
	}
}

// RemoveFile deletes a single promoted or generated file, best effort.
func RemoveFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to remove file %s: %v", path, err)
	}
}

// ReapStaleStaging removes staging directories left behind by a previous
// crash. Called once at startup, before any new ingestion can be in flight.
func ReapStaleStaging(baseDir string) int {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to scan %s for stale staging directories: %v", baseDir, err)
		}
		return 0
	}

	reaped := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), stagingPrefix) {
			continue
		}
		stale := filepath.Join(baseDir, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			log.Warnf("Failed to reap stale staging directory %s: %v", stale, err)
			continue
		}
		reaped++
	}
	if reaped > 0 {
		log.Infof("Reaped %d stale staging directories from %s", reaped, baseDir)
	}
	return reaped
}
