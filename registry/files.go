package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// StoreModFile copies an upload into the shared mods directory under a
// name prefixed with the uploader's id, so two users sharing "mod.zip"
// don't collide. Returns the stored path for UploadMod.
func StoreModFile(sharedModsDir string, authorID uint, srcPath string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read mod file: %w", err)
	}

	destPath := filepath.Join(sharedModsDir, fmt.Sprintf("%d_%s", authorID, filepath.Base(srcPath)))
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to store mod file: %w", err)
	}
	return destPath, nil
}

// CopyToDownloads copies a stored mod into the downloads directory,
// keeping the original filename. Last writer wins on a name collision.
func CopyToDownloads(downloadsDir, srcPath string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read stored mod: %w", err)
	}

	destPath := filepath.Join(downloadsDir, filepath.Base(srcPath))
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	return destPath, nil
}
