// Package patch routes patch files to a format-specific transformation
// based on their extension, and keeps an in-process history of applied
// patches so they can be reverted from backups.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wiiware-modder/logger"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for patch extensions outside
	// ips/bps/patch.
	ErrUnsupportedFormat = errors.New("unsupported patch format")
	// ErrBackupMissing is returned by Revert when the recorded backup
	// file is not on disk.
	ErrBackupMissing = errors.New("backup file missing")
)

// ipsMarker is the 5-byte header every IPS patch opens with.
var ipsMarker = []byte("PATCH")

// Patch is one recognized patch file. The extension is sniffed once by
// Resolve; call sites never branch on format again.
type Patch interface {
	// Apply produces outputPath from originalPath.
	Apply(originalPath, outputPath string) error
	// Format returns the short format name used in logs.
	Format() string
}

// Resolve classifies a patch file by its extension.
func Resolve(patchPath string) (Patch, error) {
	switch strings.ToLower(filepath.Ext(patchPath)) {
	case ".ips":
		return IpsPatch{Path: patchPath}, nil
	case ".bps":
		return BpsPatch{Path: patchPath}, nil
	case ".patch":
		return PlainPatch{Path: patchPath}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(patchPath))
	}
}

// IpsPatch is an IPS-format patch. Record application is not implemented:
// apply passes the original bytes through, warning when the 5-byte PATCH
// marker is absent.
type IpsPatch struct {
	Path string
}

func (p IpsPatch) Format() string { return "ips" }

func (p IpsPatch) Apply(originalPath, outputPath string) error {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	patchBytes, err := os.ReadFile(p.Path)
	if err != nil {
		return fmt.Errorf("failed to read patch: %w", err)
	}
	// A marker-less patch is malformed but still passes the original
	// through; the application itself never fails on patch content.
	if !bytes.HasPrefix(patchBytes, ipsMarker) {
		logger.Log.Warnw("IPS patch missing PATCH header", zap.String("patch", filepath.Base(p.Path)))
	}
	// TODO: decode IPS records (offset/size/data) instead of passing the
	// original through.
	return os.WriteFile(outputPath, original, 0644)
}

// BpsPatch is a BPS-format patch. Application is a placeholder that
// writes the original bytes unchanged.
type BpsPatch struct {
	Path string
}

func (p BpsPatch) Format() string { return "bps" }

func (p BpsPatch) Apply(originalPath, outputPath string) error {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	return os.WriteFile(outputPath, original, 0644)
}

// PlainPatch covers the generic .patch extension: the original is copied
// verbatim.
type PlainPatch struct {
	Path string
}

func (p PlainPatch) Format() string { return "patch" }

func (p PlainPatch) Apply(originalPath, outputPath string) error {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	return os.WriteFile(outputPath, original, 0644)
}
