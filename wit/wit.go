// Package wit drives the external wit command-line tool used to inspect
// and extract WiiWare archives.
package wit

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wiiware-modder/logger"

	"go.uber.org/zap"
)

const (
	infoTimeout    = 30 * time.Second
	extractTimeout = 5 * time.Minute
)

// ErrToolNotFound is returned when no wit executable could be located,
// so callers can degrade instead of failing hard.
var ErrToolNotFound = errors.New("wit tool not found")

// Tool is a handle to a located wit executable.
type Tool struct {
	Path string
}

// Find locates the wit executable. An explicit path wins; otherwise the
// system PATH and a couple of conventional install locations are probed.
func Find(explicitPath string) (*Tool, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("%w: configured path %s is not usable", ErrToolNotFound, explicitPath)
		}
		return &Tool{Path: explicitPath}, nil
	}

	if path, err := exec.LookPath("wit"); err == nil {
		return &Tool{Path: path}, nil
	}

	home, _ := os.UserHomeDir()
	candidates := []string{
		"/usr/local/bin/wit",
		"/opt/wit/wit",
		filepath.Join(home, "wit", "wit"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return &Tool{Path: candidate}, nil
		}
	}

	return nil, ErrToolNotFound
}

// Info runs `wit info <file>` and returns its stdout.
func (t *Tool) Info(ctx context.Context, file string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Path, "info", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("timeout getting file information for %s", file)
		}
		return "", fmt.Errorf("wit info failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// Extract runs `wit extract <file> <outputDir>`, streaming the tool's
// stdout and reporting percentages to progressFn as they appear.
func (t *Tool) Extract(ctx context.Context, file, outputDir string, progressFn func(percent float64)) error {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Path, "extract", file, outputDir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to wit output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start wit: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if percent, ok := parseProgressLine(line); ok && progressFn != nil {
			progressFn(percent)
		}
	}
	if err := scanner.Err(); err != nil {
		// Wait must still run to reap the process, but the read error is
		// the one worth reporting.
		_ = cmd.Wait()
		return fmt.Errorf("failed to read wit output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timeout extracting %s", file)
		}
		return fmt.Errorf("extraction failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	logger.Log.Infow("Extraction complete", zap.String("file", file), zap.String("output", outputDir))
	return nil
}

// parseProgressLine pulls a trailing percentage out of a wit progress
// line, e.g. "extracting... progress 42%".
func parseProgressLine(line string) (float64, bool) {
	if !strings.Contains(strings.ToLower(line), "progress") {
		return 0, false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], "%")
	percent, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}
