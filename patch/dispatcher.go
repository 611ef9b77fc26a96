package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"wiiware-modder/logger"

	"go.uber.org/zap"
)

const (
	logFileName      = "batch_patch_log.txt"
	errorLogFileName = "batch_patch_errors.txt"
)

// Record is one applied patch in the in-memory history. History is
// deliberately ephemeral: it does not survive a restart, and the backup
// path is only usable when a backup was actually requested.
type Record struct {
	Timestamp    time.Time
	OriginalPath string
	PatchPath    string
	BackupPath   string
}

// ProgressEvent reports one step of a batch run over the progress channel.
type ProgressEvent struct {
	Index int // 1-based position in the batch
	Total int
	File  string
	Phase string // "patching", "done" or "failed"
	Err   error  // set when Phase is "failed"
}

// BatchResult summarizes a finished batch.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// Dispatcher applies patches and records the outcomes. Log lines go to
// batch_patch_log.txt in the output directory, per-file batch failures to
// batch_patch_errors.txt.
type Dispatcher struct {
	backupDir string

	mu      sync.Mutex
	history []Record
}

// NewDispatcher creates a dispatcher writing backups into backupDir.
func NewDispatcher(backupDir string) *Dispatcher {
	return &Dispatcher{backupDir: backupDir}
}

// Apply patches a single file. Errors surface to the caller; on success
// the operation is appended to the log file next to the output and to the
// in-memory history. When createBackup is set, the original is copied
// into the backup directory first so the patch can be reverted.
func (d *Dispatcher) Apply(originalPath, patchPath, outputPath string, createBackup bool) (*Record, error) {
	if _, err := os.Stat(originalPath); err != nil {
		return nil, fmt.Errorf("original file not found: %w", err)
	}
	if _, err := os.Stat(patchPath); err != nil {
		return nil, fmt.Errorf("patch file not found: %w", err)
	}

	p, err := Resolve(patchPath)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	backupPath := filepath.Join(d.backupDir, fmt.Sprintf("backup_%s.bak", now.Format("20060102_150405")))
	if createBackup {
		data, err := os.ReadFile(originalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
	}

	if err := p.Apply(originalPath, outputPath); err != nil {
		return nil, err
	}

	record := Record{
		Timestamp:    now,
		OriginalPath: originalPath,
		PatchPath:    patchPath,
		BackupPath:   backupPath,
	}

	d.mu.Lock()
	d.history = append(d.history, record)
	d.mu.Unlock()

	d.appendLog(filepath.Dir(outputPath), logFileName,
		fmt.Sprintf("%s: Patched %s -> %s using %s", now.Format(time.DateTime), originalPath, outputPath, patchPath))

	logger.Log.Infow("Patch applied",
		zap.String("format", p.Format()),
		zap.String("original", originalPath),
		zap.String("output", outputPath),
	)
	return &record, nil
}

// ApplyBatch patches every file with one patch, writing outputs into
// outDir as <name>_patched<ext>. A failing file is logged to the error
// log and skipped; the batch always runs to completion. Progress events
// are delivered via progress when it is non-nil.
func (d *Dispatcher) ApplyBatch(files []string, patchPath, outDir string, progress func(ProgressEvent)) BatchResult {
	var result BatchResult
	total := len(files)

	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	for i, file := range files {
		emit(ProgressEvent{Index: i + 1, Total: total, File: file, Phase: "patching"})

		outputPath := batchOutputPath(outDir, file)
		if _, err := d.Apply(file, patchPath, outputPath, false); err != nil {
			result.Failed++
			d.appendLog(outDir, errorLogFileName,
				fmt.Sprintf("%s: Error patching %s using %s: %v", time.Now().Format(time.DateTime), file, patchPath, err))
			logger.Log.Warnw("Batch patch failed for file", zap.String("file", file), zap.Error(err))
			emit(ProgressEvent{Index: i + 1, Total: total, File: file, Phase: "failed", Err: err})
			continue
		}

		result.Succeeded++
		emit(ProgressEvent{Index: i + 1, Total: total, File: file, Phase: "done"})
	}

	return result
}

// batchOutputPath derives the <name>_patched<ext> output name.
func batchOutputPath(outDir, file string) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+"_patched"+ext)
}

// History returns a copy of the applied-patch records, oldest first.
func (d *Dispatcher) History() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, len(d.history))
	copy(out, d.history)
	return out
}

// Revert restores the recorded backup over the original file and drops
// the record from the history. Backups only exist when Apply was asked
// to create one, so this can fail with ErrBackupMissing.
func (d *Dispatcher) Revert(record Record) error {
	data, err := os.ReadFile(record.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupMissing, record.BackupPath)
		}
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if err := os.WriteFile(record.OriginalPath, data, 0644); err != nil {
		return fmt.Errorf("failed to restore original: %w", err)
	}

	d.mu.Lock()
	for i, rec := range d.history {
		if rec.Timestamp.Equal(record.Timestamp) && rec.OriginalPath == record.OriginalPath {
			d.history = append(d.history[:i], d.history[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	logger.Log.Infow("Patch reverted",
		zap.String("original", record.OriginalPath),
		zap.String("backup", record.BackupPath),
	)
	return nil
}

// appendLog appends one line to a log file in dir, creating it on first use.
func (d *Dispatcher) appendLog(dir, name, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Log.Warnw("Failed to open patch log", zap.String("file", name), zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		logger.Log.Warnw("Failed to write patch log", zap.String("file", name), zap.Error(err))
	}
}
