package patch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestResolve(t *testing.T) {
	tests := []struct {
		file   string
		format string
	}{
		{"mod.ips", "ips"},
		{"mod.IPS", "ips"},
		{"mod.bps", "bps"},
		{"mod.patch", "patch"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p, err := Resolve(tt.file)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.file, err)
			}
			if p.Format() != tt.format {
				t.Errorf("Resolve(%q).Format() = %q, want %q", tt.file, p.Format(), tt.format)
			}
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Resolve("mod.xyz")
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestApplyWritesOriginalBytes(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "game.wad", []byte("original content"))
	d := NewDispatcher(dir)

	tests := []struct {
		name      string
		patchName string
		patchData []byte
	}{
		{"ips placeholder", "fix.ips", append([]byte("PATCH"), 0x01, 0x02)},
		{"bps placeholder", "fix.bps", []byte("BPS1whatever")},
		{"plain copy", "fix.patch", []byte("anything")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patchPath := writeFile(t, dir, tt.patchName, tt.patchData)
			outputPath := filepath.Join(dir, tt.patchName+".out")

			if _, err := d.Apply(original, patchPath, outputPath, false); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			got, err := os.ReadFile(outputPath)
			if err != nil {
				t.Fatalf("failed to read output: %v", err)
			}
			// Patch application is a placeholder: output equals input.
			if string(got) != "original content" {
				t.Errorf("expected output to equal the original, got %q", got)
			}
		})
	}
}

func TestApplyIpsWithoutMarkerWritesOriginal(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "game.wad", []byte("data"))
	patchPath := writeFile(t, dir, "bad.ips", []byte("NOTIPS"))
	d := NewDispatcher(dir)

	outPath := filepath.Join(dir, "out.wad")
	if _, err := d.Apply(original, patchPath, outPath, false); err != nil {
		t.Fatalf("marker-less ips patch should still apply, got %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("expected output to equal the original, got %q", got)
	}
}

func TestApplyUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "game.wad", []byte("data"))
	patchPath := writeFile(t, dir, "fix.xyz", []byte("data"))
	d := NewDispatcher(dir)

	_, err := d.Apply(original, patchPath, filepath.Join(dir, "out.wad"), false)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestApplyLogLine(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	original := writeFile(t, dir, "game.wad", []byte("data"))
	patchPath := writeFile(t, dir, "fix.bps", []byte("data"))
	d := NewDispatcher(dir)

	outputPath := filepath.Join(outDir, "game_patched.wad")
	if _, err := d.Apply(original, patchPath, outputPath, false); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	logData, err := os.ReadFile(filepath.Join(outDir, "batch_patch_log.txt"))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	line := strings.TrimSpace(string(logData))
	want := ": Patched " + original + " -> " + outputPath + " using " + patchPath
	if !strings.HasSuffix(line, want) {
		t.Errorf("log line %q does not end with %q", line, want)
	}
}

func TestApplyBatchContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "batch_output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	good1 := writeFile(t, dir, "one.wad", []byte("one"))
	missing := filepath.Join(dir, "gone.wad") // never written
	good2 := writeFile(t, dir, "two.wad", []byte("two"))
	patchPath := writeFile(t, dir, "fix.ips", []byte("PATCH\x00"))

	d := NewDispatcher(dir)
	var events []ProgressEvent
	result := d.ApplyBatch([]string{good1, missing, good2}, patchPath, outDir, func(ev ProgressEvent) {
		events = append(events, ev)
	})

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded / 1 failed, got %+v", result)
	}

	for _, name := range []string{"one_patched.wad", "two_patched.wad"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}

	errData, err := os.ReadFile(filepath.Join(outDir, "batch_patch_errors.txt"))
	if err != nil {
		t.Fatalf("expected error log: %v", err)
	}
	if !strings.Contains(string(errData), "gone.wad") {
		t.Errorf("error log should mention the failing file, got %q", errData)
	}

	// Two events per file: patching then done/failed
	if len(events) != 6 {
		t.Fatalf("expected 6 progress events, got %d", len(events))
	}
	if events[3].Phase != "failed" || events[3].Err == nil {
		t.Errorf("expected failed event for missing file, got %+v", events[3])
	}
}

func TestApplyBatchUnsupportedPatchIsLoggedNotFatal(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "batch_output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	file1 := writeFile(t, dir, "one.wad", []byte("one"))
	file2 := writeFile(t, dir, "two.wad", []byte("two"))
	patchPath := writeFile(t, dir, "fix.xyz", []byte("junk"))

	d := NewDispatcher(dir)
	result := d.ApplyBatch([]string{file1, file2}, patchPath, outDir, nil)

	if result.Succeeded != 0 || result.Failed != 2 {
		t.Fatalf("expected every file skipped, got %+v", result)
	}

	errData, err := os.ReadFile(filepath.Join(outDir, "batch_patch_errors.txt"))
	if err != nil {
		t.Fatalf("expected error log: %v", err)
	}
	if !strings.Contains(string(errData), "unsupported patch format") {
		t.Errorf("error log should name the format failure, got %q", errData)
	}
}

func TestRevert(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		t.Fatal(err)
	}
	original := writeFile(t, dir, "game.wad", []byte("pristine"))
	patchPath := writeFile(t, dir, "fix.bps", []byte("data"))

	d := NewDispatcher(backupDir)
	record, err := d.Apply(original, patchPath, original, true)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(d.History()) != 1 {
		t.Fatalf("expected one history record, got %d", len(d.History()))
	}

	// Scribble over the original to prove the revert restores it
	if err := os.WriteFile(original, []byte("ruined"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := d.Revert(*record); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}

	got, err := os.ReadFile(original)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pristine" {
		t.Errorf("expected original restored to %q, got %q", "pristine", got)
	}
	if len(d.History()) != 0 {
		t.Errorf("expected history record removed after revert")
	}
}

func TestRevertWithoutBackup(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "game.wad", []byte("data"))
	patchPath := writeFile(t, dir, "fix.bps", []byte("data"))

	d := NewDispatcher(dir)
	// No backup requested, so the recorded backup path was never written
	record, err := d.Apply(original, patchPath, filepath.Join(dir, "out.wad"), false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := d.Revert(*record); !errors.Is(err, ErrBackupMissing) {
		t.Fatalf("expected ErrBackupMissing, got %v", err)
	}
}

func TestBatchOutputPath(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"/data/game.wad", "game_patched.wad"},
		{"/data/archive.tar.gz", "archive.tar_patched.gz"},
		{"/data/noext", "noext_patched"},
	}

	for _, tt := range tests {
		got := batchOutputPath("/out", tt.file)
		if filepath.Base(got) != tt.expected {
			t.Errorf("batchOutputPath(%q) = %q, want %q", tt.file, filepath.Base(got), tt.expected)
		}
	}
}
