// Package probe classifies WiiWare-related files by sniffing the first
// bytes of their header against a fixed table of known signatures.
package probe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// headerSize is how much of the file the probe reads.
const headerSize = 16

// signature maps a literal ASCII prefix to its classification string.
type signature struct {
	prefix      []byte
	description string
}

// signatures lists the known header prefixes in probe order.
var signatures = []signature{
	{[]byte("BRRES"), "BRRES file detected - Resource archive\nContains textures, models, and other game resources"},
	{[]byte("BRLYT"), "BRLYT file detected - Layout file\nContains UI layout information"},
	{[]byte("BRLAN"), "BRLAN file detected - Animation file\nContains animation data"},
	{[]byte("BRSEQ"), "BRSEQ file detected - Sequence file\nContains audio sequence data"},
	{[]byte("BRSTM"), "BRSTM file detected - Stream file\nContains audio stream data"},
	{[]byte("BRWAV"), "BRWAV file detected - Wave file\nContains audio wave data"},
	{[]byte("BRCTMD"), "BRCTMD file detected - CTMD file\nContains 3D model data"},
	{[]byte("WAD"), "WAD file detected - WiiWare archive\nMay contain multiple file types"},
	{[]byte("WBFS"), "WBFS file detected - Wii backup file\nContains game data"},
}

// knownExtensions is the fallback set when no header signature matches.
var knownExtensions = map[string]bool{
	".brres": true, ".brlyt": true, ".brlan": true, ".brseq": true,
	".brstm": true, ".brwav": true, ".brctmd": true,
}

// Identify reads the first 16 bytes of a file and returns a one-line
// human-readable classification. Falls back to extension-based guessing,
// then to an unknown-format message.
func Identify(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := f.Read(header)
	if err != nil || n < headerSize {
		return "", fmt.Errorf("file is too small to analyze")
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.prefix) {
			return sig.description, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if knownExtensions[ext] {
		return fmt.Sprintf("File appears to be a %s format file", strings.ToUpper(ext[1:])), nil
	}

	return "Unknown file format - may not be compatible with known tools", nil
}
