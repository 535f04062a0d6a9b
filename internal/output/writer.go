// Package output writes generated headers to disk.
//
// Every file is first written to a uniquely named temp file in the target
// directory and then renamed into place, so readers never observe a
// half-written header. WriteFiles stages all files before renaming any of
// them, which keeps the public and private headers of one source together
// when either write fails.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is one generated header and its destination.
type File struct {
	Path string
	Data []byte
}

// HeaderPaths returns the public and private header paths for a source,
// replacing its extension with the given suffixes.
func HeaderPaths(sourcePath, publicSuffix, privateSuffix string) (string, string) {
	stem := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	return stem + publicSuffix, stem + privateSuffix
}

// WriteFile writes data to path atomically.
func WriteFile(path string, data []byte) error {
	return WriteFiles(File{Path: path, Data: data})
}

// WriteFiles stages every file in a temp file beside its destination and
// renames them into place once all were staged.
func WriteFiles(files ...File) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, f := range files {
		tmpPath, err := stage(f)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmpPath)
	}

	for i, f := range files {
		// Rename to final location (atomic operation)
		if err := os.Rename(staged[i], f.Path); err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}

	return nil
}

func stage(f File) (string, error) {
	tmpPath := fmt.Sprintf("%s.%s.tmp", f.Path, uuid.New().String())

	if err := os.WriteFile(tmpPath, f.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return tmpPath, nil
}
