package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cellrun/cellrun/internal/clock"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Writer persists the completed index as a single artifact: one serialized
// mapping from entry key to {conditionId, cell, value columns}.
type Writer struct {
	fs        afs.Service
	directory string
	name      string
}

// NewWriter creates a writer targeting the given results directory. The
// artifact name falls back to the current date when no experiment name is
// configured.
func NewWriter(directory, name string) *Writer {
	return &Writer{fs: afs.New(), directory: directory, name: name}
}

// Write serializes the index and returns the artifact location.
func (w *Writer) Write(ctx context.Context, index *Index) (string, error) {
	exists, _ := w.fs.Exists(ctx, w.directory)
	if !exists {
		if err := w.fs.Create(ctx, w.directory, file.DefaultDirOsMode, true); err != nil {
			return "", fmt.Errorf("failed to create results directory %s: %w", w.directory, err)
		}
	}

	artifact := make(map[string]*Entry, index.Len())
	for _, entry := range index.Entries() {
		artifact[entry.Key] = entry
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results artifact: %w", err)
	}

	name := w.name
	if name == "" {
		name = clock.Now().Format("2006-01-02")
	}
	location := url.Join(url.Normalize(w.directory, file.Scheme), name+".json")
	if err := w.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write results artifact %s: %w", location, err)
	}
	return location, nil
}
