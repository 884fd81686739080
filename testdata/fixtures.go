// Package testdata embeds recorded landmark streams for tests and demos.
package testdata

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/mudra/internal/replay"
)

//go:embed streams/*.jsonl
var streamsFS embed.FS

// Streams lists the embedded stream names without the .jsonl suffix.
func Streams() ([]string, error) {
	entries, err := streamsFS.ReadDir("streams")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}

// OpenStream returns a reader over the named stream.
func OpenStream(name string) (*replay.Reader, error) {
	data, err := streamsFS.ReadFile(path.Join("streams", name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", name, err)
	}
	return replay.NewReader(bytes.NewReader(data)), nil
}

// LoadStream decodes every frame of the named stream.
func LoadStream(name string) ([]replay.Frame, error) {
	r, err := OpenStream(name)
	if err != nil {
		return nil, err
	}
	frames, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode stream %s: %w", name, err)
	}
	return frames, nil
}
