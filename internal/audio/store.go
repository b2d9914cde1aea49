package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store persists validated captures as WAV container files under a fixed
// directory. Files are named with a timestamp and a per-request identifier
// so concurrent requests never overwrite each other's audio before the
// transcription engine reads it. Files are kept as an audit trail and are
// never read back by the pipeline itself.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a capture store rooted at dir. The directory is created
// on first save, not here.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Save frames the capture in a WAV container and writes it to a uniquely
// named file, returning the file path.
func (s *Store) Save(c Capture, requestID string) (string, error) {
	header, err := EncodeHeader(c.SampleRate, c.Channels, c.SampleCount())
	if err != nil {
		return "", fmt.Errorf("failed to encode container header: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", s.dir, err)
	}

	name := fmt.Sprintf("rec_%s_%s.wav", time.Now().Format("20060102_150405"), requestID)
	path := filepath.Join(s.dir, name)

	data := make([]byte, 0, len(header)+len(c.PCM))
	data = append(data, header...)
	data = append(data, c.PCM...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write container file %s: %w", path, err)
	}

	s.logger.Debug("Capture persisted",
		slog.String("path", path),
		slog.Int("samples", c.SampleCount()),
		slog.Int("size_bytes", len(data)),
	)

	return path, nil
}
