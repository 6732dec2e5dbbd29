package storage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"selenium_page/domain/interfaces"
)

const dataURLPrefix = "data:image/png;base64,"

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type screenshotStore struct {
	fs  afero.Fs
	dir string
}

// NewScreenshotStore - creates a store writing <dir>/<name>.png on fs.
// A relative dir is resolved against the working directory.
func NewScreenshotStore(fs afero.Fs, dir string) interfaces.ScreenshotStore {
	if dir == "" {
		dir = "screenshot"
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &screenshotStore{fs: fs, dir: dir}
}

// Save - writes the screenshot and returns its path
func (s *screenshotStore) Save(name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("screenshot name is empty")
	}
	png, err := decode(data)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name)+".png")
	if err := afero.WriteFile(s.fs, path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// decode - returns PNG bytes as is and base64 payloads decoded
func decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, pngMagic) {
		return data, nil
	}
	payload := bytes.TrimPrefix(bytes.TrimSpace(data), []byte(dataURLPrefix))
	png := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(png, payload)
	if err != nil {
		return nil, fmt.Errorf("screenshot is neither PNG nor base64: %w", err)
	}
	return png[:n], nil
}
