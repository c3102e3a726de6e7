package report

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// FileStore is the file capability consumed by the reporting stage.
type FileStore interface {
	Save(path string, data []byte) error
	Read(path string) ([]byte, error)
}

// OSFileStore writes artifacts to the local filesystem, creating
// destination directories as needed.
type OSFileStore struct{}

func (OSFileStore) Save(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "report: create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

func (OSFileStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read %s", path)
	}
	return data, nil
}
