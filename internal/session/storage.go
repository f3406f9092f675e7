package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// selectionFile is the fixed key the saved selection lives under.
const selectionFile = "selected_products.json"

// FileStore persists the selection id list as a JSON document in the
// data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir. The directory is
// created lazily on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the full path of the persisted selection document.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, selectionFile)
}

// SaveSelection writes the ordered id list, replacing any previous state.
func (f *FileStore) SaveSelection(ids []string) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	if err := os.WriteFile(f.Path(), data, 0644); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// LoadSelection reads the persisted id list. A missing file is not an
// error and yields an empty list.
func (f *FileStore) LoadSelection() ([]string, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read selection: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse selection: %w", err)
	}
	return ids, nil
}
