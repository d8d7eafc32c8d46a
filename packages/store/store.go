// Package store persists collections and environments as JSON arrays in the
// data directory, one file per kind.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	CollectionsFile  = "collections.json"
	EnvironmentsFile = "environments.json"
)

// ErrNotFound is returned when no item matches the given id or name.
var ErrNotFound = errors.New("not found")

// jsonFile is a JSON array of T stored at path.
type jsonFile[T any] struct {
	mu   sync.Mutex
	path string
}

// load returns the stored items. A missing file is an empty list.
func (f *jsonFile[T]) load() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt store %s: %w", f.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// save replaces the file contents through a temporary file in the same directory.
func (f *jsonFile[T]) save(items []T) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// update loads the items, applies fn and saves the result, holding the lock throughout.
func (f *jsonFile[T]) update(fn func([]T) ([]T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return f.save(items)
}

func (f *jsonFile[T]) read() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}
