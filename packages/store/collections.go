package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
)

type CollectionStore struct {
	file *jsonFile[collection.Collection]
	now  func() time.Time
}

func NewCollectionStore(dir string) *CollectionStore {
	return &CollectionStore{
		file: &jsonFile[collection.Collection]{path: filepath.Join(dir, CollectionsFile)},
		now:  time.Now,
	}
}

func (s *CollectionStore) LoadAll() ([]collection.Collection, error) {
	return s.file.read()
}

// Get returns the collection whose ID or name is ref.
func (s *CollectionStore) Get(ref string) (*collection.Collection, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == ref || all[i].Name == ref {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", ref, ErrNotFound)
}

// Save inserts c, or replaces the collection with the same ID and refreshes
// its UpdatedAt.
func (s *CollectionStore) Save(c collection.Collection) error {
	return s.file.update(func(all []collection.Collection) ([]collection.Collection, error) {
		for i := range all {
			if all[i].ID == c.ID {
				c.UpdatedAt = s.now().UnixMilli()
				all[i] = c
				return all, nil
			}
		}
		return append(all, c), nil
	})
}

func (s *CollectionStore) Delete(id string) error {
	return s.file.update(func(all []collection.Collection) ([]collection.Collection, error) {
		kept := all[:0]
		for _, c := range all {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(all) {
			return nil, fmt.Errorf("collection %q: %w", id, ErrNotFound)
		}
		return kept, nil
	})
}
