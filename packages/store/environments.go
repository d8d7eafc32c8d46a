package store

import (
	"fmt"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
)

type EnvironmentStore struct {
	file *jsonFile[collection.Environment]
}

func NewEnvironmentStore(dir string) *EnvironmentStore {
	return &EnvironmentStore{
		file: &jsonFile[collection.Environment]{path: filepath.Join(dir, EnvironmentsFile)},
	}
}

func (s *EnvironmentStore) LoadAll() ([]collection.Environment, error) {
	return s.file.read()
}

// Get returns the environment whose ID or name is ref.
func (s *EnvironmentStore) Get(ref string) (*collection.Environment, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == ref || all[i].Name == ref {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("environment %q: %w", ref, ErrNotFound)
}

// Active returns the active environment, or ErrNotFound when none is active.
func (s *EnvironmentStore) Active() (*collection.Environment, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].IsActive {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("active environment: %w", ErrNotFound)
}

// Save inserts env or replaces the environment with the same ID.
func (s *EnvironmentStore) Save(env collection.Environment) error {
	return s.file.update(func(all []collection.Environment) ([]collection.Environment, error) {
		for i := range all {
			if all[i].ID == env.ID {
				all[i] = env
				return all, nil
			}
		}
		return append(all, env), nil
	})
}

func (s *EnvironmentStore) Delete(id string) error {
	return s.file.update(func(all []collection.Environment) ([]collection.Environment, error) {
		kept := all[:0]
		for _, e := range all {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(all) {
			return nil, fmt.Errorf("environment %q: %w", id, ErrNotFound)
		}
		return kept, nil
	})
}

// SetActive marks the environment with the given ID active and every other
// environment inactive.
func (s *EnvironmentStore) SetActive(id string) error {
	return s.file.update(func(all []collection.Environment) ([]collection.Environment, error) {
		found := false
		for i := range all {
			all[i].IsActive = all[i].ID == id
			found = found || all[i].IsActive
		}
		if !found {
			return nil, fmt.Errorf("environment %q: %w", id, ErrNotFound)
		}
		return all, nil
	})
}
