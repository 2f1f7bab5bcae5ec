package timesheet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the day-record cache as a single JSON object keyed by day
// key. Writes replace the whole file; there are no partial updates.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the cache. A missing or corrupt file yields an empty cache with
// no error: an empty cache is a valid initial state. Every loaded record is
// tagged OriginCache and has its key and date rehydrated.
func (s *Store) Load() Cache {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(Cache)
	}
	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return make(Cache)
	}
	for key, rec := range cache {
		rec.Key = key
		rec.Origin = OriginCache
		cache[key] = rec
	}
	return cache
}

// Save writes the whole cache, replacing previous content. Output keys are
// sorted (encoding/json sorts map keys), so the file is diff friendly. The
// write goes through a temp file and rename.
func (s *Store) Save(cache Cache) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
