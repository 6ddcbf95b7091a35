package settings

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Store is a flat, YAML-file-backed settings document. Reads are served
// from memory; every successful write rewrites the file, so the file and
// the in-memory document never diverge.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Open loads the settings document at path. A missing file is not an
// error: it yields an empty store and the file is created by the first
// write. An existing file that cannot be read or parsed fails ErrLoad.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]any),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, errors.Join(ErrLoad, err)
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	if s.values == nil {
		// Empty or comment-only file unmarshals to a nil map.
		s.values = make(map[string]any)
	}

	return s, nil
}

// Path returns the file this store persists to.
func (s *Store) Path() string {
	return s.path
}

// Get returns the setting stored under key converted to T, or fallback
// when the key is absent or the stored value cannot represent a T.
// Conversion is best-effort: a direct type match is used as-is, anything
// else is re-read through the YAML codec, so numeric widening, numeric
// strings, and rendered scalars all resolve. Duration values stored as
// strings ("90s", "5m") convert when T is time.Duration. Get never fails;
// misconfiguration degrades to the caller's fallback.
func Get[T any](s *Store, key string, fallback T) T {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return fallback
	}
	if value, ok := raw.(T); ok {
		return value
	}

	value, err := convert[T](raw)
	if err != nil {
		return fallback
	}
	return value
}

// Has reports whether key is present in the document.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns the document's keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key and persists the document. The key must be
// non-empty. On a failed save neither memory nor, as far as the
// filesystem allows, the file is changed.
func (s *Store) Set(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.update(map[string]any{key: value})
}

// SetAll merges values into the document and persists it in a single
// write. Any empty key rejects the whole batch before it is applied.
func (s *Store) SetAll(values map[string]any) error {
	for key := range values {
		if key == "" {
			return ErrEmptyKey
		}
	}
	return s.update(values)
}

// Remove deletes key from the document and persists it. Removing an
// absent key is a no-op and touches neither memory nor the file.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}

	next := maps.Clone(s.values)
	delete(next, key)

	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// update merges changes into a copy of the document and persists the
// copy. The copy is swapped in only after the write succeeded, so a
// failed save leaves the store at its previous state.
func (s *Store) update(changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]any, len(s.values)+len(changes))
	maps.Copy(next, s.values)
	maps.Copy(next, changes)

	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// persist writes the document to a temp file in the target directory and
// renames it over the settings file, so readers of the path never see a
// partially written document.
func (s *Store) persist(values map[string]any) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Join(ErrSave, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Join(ErrSave, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Join(ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Join(ErrSave, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Join(ErrSave, err)
	}
	return nil
}

// convert coerces a decoded YAML value into T by rendering it back to
// YAML and re-reading it as the target type. String sources are re-read
// as literal YAML text instead, so "8080" resolves for numeric targets;
// re-marshaling would quote it and pin it as a string. Duration targets
// get a time.ParseDuration pass, since YAML has no duration scalar.
func convert[T any](raw any) (T, error) {
	var out T

	if str, ok := raw.(string); ok {
		if _, ok := any(out).(time.Duration); ok {
			d, err := time.ParseDuration(str)
			if err != nil {
				return out, err
			}
			return any(d).(T), nil
		}
		if err := yaml.Unmarshal([]byte(str), &out); err != nil {
			return out, err
		}
		return out, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
