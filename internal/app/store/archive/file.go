package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileCache stores the archive as a single JSON object keyed by group id
// hex. Every call reads the file; writes go through a temp file and rename.
type FileCache struct {
	mu   sync.Mutex
	path string
}

// NewFileCache returns a cache backed by path. The file is created on the
// first Put.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (f *FileCache) load() (map[string]models.ArchivedGroup, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]models.ArchivedGroup{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]models.ArchivedGroup{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, f.path, err)
	}
	return m, nil
}

func (f *FileCache) save(m map[string]models.ArchivedGroup) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileCache) Get(_ context.Context, id primitive.ObjectID) (models.ArchivedGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return models.ArchivedGroup{}, err
	}
	a, ok := m[id.Hex()]
	if !ok {
		return models.ArchivedGroup{}, ErrNotFound
	}
	if err := check(a); err != nil {
		return models.ArchivedGroup{}, err
	}
	return a, nil
}

func (f *FileCache) Put(_ context.Context, a models.ArchivedGroup) error {
	if err := check(a); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	m[a.ID.Hex()] = a
	return f.save(m)
}

// List returns the records, most recently deleted first; records never
// deleted (fee changes only) come last.
func (f *FileCache) List(_ context.Context) ([]models.ArchivedGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.ArchivedGroup, 0, len(m))
	for _, a := range m {
		if err := check(a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sortByDeleted(out)
	return out, nil
}

func sortByDeleted(out []models.ArchivedGroup) {
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DeletedAt, out[j].DeletedAt
		switch {
		case di == nil && dj == nil:
			return out[i].ID.Hex() < out[j].ID.Hex()
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		if di.Equal(*dj) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return di.After(*dj)
	})
}
