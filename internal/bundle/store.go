package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
)

var ErrNotFound = errors.New("bundle not found")

// Record is a bundle saved under a stable id.
type Record struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"savedAt"`
	Bundle  Bundle    `json:"bundle"`
}

// Summary is the listing view of a record, without the shape payload.
type Summary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"savedAt"`
	Shapes  int       `json:"shapes"`
}

// Store keeps one JSON record file per bundle under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create bundle dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (st *Store) Save(name string, b Bundle) (*Record, error) {
	rec := &Record{
		ID:      typeid.NewBundleID(),
		Name:    name,
		SavedAt: time.Now().UTC(),
		Bundle:  b,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(st.path(rec.ID), data, 0644); err != nil {
		return nil, fmt.Errorf("write record: %w", err)
	}
	return rec, nil
}

func (st *Store) Load(id string) (*Record, error) {
	// Record ids double as file names, so anything that is not a
	// well-formed id is treated as absent rather than opened.
	if err := typeid.Validate(id, typeid.PrefixBundle); err != nil {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(st.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &rec, nil
}

// List returns summaries of all saved bundles, newest first. Files
// that fail to parse are skipped.
func (st *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("read bundle dir: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := st.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:      rec.ID,
			Name:    rec.Name,
			SavedAt: rec.SavedAt,
			Shapes:  len(rec.Bundle.Shapes),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].SavedAt.After(summaries[j].SavedAt)
	})
	return summaries, nil
}

func (st *Store) Delete(id string) error {
	if err := typeid.Validate(id, typeid.PrefixBundle); err != nil {
		return ErrNotFound
	}
	if err := os.Remove(st.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}
