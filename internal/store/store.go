// Package store keeps flat JSON snapshots on disk: the OAuth token and the
// last seen video statistics.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/youruser/likethumb/internal/util"
)

var ErrNotFound = errors.New("snapshot not found")

// File is a single JSON document of type T.
type File[T any] struct {
	path string
	perm os.FileMode
	mu   sync.Mutex
}

func NewFile[T any](path string, perm os.FileMode) *File[T] {
	return &File[T]{path: path, perm: perm}
}

func (f *File[T]) Path() string { return f.path }

func (f *File[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var v T
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return v, fmt.Errorf("%s: %w", f.path, ErrNotFound)
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", f.path, err)
	}
	return v, nil
}

func (f *File[T]) Save(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := util.WriteJSON(f.path, v, f.perm); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	return nil
}

// Stats is the snapshot compared on every update cycle.
type Stats struct {
	ViewCount uint64 `json:"viewCount"`
	LikeCount uint64 `json:"likeCount"`
}

// StatsFile stores Stats; a missing file reads as the zero snapshot.
type StatsFile struct {
	file *File[Stats]
}

func NewStatsFile(path string) *StatsFile {
	return &StatsFile{file: NewFile[Stats](path, 0o644)}
}

func (s *StatsFile) Load() (Stats, error) {
	st, err := s.file.Load()
	if errors.Is(err, ErrNotFound) {
		return Stats{}, nil
	}
	return st, err
}

func (s *StatsFile) Save(st Stats) error { return s.file.Save(st) }
