package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo persists each key as a file under a data folder, so a session
// restored at startup survives process restarts the way browser storage
// survives reloads.
type FileRepo struct {
	mu     sync.Mutex
	folder string
}

func NewFileRepo(folder string) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileRepo] MkdirAll")
	}
	return &FileRepo{folder: folder}, nil
}

func (r *FileRepo) Read(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(key))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[FileRepo.Read] ReadFile")
	}
	return string(data), nil
}

func (r *FileRepo) Write(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Write-then-rename so a crash mid-write never leaves a torn payload
	// behind for the next Read.
	tmp := r.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Write] WriteFile")
	}
	if err := os.Rename(tmp, r.path(key)); err != nil {
		return errors.Wrap(err, "[FileRepo.Write] Rename")
	}
	return nil
}

func (r *FileRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Delete] Remove")
	}
	return nil
}

func (r *FileRepo) path(key string) string {
	// Keys are internal constants, but sanitize separators anyway.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(r.folder, safe+".json")
}
