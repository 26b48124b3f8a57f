package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sitesearch/internal/domain"
)

// FileStore keeps every key in one JSON object on disk. Each Put rewrites
// the file through a temp file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the parent directory of path and returns a store.
// The file itself is created on the first Put.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(v), nil
}

// Put stores value under key. value must be a JSON document.
// A corrupt backing file is moved aside before the new one is written.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("filestore: value for %q is not JSON: %w", key, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if rerr := os.Rename(s.path, aside); rerr != nil {
			return fmt.Errorf("filestore: move corrupt file aside: %w", rerr)
		}
		doc = map[string]json.RawMessage{}
	}
	doc[key] = json.RawMessage(append([]byte(nil), value...))
	return writeJSON(s.path, doc)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("filestore: parse %s: %w", filepath.Base(s.path), err)
	}
	return doc, nil
}

// writeJSON atomically writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.WrapOp("filestore: marshal", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return domain.WrapOp("filestore: create temp", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.WrapOp("filestore: write", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.WrapOp("filestore: close", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return domain.WrapOp("filestore: chmod", err)
	}
	return domain.WrapOp("filestore: rename", os.Rename(tmp.Name(), path))
}
