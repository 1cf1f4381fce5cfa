package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

type fileEntry struct {
	Value   []byte `json:"value"`
	Expires int64  `json:"expires"`
}

// FileStore keeps one file per entry under dir, each carrying an absolute
// expiry. A read past expiry purges the entry and reports a miss.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		os.Remove(s.path(key))
		return nil, ErrMiss
	}
	if entry.Expires < time.Now().Unix() {
		os.Remove(s.path(key))
		return nil, ErrMiss
	}
	return entry.Value, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	raw, err := json.Marshal(fileEntry{
		Value:   value,
		Expires: time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), raw, 0o644)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Flush removes every cache file under the store directory.
func (s *FileStore) Flush() error {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.cache"))
	if err != nil {
		return err
	}
	for _, f := range files {
		os.Remove(f)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".cache")
}
