package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/contractops/utils"
	"github.com/pkg/errors"
)

// FileStore keeps one JSON file per key under a root directory. Writes go through a temporary file and a rename so
// concurrent readers never see a partial document.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created lazily on the first write.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache directory must be provided")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Name() string {
	return "file"
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeFileName(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	return utils.WriteFileAtomic(s.path(key), value)
}

// Clear deletes the root directory and everything in it. A missing directory is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrapf(err, "failed to remove cache directory %s", s.dir)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// sanitizeFileName maps every character outside [A-Za-z0-9._-] to '_' so keys cannot escape the root directory.
func sanitizeFileName(key string) string {
	var sb strings.Builder
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			sb.WriteRune(c)
		case c == '.' && sb.Len() > 0:
			sb.WriteRune(c)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
