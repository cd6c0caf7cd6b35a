package preferences

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStorage keeps one file per key inside dir. Writes go through a
// temporary file and a rename so readers never observe a partial record.
type FileStorage struct {
	dir  string
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStorage{dir: dir, keys: make(map[string]struct{})}, nil
}

// FileName maps a key to its file name inside the storage directory.
func FileName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return name + ".json"
}

func (f *FileStorage) path(key string) string {
	f.mu.Lock()
	f.keys[key] = struct{}{}
	f.mu.Unlock()
	return filepath.Join(f.dir, FileName(key))
}

func (f *FileStorage) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStorage) Set(key string, value []byte) error {
	fileName := f.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(value)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileStorage) Remove(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStorage) Close() error { return nil }

// WatchPaths lists the files of every key touched so far.
func (f *FileStorage) WatchPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.keys))
	for key := range f.keys {
		paths = append(paths, filepath.Join(f.dir, FileName(key)))
	}
	return paths
}
