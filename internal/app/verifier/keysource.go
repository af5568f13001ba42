package verifier

import (
	"fmt"
	"os"
	"sync"
)

// KeySource yields raw verification key bytes and a version that changes
// whenever the bytes do.
type KeySource interface {
	Read() (data []byte, version string, err error)
}

// FileKeySource reads a key file, re-reading it only after its modification
// time or size change.
type FileKeySource struct {
	path    string
	mu      sync.Mutex
	version string
	data    []byte
}

func NewFileKeySource(path string) *FileKeySource {
	return &FileKeySource{path: path}
}

func (s *FileKeySource) Path() string {
	return s.path
}

func (s *FileKeySource) Read() ([]byte, string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeySource, err)
	}
	version := fmt.Sprintf("%s@%d:%d", s.path, info.ModTime().UnixNano(), info.Size())

	s.mu.Lock()
	defer s.mu.Unlock()

	if version == s.version {
		return s.data, s.version, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrKeySource, err)
	}

	s.data = data
	s.version = version
	return data, version, nil
}

// StaticKeySource serves fixed bytes.
type StaticKeySource []byte

func (s StaticKeySource) Read() ([]byte, string, error) {
	if len(s) == 0 {
		return nil, "", fmt.Errorf("%w: empty key", ErrKeySource)
	}
	return s, "static", nil
}

// KeyCache keeps the parsed form of the latest key version.
type KeyCache[T any] struct {
	source  KeySource
	parse   func([]byte) (T, error)
	mu      sync.Mutex
	version string
	value   T
}

func NewKeyCache[T any](source KeySource, parse func([]byte) (T, error)) *KeyCache[T] {
	return &KeyCache[T]{source: source, parse: parse}
}

func (c *KeyCache[T]) Get() (T, error) {
	var empty T

	data, version, err := c.source.Read()
	if err != nil {
		return empty, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != "" && c.version == version {
		return c.value, nil
	}

	value, err := c.parse(data)
	if err != nil {
		return empty, fmt.Errorf("%w: %w", ErrKeySource, err)
	}

	c.value = value
	c.version = version
	return value, nil
}
