package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore supplies the bearer credential for generation calls. The
// client takes it at construction so the credential source is swappable
// without touching call sites.
type CredentialStore interface {
	Get() (string, error)
	Set(key string) error
	Clear() error
}

// FileStore keeps the credential in a plain file, the server-side
// equivalent of the browser's unencrypted local storage.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed credential store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Set(key string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// EnvStore reads the credential from an environment variable. It is
// read-only; Set and Clear report an error.
type EnvStore struct {
	Name string
}

func (s *EnvStore) Get() (string, error) {
	return os.Getenv(s.Name), nil
}

func (s *EnvStore) Set(string) error {
	return fmt.Errorf("credential is provided by the %s environment variable", s.Name)
}

func (s *EnvStore) Clear() error {
	return fmt.Errorf("credential is provided by the %s environment variable", s.Name)
}

// Chain consults stores in order and returns the first non-empty
// credential. Writes go to the first store.
type Chain []CredentialStore

func (c Chain) Get() (string, error) {
	for _, s := range c {
		key, err := s.Get()
		if err != nil {
			return "", err
		}
		if key != "" {
			return key, nil
		}
	}
	return "", nil
}

func (c Chain) Set(key string) error {
	if len(c) == 0 {
		return errors.New("no credential store configured")
	}
	return c[0].Set(key)
}

func (c Chain) Clear() error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Clear()
}
