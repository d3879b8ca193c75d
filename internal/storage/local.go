package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

// LocalStorage keeps the session in a JSON file readable only by the
// current user.
type LocalStorage struct {
	path string
	mu   sync.Mutex
}

func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{path: path}
}

// Load returns an empty session when the file does not exist.
func (l *LocalStorage) Load(_ context.Context) (models.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Session{}, nil
		}
		return models.Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return session, nil
}

func (l *LocalStorage) Save(_ context.Context, session models.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Write to a temporary file first so a crash never leaves half a token
	tempFile := l.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tempFile, l.path); err != nil {
		return fmt.Errorf("failed to rename session file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
