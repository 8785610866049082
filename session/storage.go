package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the durable client store behind the session: one token string
// and one serialized user record. Read once at startup, written on login and
// profile update, cleared on logout or forced teardown. Implementations must
// treat an absent session as (empty, nil, nil), not an error.
type Storage interface {
	Read(ctx context.Context) (token string, user []byte, err error)
	Write(ctx context.Context, token string, user []byte) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Storage, used in tests and ephemeral sessions.
type Memory struct {
	mu    sync.Mutex
	token string
	user  []byte
	set   bool
}

var _ Storage = (*Memory)(nil)

func (m *Memory) Read(context.Context) (string, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", nil, nil
	}
	u := make([]byte, len(m.user))
	copy(u, m.user)
	return m.token, u, nil
}

func (m *Memory) Write(_ context.Context, token string, user []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = append([]byte(nil), user...)
	m.set = true
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user, m.set = "", nil, false
	return nil
}

// FileStorage persists the session as a small JSON file (0600). The file is
// written via a temp-file rename so a crash mid-write never leaves a
// half-session behind.
type FileStorage struct {
	Path string

	mu sync.Mutex
}

var _ Storage = (*FileStorage)(nil)

type fileSession struct {
	Token string `json:"token"`
	User  []byte `json:"user"`
}

func (f *FileStorage) Read(context.Context) (string, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("session: read %s: %w", f.Path, err)
	}
	var fs fileSession
	if err := json.Unmarshal(b, &fs); err != nil {
		// corrupt session file; treat as signed out
		return "", nil, nil
	}
	return fs.Token, fs.User, nil
}

func (f *FileStorage) Write(_ context.Context, token string, user []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := json.Marshal(fileSession{Token: token, User: user})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: create %s: %w", dir, err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStorage) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
