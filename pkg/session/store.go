package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mentorlog/mentorlog-api/pkg/authz"
)

// Storage keys. Both are written and cleared together.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	ErrEmptyToken = errors.New("session: token is required")
	// ErrCorrupt is returned by Load when stored data cannot be decoded.
	ErrCorrupt = errors.New("session: stored data is corrupt")
)

// UserProfile is the cached identity of the signed-in user.
type UserProfile struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     authz.Role `json:"role"`
	IsActive bool       `json:"is_active"`
}

// Principal returns the identity used for role checks.
func (p *UserProfile) Principal() *authz.Principal {
	if p == nil {
		return nil
	}
	return &authz.Principal{ID: p.ID, Role: p.Role}
}

// Store persists the bearer token and the cached profile.
type Store interface {
	Save(token string, profile *UserProfile) error
	// Load returns an empty token and nil profile when nothing is stored.
	Load() (string, *UserProfile, error)
	Clear() error
}

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]string{}}
}

func (s *MemoryStore) Save(token string, profile *UserProfile) error {
	items, err := encode(token, profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load() (string, *UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decode(s.items)
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.items = map[string]string{}
	s.mu.Unlock()
	return nil
}

// FileStore persists the session as a JSON file so it survives restarts.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(token string, profile *UserProfile) error {
	items, err := encode(token, profile)
	if err != nil {
		return err
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

func (s *FileStore) Load() (string, *UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read session file: %w", err)
	}

	items := map[string]string{}
	if err := json.Unmarshal(data, &items); err != nil {
		return "", nil, fmt.Errorf("%w: session file: %v", ErrCorrupt, err)
	}
	return decode(items)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func encode(token string, profile *UserProfile) (map[string]string, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	items := map[string]string{TokenKey: token}
	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
		items[UserKey] = string(raw)
	}
	return items, nil
}

// decode never returns a profile without a token.
func decode(items map[string]string) (string, *UserProfile, error) {
	token := items[TokenKey]
	if token == "" {
		return "", nil, nil
	}
	raw, ok := items[UserKey]
	if !ok || raw == "" {
		return token, nil, nil
	}
	var profile UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return "", nil, fmt.Errorf("%w: profile: %v", ErrCorrupt, err)
	}
	return token, &profile, nil
}
