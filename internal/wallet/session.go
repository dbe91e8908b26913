package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Session caches unlocked keys in a 0600 file so a burst of commands does
// not hit the keychain prompt each time. `wallet lock` clears it.
type Session struct {
	path string
	mu   sync.Mutex
}

// NewSession returns a session backed by the file at path.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// DefaultSessionPath is the per-user session cache file.
//
//	macOS:   ~/Library/Caches/w3fund/session.json
//	Linux:   ~/.cache/w3fund/session.json
//	Windows: %LocalAppData%\w3fund\session.json
func DefaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "w3fund", "session.json")
}

// Path returns the backing file.
func (s *Session) Path() string { return s.path }

// load returns an empty map (never nil) on any error.
func (s *Session) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *Session) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	return os.Chmod(s.path, 0o600)
}

// Get returns the cached key for ref.
func (s *Session) Get(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[ref]
	return v, ok
}

// Put caches hexKey under ref.
func (s *Session) Put(ref, hexKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[ref] = hexKey
	return s.save(m)
}

// Remove evicts ref from the cache.
func (s *Session) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	if _, ok := m[ref]; !ok {
		return nil
	}
	delete(m, ref)
	return s.save(m)
}

// Refs lists the cached references.
func (s *Session) Refs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	out := make([]string, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

// Clear removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Active reports whether any key is cached.
func (s *Session) Active() bool {
	return len(s.Refs()) > 0
}
