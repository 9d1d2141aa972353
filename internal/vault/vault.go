// Package vault keeps Icinga API credentials in an encrypted file.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("credential already exists")
	ErrDecrypt   = errors.New("failed to open credential vault (wrong password?)")
)

// Credential is an Icinga API user.
type Credential struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Summary is a Credential without its secret.
type Summary struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Summarize drops the password.
func (c Credential) Summarize() Summary {
	return Summary{Name: c.Name, Username: c.Username}
}

// Provider is the credential storage interface the rest of Meerkat uses.
type Provider interface {
	List() ([]Summary, error)
	Get(name string) (Credential, error)
	Add(c Credential) error
	Update(name string, c Credential) error
	Remove(name string) error
}

// vaultFile is the on-disk envelope. The KDF parameters are recorded so
// they can be raised later without breaking existing vaults.
type vaultFile struct {
	Version int       `json:"version"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Data    []byte    `json:"data"`
}

// FileStore is a Provider backed by one AES-256-GCM encrypted file.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	kdf   kdfParams
	salt  []byte
	box   *sealer
	creds map[string]Credential
}

// Open opens the vault at path, creating an empty one if the file does not
// exist yet.
func Open(path string, password []byte) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		creds: make(map[string]Credential),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		s.kdf = defaultKDF
		s.salt = salt
		if s.box, err = newSealer(s.kdf.derive(password, salt)); err != nil {
			return nil, err
		}
		return s, s.flush()
	}
	if err != nil {
		return nil, err
	}

	var vf vaultFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("corrupt credential vault: %w", err)
	}
	s.kdf = vf.KDF
	if s.kdf.Time == 0 {
		s.kdf = defaultKDF
	}
	s.salt = vf.Salt
	if s.box, err = newSealer(s.kdf.derive(password, vf.Salt)); err != nil {
		return nil, err
	}
	plaintext, err := s.box.open(vf.Data)
	if err != nil {
		return nil, ErrDecrypt
	}
	if err := json.Unmarshal(plaintext, &s.creds); err != nil {
		return nil, fmt.Errorf("corrupt credential data: %w", err)
	}
	return s, nil
}

// flush encrypts the credentials and replaces the vault file.
func (s *FileStore) flush() error {
	plaintext, err := json.Marshal(s.creds)
	if err != nil {
		return err
	}
	sealed, err := s.box.seal(plaintext)
	if err != nil {
		return err
	}
	data, err := json.Marshal(vaultFile{Version: 1, KDF: s.kdf, Salt: s.salt, Data: sealed})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// List returns every credential without secrets, sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Get(name string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[name]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return c, nil
}

func (s *FileStore) Add(c Credential) error {
	if c.Name == "" {
		return errors.New("credential name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[c.Name]; exists {
		return ErrDuplicate
	}
	s.creds[c.Name] = c
	return s.flush()
}

// Update replaces the credential stored under name, renaming it if c
// carries a different name.
func (s *FileStore) Update(name string, c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[name]; !exists {
		return ErrNotFound
	}
	if name != c.Name {
		if _, clash := s.creds[c.Name]; clash {
			return ErrDuplicate
		}
		delete(s.creds, name)
	}
	s.creds[c.Name] = c
	return s.flush()
}

func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[name]; !exists {
		return ErrNotFound
	}
	delete(s.creds, name)
	return s.flush()
}
