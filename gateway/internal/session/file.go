package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvSessionFile = "BOOKHUB_SESSION_FILE"
	fileMode       = 0o600
)

type fileState struct {
	Token string         `yaml:"token"`
	User  map[string]any `yaml:"user"`
}

// FilePersister keeps the token and the raw user record in a YAML file.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// DefaultPath is $BOOKHUB_SESSION_FILE, else ~/.bookhub/session.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvSessionFile); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home dir")
	}
	return filepath.Join(home, ".bookhub", "session.yaml"), nil
}

func (p *FilePersister) Path() string {
	return p.path
}

func (p *FilePersister) Load() (Session, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "read session")
	}
	var st fileState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Session{}, errors.Wrap(err, "decode session")
	}
	// the record goes back through the JSON decoder so aliases and the role
	// resolve the same way as at login
	var user model.User
	if st.User != nil {
		raw, err := json.Marshal(st.User)
		if err != nil {
			return Session{}, errors.Wrap(err, "encode user")
		}
		if err := json.Unmarshal(raw, &user); err != nil {
			return Session{}, errors.Wrap(err, "decode user")
		}
	}
	return New(st.Token, user), nil
}

func (p *FilePersister) Save(s Session) error {
	raw := s.User.Raw
	if raw == nil {
		raw = map[string]any{
			"id":    s.User.ID,
			"name":  s.User.Name,
			"email": s.User.Email,
			"role":  string(s.User.Role),
		}
	}
	data, err := yaml.Marshal(fileState{Token: s.Token, User: raw})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return errors.Wrap(err, "session dir")
	}
	if err := os.WriteFile(p.path, data, fileMode); err != nil {
		return errors.Wrap(err, "write session")
	}
	return os.Chmod(p.path, fileMode)
}

func (p *FilePersister) Clear() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// MemoryPersister keeps the session in memory only.
type MemoryPersister struct {
	s Session
}

func (m *MemoryPersister) Load() (Session, error) { return m.s, nil }
func (m *MemoryPersister) Save(s Session) error   { m.s = s; return nil }
func (m *MemoryPersister) Clear() error           { m.s = Session{}; return nil }
