package usecases

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
)

// SessionStore persists the active recording so a later invocation can
// stop it.
type SessionStore struct {
	Fs       afero.Fs
	StateDir string
}

func (s *SessionStore) path() string {
	return filepath.Join(s.StateDir, "session.json")
}

func (s *SessionStore) Active() bool {
	ok, _ := afero.Exists(s.Fs, s.path())
	return ok
}

func (s *SessionStore) Load() (*recording.Session, error) {
	data, err := afero.ReadFile(s.Fs, s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, recording.ErrNotRecording
		}
		return nil, fmt.Errorf("reading recording state: %w", err)
	}
	var sess recording.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Unreadable state would block every later start.
		s.Clear()
		return nil, fmt.Errorf("discarding unreadable recording state: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *recording.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := s.Fs.MkdirAll(s.StateDir, 0o755); err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := afero.WriteFile(s.Fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.Fs.Rename(tmp, s.path()); err != nil {
		_ = s.Fs.Remove(tmp)
		return err
	}
	return nil
}

func (s *SessionStore) Clear() {
	_ = s.Fs.Remove(s.path())
}
