package usecases

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/location"
)

// Settings changes where recordings are saved.
type Settings struct {
	Locations *location.Store
	Broker    *grants.Broker
	Fs        afero.Fs
}

func (s *Settings) Current() recording.SaveLocation {
	return s.Locations.Get()
}

// Describe returns the folder behind loc, or an explanation when a scoped
// handle no longer resolves.
func (s *Settings) Describe(loc recording.SaveLocation) string {
	if !loc.IsScoped() {
		return loc.Raw
	}
	dir, err := s.Broker.Resolve(loc.Raw)
	if err != nil {
		return "unavailable (" + err.Error() + ")"
	}
	return dir
}

// ChooseScoped grants access to dir and makes it the save location.
func (s *Settings) ChooseScoped(dir string) (grants.Grant, error) {
	g, err := s.Broker.Grant(dir)
	if err != nil {
		return grants.Grant{}, err
	}
	if err := s.Locations.Set(g.Handle); err != nil {
		return grants.Grant{}, err
	}
	return g, nil
}

// ChoosePath saves recordings directly into dir.
func (s *Settings) ChoosePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := s.Fs.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", abs, err)
	}
	if err := s.Locations.Set(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (s *Settings) Reset() error {
	return s.Locations.Reset()
}

func (s *Settings) Grants() ([]grants.Grant, error) {
	return s.Broker.List()
}

// Revoke withdraws a grant. A save location using it keeps its value until
// the next listing notices and falls back to the default.
func (s *Settings) Revoke(handle string) error {
	return s.Broker.Revoke(handle)
}
