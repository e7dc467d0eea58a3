// Package location owns the persisted save location and turns it into a
// storage backend.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/pubsub"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/storage"
)

// Key is the kv entry holding the user's chosen location.
const Key = "saveLocation"

// Store is the single owner of the saveLocation setting. Every change is
// published to subscribers.
type Store struct {
	kv         *kv.Store
	defaultDir string
	hub        pubsub.Hub[recording.SaveLocation]

	mu   sync.Mutex
	last recording.SaveLocation
}

func NewStore(store *kv.Store, defaultDir string) *Store {
	s := &Store{kv: store, defaultDir: defaultDir}
	s.last = s.Get()
	return s
}

func (s *Store) DefaultDir() string { return s.defaultDir }

// Get returns the current location. Unset or unreadable values resolve to
// the default directory.
func (s *Store) Get() recording.SaveLocation {
	raw, _, err := s.kv.Get(Key)
	if err != nil {
		raw = ""
	}
	return recording.Classify(raw, s.defaultDir)
}

func (s *Store) Set(raw string) error {
	if raw == "" {
		return s.Reset()
	}
	if err := s.kv.Set(Key, raw); err != nil {
		return fmt.Errorf("saving location: %w", err)
	}
	s.changed()
	return nil
}

func (s *Store) Reset() error {
	if err := s.kv.Delete(Key); err != nil {
		return fmt.Errorf("resetting location: %w", err)
	}
	s.changed()
	return nil
}

// Subscribe delivers the new location after every change.
func (s *Store) Subscribe() (<-chan recording.SaveLocation, func()) {
	return s.hub.Subscribe(4)
}

func (s *Store) changed() {
	loc := s.Get()
	s.mu.Lock()
	if loc == s.last {
		s.mu.Unlock()
		return
	}
	s.last = loc
	s.mu.Unlock()
	s.hub.Publish(loc)
}

// Watch relays changes made by other processes until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	signals, err := s.kv.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range signals {
			s.changed()
		}
	}()
	return nil
}

// Resolver maps save locations to storage backends.
type Resolver struct {
	Store  *Store
	Broker *grants.Broker
	Fs     afero.Fs
	Logger *zap.Logger
}

// Resolve returns the location new recordings go to.
func (r *Resolver) Resolve() recording.SaveLocation {
	return r.Store.Get()
}

// Open picks the backend for loc.
func (r *Resolver) Open(loc recording.SaveLocation) storage.Backend {
	if loc.IsScoped() {
		return storage.NewScopedDirectoryStore(r.Fs, r.Broker, loc.Raw)
	}
	return storage.NewPlainPathStore(r.Fs, loc.Raw)
}

func (r *Resolver) Backend() storage.Backend {
	return r.Open(r.Resolve())
}

// ListResult is a listing together with the location it came from.
type ListResult struct {
	Location  recording.SaveLocation
	Artifacts []recording.Artifact
	// FellBack is set when the scoped location was unreadable and was
	// replaced by the default directory.
	FellBack bool
	Revoked  recording.SaveLocation
}

// List lists the current location. When a scoped location cannot be listed
// its permission is taken as revoked: the setting is cleared and the default
// directory is listed instead.
func (r *Resolver) List(ctx context.Context) (ListResult, error) {
	loc := r.Resolve()
	arts, err := r.Open(loc).List(ctx)
	if err == nil {
		return ListResult{Location: loc, Artifacts: arts}, nil
	}
	if !loc.IsScoped() {
		return ListResult{Location: loc, Artifacts: []recording.Artifact{}}, err
	}

	r.logger().Warn("scoped location unreadable, falling back to default",
		zap.String("location", loc.Raw), zap.Error(err))
	if rerr := r.Store.Reset(); rerr != nil {
		return ListResult{Location: loc, Artifacts: []recording.Artifact{}}, errors.Join(err, rerr)
	}

	def := r.Resolve()
	arts, err = r.Open(def).List(ctx)
	if err != nil {
		return ListResult{Location: def, Artifacts: []recording.Artifact{}, FellBack: true, Revoked: loc}, err
	}
	return ListResult{Location: def, Artifacts: arts, FellBack: true, Revoked: loc}, nil
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
