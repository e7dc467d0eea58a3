package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
)

// ScopedDirectoryStore keeps artifacts in a folder reachable only through a
// grant handle. File metadata from the broker is limited, so creation times
// come from the artifact names.
type ScopedDirectoryStore struct {
	src    afero.Fs // where capture files live
	broker *grants.Broker
	handle string
	now    func() time.Time
}

func NewScopedDirectoryStore(src afero.Fs, broker *grants.Broker, handle string) *ScopedDirectoryStore {
	return &ScopedDirectoryStore{src: src, broker: broker, handle: handle, now: time.Now}
}

func (s *ScopedDirectoryStore) Location() recording.SaveLocation {
	return recording.SaveLocation{Kind: recording.ScopedDirectory, Raw: s.handle}
}

// Save creates the entry first and then writes the whole capture into it.
// A failure after creation leaves the empty entry behind.
func (s *ScopedDirectoryStore) Save(ctx context.Context, tmpPath, name string) (recording.Artifact, error) {
	ref, err := s.broker.CreateFile(s.handle, name)
	if err != nil {
		return recording.Artifact{}, recording.Wrap("save", name, recording.ErrSave, err)
	}
	data, err := afero.ReadFile(s.src, tmpPath)
	if err != nil {
		return recording.Artifact{}, recording.Wrap("save", ref, recording.ErrSave, err)
	}
	if err := s.broker.WriteAll(ref, data); err != nil {
		return recording.Artifact{}, recording.Wrap("save", ref, recording.ErrSave, err)
	}
	return recording.Artifact{Name: name, Ref: ref, SizeBytes: int64(len(data)), CreatedAt: s.createdAt(name)}, nil
}

func (s *ScopedDirectoryStore) List(ctx context.Context) ([]recording.Artifact, error) {
	entries, err := s.broker.ReadDir(s.handle)
	if err != nil {
		return nil, recording.Wrap("list", s.handle, recording.ErrList, err)
	}
	arts := make([]recording.Artifact, 0, len(entries))
	for _, e := range entries {
		if !recording.IsArtifactName(e.Name) {
			continue
		}
		arts = append(arts, recording.Artifact{
			Name:      e.Name,
			Ref:       e.Ref,
			SizeBytes: e.Size,
			CreatedAt: s.createdAt(e.Name),
		})
	}
	SortNewestFirst(arts)
	return arts, nil
}

func (s *ScopedDirectoryStore) createdAt(name string) time.Time {
	if t, ok := recording.ParseTime(name); ok {
		return t
	}
	return s.now()
}

func (s *ScopedDirectoryStore) Delete(ctx context.Context, ref string) error {
	if err := s.owns(ref); err != nil {
		return recording.Wrap("delete", ref, recording.ErrNotFound, err)
	}
	return deleteError(ref, s.broker.Delete(ref))
}

func (s *ScopedDirectoryStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := s.owns(ref); err != nil {
		return nil, err
	}
	return s.broker.Open(ref)
}

func (s *ScopedDirectoryStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.broker.Exists(s.handle, name)
}

func (s *ScopedDirectoryStore) WriteLock(ctx context.Context, name string) (string, error) {
	return s.broker.CreateFile(s.handle, name)
}

func (s *ScopedDirectoryStore) RemoveLock(ctx context.Context, ref string) error {
	if !strings.HasSuffix(ref, recording.LockSuffix) {
		return fmt.Errorf("not a lock marker: %s", ref)
	}
	return s.broker.Delete(ref)
}

func (s *ScopedDirectoryStore) owns(ref string) error {
	handle, _, err := grants.SplitEntry(ref)
	if err != nil {
		return err
	}
	if handle != s.handle {
		return fmt.Errorf("%s is outside %s", ref, s.handle)
	}
	return nil
}
