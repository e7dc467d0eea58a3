// Package storage persists recordings into a save location. Each kind of
// location has its own Backend, chosen once when the location is resolved.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
)

// Backend stores artifacts in one save location.
type Backend interface {
	Location() recording.SaveLocation
	// Save writes the capture file at tmpPath into the location as name.
	Save(ctx context.Context, tmpPath, name string) (recording.Artifact, error)
	// List returns the artifacts in the location, newest first.
	List(ctx context.Context) ([]recording.Artifact, error)
	Delete(ctx context.Context, ref string) error
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
	WriteLock(ctx context.Context, name string) (string, error)
	RemoveLock(ctx context.Context, ref string) error
}

// SortNewestFirst orders artifacts by creation time, newest first, breaking
// ties by name descending.
func SortNewestFirst(arts []recording.Artifact) {
	sort.SliceStable(arts, func(i, j int) bool {
		if !arts[i].CreatedAt.Equal(arts[j].CreatedAt) {
			return arts[i].CreatedAt.After(arts[j].CreatedAt)
		}
		return arts[i].Name > arts[j].Name
	})
}

// Router dispatches by-reference operations to the storage mechanism the
// reference's scheme requires.
type Router struct {
	Fs     afero.Fs
	Broker *grants.Broker
}

func (r *Router) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if recording.IsScoped(ref) {
		return r.Broker.Open(ref)
	}
	return r.Fs.Open(ref)
}

func (r *Router) Delete(ctx context.Context, ref string) error {
	if recording.IsScoped(ref) {
		return deleteError(ref, r.Broker.Delete(ref))
	}
	return deleteError(ref, r.Fs.Remove(ref))
}

// deleteError reports a missing file as ErrNotFound. Anything else, such as a
// revoked grant or a read-only folder, is returned as is.
func deleteError(ref string, err error) error {
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return recording.Wrap("delete", ref, recording.ErrNotFound, err)
}
