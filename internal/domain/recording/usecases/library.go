package usecases

import (
	"context"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/location"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/storage"
)

// Library lists and deletes recordings in the current save location.
type Library struct {
	Locations *location.Resolver
	Router    *storage.Router
}

func (l *Library) List(ctx context.Context) (location.ListResult, error) {
	return l.Locations.List(ctx)
}

// Find looks an artifact up by name or reference.
func (l *Library) Find(ctx context.Context, nameOrRef string) (recording.Artifact, error) {
	res, err := l.List(ctx)
	if err != nil {
		return recording.Artifact{}, err
	}
	for _, a := range res.Artifacts {
		if a.Name == nameOrRef || a.Ref == nameOrRef {
			return a, nil
		}
	}
	return recording.Artifact{}, &recording.OpError{Op: "find", Ref: nameOrRef, Kind: recording.ErrNotFound}
}

// Delete removes an artifact for good.
func (l *Library) Delete(ctx context.Context, nameOrRef string) (recording.Artifact, error) {
	art, err := l.Find(ctx, nameOrRef)
	if err != nil {
		return recording.Artifact{}, err
	}
	if err := l.Router.Delete(ctx, art.Ref); err != nil {
		return recording.Artifact{}, err
	}
	return art, nil
}
