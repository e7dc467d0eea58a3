package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
)

type fixture struct {
	fs     afero.Fs
	broker *grants.Broker
	handle string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := kv.Open(fs, "/state/state.toml")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/sdcard/Music", 0o755))
	broker := grants.NewBroker(store, fs)
	g, err := broker.Grant("/sdcard/Music")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/tmp/capture.m4a", []byte("aac-bytes"), 0o644))
	return &fixture{fs: fs, broker: broker, handle: g.Handle}
}

func (f *fixture) backends() map[string]Backend {
	return map[string]Backend{
		"plain":  NewPlainPathStore(f.fs, "/data/recordings"),
		"scoped": NewScopedDirectoryStore(f.fs, f.broker, f.handle),
	}
}

func TestEmptyLocationListsNothing(t *testing.T) {
	for kind, b := range newFixture(t).backends() {
		t.Run(kind, func(t *testing.T) {
			arts, err := b.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, arts)
		})
	}
}

func TestSaveListDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	for kind, b := range newFixture(t).backends() {
		t.Run(kind, func(t *testing.T) {
			name := "2024-05-01 12-00-00 0.m4a"
			art, err := b.Save(ctx, "/tmp/capture.m4a", name)
			require.NoError(t, err)
			assert.Equal(t, name, art.Name)
			assert.Equal(t, int64(len("aac-bytes")), art.SizeBytes)

			arts, err := b.List(ctx)
			require.NoError(t, err)
			require.Len(t, arts, 1)
			assert.Equal(t, art.Ref, arts[0].Ref)

			rc, err := b.Open(ctx, art.Ref)
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "aac-bytes", string(data))

			ok, err := b.Exists(ctx, name)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, b.Delete(ctx, art.Ref))
			arts, err = b.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, arts)

			err = b.Delete(ctx, art.Ref)
			assert.ErrorIs(t, err, recording.ErrNotFound)
		})
	}
}

func TestListSkipsLocksAndForeignFiles(t *testing.T) {
	ctx := context.Background()
	for kind, b := range newFixture(t).backends() {
		t.Run(kind, func(t *testing.T) {
			lockRef, err := b.WriteLock(ctx, recording.LockName("abcdef123"))
			require.NoError(t, err)
			_, err = b.Save(ctx, "/tmp/capture.m4a", "2024-05-01 12-00-00 0.m4a")
			require.NoError(t, err)
			_, err = b.Save(ctx, "/tmp/capture.m4a", "notes.txt")
			require.NoError(t, err)

			arts, err := b.List(ctx)
			require.NoError(t, err)
			require.Len(t, arts, 1)
			assert.Equal(t, "2024-05-01 12-00-00 0.m4a", arts[0].Name)

			require.NoError(t, b.RemoveLock(ctx, lockRef))
			assert.Error(t, b.RemoveLock(ctx, arts[0].Ref))
		})
	}
}

func TestScopedListTimestampsFromNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewScopedDirectoryStore(f.fs, f.broker, f.handle)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for _, name := range []string{"2024-05-01 12-00-00 0.m4a", "2024-05-02 08-30-00 0.M4A", "imported.m4a"} {
		_, err := s.Save(ctx, "/tmp/capture.m4a", name)
		require.NoError(t, err)
	}

	arts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, arts, 3)
	assert.Equal(t, "imported.m4a", arts[0].Name)
	assert.True(t, fixed.Equal(arts[0].CreatedAt))
	assert.Equal(t, "2024-05-02 08-30-00 0.M4A", arts[1].Name)
	assert.Equal(t, 2, arts[1].CreatedAt.Day())
	assert.Equal(t, "2024-05-01 12-00-00 0.m4a", arts[2].Name)
	assert.Equal(t, 2024, arts[2].CreatedAt.Year())
}

func TestScopedListFailsAfterRevoke(t *testing.T) {
	f := newFixture(t)
	s := NewScopedDirectoryStore(f.fs, f.broker, f.handle)
	require.NoError(t, f.broker.Revoke(f.handle))

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, recording.ErrList)
	assert.ErrorIs(t, err, recording.ErrPermissionDenied)
}

func TestScopedSaveFailureLeavesEmptyEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewScopedDirectoryStore(f.fs, f.broker, f.handle)

	_, err := s.Save(ctx, "/tmp/missing.m4a", "2024-05-01 12-00-00 0.m4a")
	assert.ErrorIs(t, err, recording.ErrSave)

	arts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Zero(t, arts[0].SizeBytes)
}

func TestPlainSaveMissingSource(t *testing.T) {
	f := newFixture(t)
	_, err := NewPlainPathStore(f.fs, "/data/recordings").Save(context.Background(), "/tmp/missing.m4a", "x.m4a")
	assert.ErrorIs(t, err, recording.ErrSave)
}

func TestBackendsRejectForeignRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plain := NewPlainPathStore(f.fs, "/data/recordings")
	scoped := NewScopedDirectoryStore(f.fs, f.broker, f.handle)

	assert.Error(t, plain.Delete(ctx, "/etc/passwd"))
	assert.Error(t, scoped.Delete(ctx, "content://grants/other/x.m4a"))
	_, err := scoped.Open(ctx, "/tmp/capture.m4a")
	assert.Error(t, err)
}

func TestRouterDispatchesByScheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := &Router{Fs: f.fs, Broker: f.broker}

	scoped := NewScopedDirectoryStore(f.fs, f.broker, f.handle)
	art, err := scoped.Save(ctx, "/tmp/capture.m4a", "a.m4a")
	require.NoError(t, err)

	rc, err := r.Open(ctx, art.Ref)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	rc, err = r.Open(ctx, "/tmp/capture.m4a")
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	require.NoError(t, r.Delete(ctx, art.Ref))
	require.NoError(t, r.Delete(ctx, "/tmp/capture.m4a"))
	assert.ErrorIs(t, r.Delete(ctx, "/tmp/capture.m4a"), recording.ErrNotFound)
}

func TestDeleteReportsPermissionProblemsAsSuch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scoped := NewScopedDirectoryStore(f.fs, f.broker, f.handle)
	art, err := scoped.Save(ctx, "/tmp/capture.m4a", "a.m4a")
	require.NoError(t, err)
	require.NoError(t, f.broker.Revoke(f.handle))

	err = scoped.Delete(ctx, art.Ref)
	assert.ErrorIs(t, err, recording.ErrPermissionDenied)
	assert.NotErrorIs(t, err, recording.ErrNotFound)

	r := &Router{Fs: afero.NewReadOnlyFs(f.fs), Broker: f.broker}
	err = r.Delete(ctx, "/tmp/capture.m4a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, recording.ErrNotFound)
	ok, err := afero.Exists(f.fs, "/tmp/capture.m4a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	arts := []recording.Artifact{
		{Name: "a", CreatedAt: t0},
		{Name: "c", CreatedAt: t0.Add(time.Hour)},
		{Name: "b", CreatedAt: t0},
	}
	SortNewestFirst(arts)
	assert.Equal(t, []string{"c", "b", "a"}, []string{arts[0].Name, arts[1].Name, arts[2].Name})
}
