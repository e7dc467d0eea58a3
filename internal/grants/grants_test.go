package grants

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
)

func newBroker(t *testing.T) (*Broker, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := kv.Open(fs, "/state/state.toml")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/music", 0o755))
	return NewBroker(store, fs), fs
}

func TestGrantAndResolve(t *testing.T) {
	b, _ := newBroker(t)

	g, err := b.Grant("/music")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.Handle, "content://grants/"))
	assert.True(t, recording.IsScoped(g.Handle))

	dir, err := b.Resolve(g.Handle)
	require.NoError(t, err)
	assert.Equal(t, "/music", dir)

	list, err := b.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, g.Handle, list[0].Handle)
}

func TestGrantRejectsFilesAndMissingDirs(t *testing.T) {
	b, fs := newBroker(t)
	require.NoError(t, afero.WriteFile(fs, "/music/a.txt", nil, 0o644))

	_, err := b.Grant("/music/a.txt")
	assert.Error(t, err)
	_, err = b.Grant("/nope")
	assert.Error(t, err)
}

func TestRevokedHandleIsDenied(t *testing.T) {
	b, _ := newBroker(t)
	g, err := b.Grant("/music")
	require.NoError(t, err)

	require.NoError(t, b.Revoke(g.Handle))
	_, err = b.Resolve(g.Handle)
	assert.ErrorIs(t, err, recording.ErrPermissionDenied)
	_, err = b.ReadDir(g.Handle)
	assert.ErrorIs(t, err, recording.ErrPermissionDenied)

	assert.ErrorIs(t, b.Revoke(g.Handle), recording.ErrPermissionDenied)
}

func TestVanishedFolderIsDenied(t *testing.T) {
	b, fs := newBroker(t)
	g, err := b.Grant("/music")
	require.NoError(t, err)
	require.NoError(t, fs.RemoveAll("/music"))

	_, err = b.Resolve(g.Handle)
	assert.ErrorIs(t, err, recording.ErrPermissionDenied)
}

func TestEntryLifecycle(t *testing.T) {
	b, _ := newBroker(t)
	g, err := b.Grant("/music")
	require.NoError(t, err)

	ref, err := b.CreateFile(g.Handle, "2024-01-01 10-00-00 0.m4a")
	require.NoError(t, err)
	assert.Equal(t, g.Handle+"/2024-01-01%2010-00-00%200.m4a", ref)

	require.NoError(t, b.WriteAll(ref, []byte("audio")))

	entries, err := b.ReadDir(g.Handle)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-01 10-00-00 0.m4a", entries[0].Name)
	assert.Equal(t, int64(5), entries[0].Size)
	assert.Equal(t, ref, entries[0].Ref)

	rc, err := b.Open(ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "audio", string(data))

	ok, err := b.Exists(g.Handle, "2024-01-01 10-00-00 0.m4a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Delete(ref))
	entries, err = b.ReadDir(g.Handle)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSplitEntry(t *testing.T) {
	h, name, err := SplitEntry("content://grants/abc/a%20b.m4a")
	require.NoError(t, err)
	assert.Equal(t, "content://grants/abc", h)
	assert.Equal(t, "a b.m4a", name)

	for _, bad := range []string{"/tmp/a.m4a", "content://grants/abc", "content://grants/abc/", "content://grants/abc/..%2Fx"} {
		_, _, err := SplitEntry(bad)
		assert.Error(t, err, bad)
	}
}
