package recording

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 2, 999, time.Local)
	assert.Equal(t, "2024-03-09 07-05-02 0.m4a", ArtifactName(ts, 0))
	assert.Equal(t, "2024-03-09 07-05-02 3.m4a", ArtifactName(ts, 3))
}

func TestNextArtifactNameSkipsTakenNames(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 2, 0, time.Local)
	taken := map[string]bool{
		ArtifactName(ts, 0): true,
		ArtifactName(ts, 1): true,
	}
	name, err := NextArtifactName(ts, func(n string) (bool, error) { return taken[n], nil })
	require.NoError(t, err)
	assert.Equal(t, ArtifactName(ts, 2), name)
}

func TestNextArtifactNamePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NextArtifactName(time.Now(), func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestParseTime(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 58, 0, time.Local)

	got, ok := ParseTime(ArtifactName(ts, 0))
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	got, ok = ParseTime("2023-12-31 23-59-58.m4a")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	got, ok = ParseTime("2023-12-31 23-59-58 3.M4A")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))

	for _, bad := range []string{"voice memo.m4a", "2023-12-31.m4a", "2023-12-31 23-59-58 x.m4a", ""} {
		_, ok := ParseTime(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsArtifactName(t *testing.T) {
	assert.True(t, IsArtifactName("2024-01-01 00-00-00 0.m4a"))
	assert.True(t, IsArtifactName("LOUD.M4A"))
	assert.False(t, IsArtifactName("recording-1234.lock"))
	assert.False(t, IsArtifactName("a.m4a.lock"))
	assert.False(t, IsArtifactName("notes.txt"))
}

func TestClassify(t *testing.T) {
	loc := Classify("", "/data/rec")
	assert.Equal(t, SaveLocation{Kind: Default, Raw: "/data/rec"}, loc)

	loc = Classify("/mnt/usb", "/data/rec")
	assert.False(t, loc.IsScoped())
	assert.Equal(t, "/mnt/usb", loc.Raw)

	loc = Classify("content://grants/abc", "/data/rec")
	assert.True(t, loc.IsScoped())
}

func TestLockName(t *testing.T) {
	assert.Equal(t, "recording-0123abcd.lock", LockName("0123abcd-ffff-4444"))
	assert.Equal(t, "recording-ab.lock", LockName("ab"))
}

func TestOpErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap("save", "/x.m4a", ErrSave, cause)
	assert.ErrorIs(t, err, ErrSave)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrList)
	assert.Equal(t, "save /x.m4a: save failed: disk full", err.Error())
	assert.NoError(t, Wrap("save", "", ErrSave, nil))
}
