package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/location"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/storage"
)

const defaultDir = "/data/recordings"

type fakeCapturer struct {
	fs      afero.Fs
	mu      sync.Mutex
	started []string
	stopped []int
	nextPID int
	failing error
	onStart func(path string)
	noFile  bool
}

func (c *fakeCapturer) Start(path string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onStart != nil {
		c.onStart(path)
	}
	if c.failing != nil {
		return 0, c.failing
	}
	if !c.noFile {
		if err := afero.WriteFile(c.fs, path, []byte("captured"), 0o644); err != nil {
			return 0, err
		}
	}
	c.nextPID++
	c.started = append(c.started, path)
	return 1000 + c.nextPID, nil
}

func (c *fakeCapturer) Stop(pid int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = append(c.stopped, pid)
	return nil
}

type fakeGate struct {
	allow bool
	err   error
	asked int
}

func (g *fakeGate) RequestMicrophone(ctx context.Context) (bool, error) {
	g.asked++
	return g.allow, g.err
}

type env struct {
	fs       afero.Fs
	kv       *kv.Store
	broker   *grants.Broker
	resolver *location.Resolver
	capturer *fakeCapturer
	gate     *fakeGate
	sessions *SessionStore
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := kv.Open(fs, "/state/state.toml")
	require.NoError(t, err)
	broker := grants.NewBroker(store, fs)
	return &env{
		fs:     fs,
		kv:     store,
		broker: broker,
		resolver: &location.Resolver{
			Store:  location.NewStore(store, defaultDir),
			Broker: broker,
			Fs:     fs,
		},
		capturer: &fakeCapturer{fs: fs},
		gate:     &fakeGate{allow: true},
		sessions: &SessionStore{Fs: fs, StateDir: "/state"},
		now:      time.Date(2024, 6, 1, 9, 30, 15, 0, time.Local),
	}
}

func (e *env) recorder() *Recorder {
	return &Recorder{
		Capturer:         e.capturer,
		Permissions:      e.gate,
		Locations:        e.resolver,
		Sessions:         e.sessions,
		Fs:               e.fs,
		TempDir:          "/state/tmp",
		ProgressInterval: 5 * time.Millisecond,
		Clock:            func() time.Time { return e.now },
	}
}

func (e *env) router() *storage.Router {
	return &storage.Router{Fs: e.fs, Broker: e.broker}
}

// locks counts lock markers in dir.
func (e *env) locks(t *testing.T, dir string) int {
	t.Helper()
	infos, err := afero.ReadDir(e.fs, dir)
	if errors.Is(err, afero.ErrFileNotFound) {
		return 0
	}
	require.NoError(t, err)
	n := 0
	for _, fi := range infos {
		if strings.HasSuffix(fi.Name(), ".lock") {
			n++
		}
	}
	return n
}
