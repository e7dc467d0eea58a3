package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/location"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/pubsub"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/storage"
)

// Capturer runs the microphone capture. Start returns a process id that
// Stop accepts, possibly from another process.
type Capturer interface {
	Start(outputPath string) (int, error)
	Stop(pid int) error
}

// PermissionGate asks for microphone access.
type PermissionGate interface {
	RequestMicrophone(ctx context.Context) (bool, error)
}

// State of the recorder.
type State int

const (
	Idle State = iota
	RequestingPermission
	Recording
	Saving
)

func (s State) String() string {
	switch s {
	case RequestingPermission:
		return "requesting permission"
	case Recording:
		return "recording"
	case Saving:
		return "saving"
	default:
		return "idle"
	}
}

// Progress is emitted periodically while recording.
type Progress struct {
	SessionID string
	Elapsed   time.Duration
}

// Recorder drives a recording session from permission request to saved
// artifact. Only one session exists at a time.
type Recorder struct {
	Capturer         Capturer
	Permissions      PermissionGate
	Locations        *location.Resolver
	Sessions         *SessionStore
	Fs               afero.Fs
	TempDir          string
	ProgressInterval time.Duration
	Logger           *zap.Logger
	Clock            func() time.Time

	mu       sync.Mutex
	state    State
	progress pubsub.Hub[Progress]
	ticker   chan struct{}
}

func (r *Recorder) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func (r *Recorder) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// State reports the in-process state, or Recording when another process
// left an active session behind.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Idle && r.Sessions.Active() {
		return Recording
	}
	return r.state
}

// Active returns the persisted session, if any.
func (r *Recorder) Active() (*recording.Session, error) {
	return r.Sessions.Load()
}

// Subscribe delivers progress events until the subscription is cancelled.
func (r *Recorder) Subscribe() (<-chan Progress, func()) {
	return r.progress.Subscribe(1)
}

// Start asks for microphone permission, writes the lock marker into the
// resolved location and begins capture. Any failure before capture is
// running removes the marker again.
func (r *Recorder) Start(ctx context.Context) (*recording.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle || r.Sessions.Active() {
		return nil, recording.ErrBusy
	}

	r.state = RequestingPermission
	granted, err := r.Permissions.RequestMicrophone(ctx)
	if err != nil || !granted {
		r.state = Idle
		if err == nil {
			err = errors.New("microphone access refused")
		}
		return nil, recording.Wrap("record", "", recording.ErrPermissionDenied, err)
	}

	loc := r.Locations.Resolve()
	backend := r.Locations.Open(loc)
	id := uuid.NewString()

	lockRef, err := backend.WriteLock(ctx, recording.LockName(id))
	if err != nil {
		r.state = Idle
		return nil, fmt.Errorf("writing lock marker in %s: %w", loc, err)
	}
	fail := func(err error) (*recording.Session, error) {
		if rerr := backend.RemoveLock(ctx, lockRef); rerr != nil {
			r.logger().Warn("removing lock marker", zap.String("ref", lockRef), zap.Error(rerr))
		}
		r.state = Idle
		return nil, err
	}

	if err := r.Fs.MkdirAll(r.TempDir, 0o755); err != nil {
		return fail(fmt.Errorf("creating temp directory: %w", err))
	}
	tmpPath := filepath.Join(r.TempDir, "capture-"+id+recording.Extension)

	pid, err := r.Capturer.Start(tmpPath)
	if err != nil {
		return fail(fmt.Errorf("starting recording: %w", err))
	}

	sess := &recording.Session{
		ID:        id,
		StartedAt: r.now(),
		TempPath:  tmpPath,
		LockRef:   lockRef,
		LockPath:  r.lockPath(lockRef),
		Location:  backend.Location(),
		PID:       pid,
	}
	if err := r.Sessions.Save(sess); err != nil {
		_ = r.Capturer.Stop(pid)
		_ = r.Fs.Remove(tmpPath)
		return fail(fmt.Errorf("saving recording state: %w", err))
	}

	r.state = Recording
	r.startTicker(sess)
	r.logger().Info("recording started",
		zap.String("session", id), zap.String("location", loc.Raw), zap.Int("pid", pid))
	return sess, nil
}

func (r *Recorder) startTicker(sess *recording.Session) {
	interval := r.ProgressInterval
	if interval <= 0 {
		interval = time.Second
	}
	stop := make(chan struct{})
	r.ticker = stop
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				r.progress.Publish(Progress{SessionID: sess.ID, Elapsed: r.now().Sub(sess.StartedAt)})
			}
		}
	}()
}

func (r *Recorder) stopTicker() {
	if r.ticker != nil {
		close(r.ticker)
		r.ticker = nil
	}
}

// Stop ends capture and saves the artifact into the location the session
// started in. The lock marker is removed and the recorder returns to Idle
// whether or not the save succeeded.
func (r *Recorder) Stop(ctx context.Context) (recording.Artifact, *recording.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Saving {
		return recording.Artifact{}, nil, recording.ErrBusy
	}
	sess, err := r.Sessions.Load()
	if err != nil {
		if !errors.Is(err, recording.ErrNotRecording) {
			r.logger().Warn("loading recording state", zap.Error(err))
		}
		return recording.Artifact{}, nil, err
	}

	r.state = Saving
	r.stopTicker()
	defer func() {
		r.Sessions.Clear()
		r.state = Idle
	}()

	if err := r.Capturer.Stop(sess.PID); err != nil {
		// The process may have died; whatever reached the file is kept.
		r.logger().Warn("stopping capture", zap.Int("pid", sess.PID), zap.Error(err))
	}

	backend := r.Locations.Open(sess.Location)
	art, saveErr := r.save(ctx, sess, backend)

	r.removeLock(ctx, sess, backend)

	if saveErr != nil {
		r.logger().Error("saving recording", zap.String("session", sess.ID), zap.String("capture", sess.TempPath), zap.Error(saveErr))
		return recording.Artifact{}, sess, saveErr
	}
	_ = r.Fs.Remove(sess.TempPath)
	_ = r.Fs.Remove(sess.TempPath + ".ffmpeg.log")
	r.logger().Info("recording saved", zap.String("session", sess.ID), zap.String("ref", art.Ref), zap.Int64("bytes", art.SizeBytes))
	return art, sess, nil
}

func (r *Recorder) lockPath(ref string) string {
	if !recording.IsScoped(ref) {
		return ref
	}
	path, err := r.Locations.Broker.Path(ref)
	if err != nil {
		return ""
	}
	return path
}

// removeLock goes through the backend first. A scoped grant revoked while
// recording refuses that, so the path captured at start is removed instead.
func (r *Recorder) removeLock(ctx context.Context, sess *recording.Session, backend storage.Backend) {
	err := backend.RemoveLock(ctx, sess.LockRef)
	if err == nil {
		return
	}
	if sess.LockPath != "" && strings.HasSuffix(sess.LockPath, recording.LockSuffix) {
		rerr := r.Fs.Remove(sess.LockPath)
		if rerr == nil || errors.Is(rerr, os.ErrNotExist) {
			return
		}
		err = errors.Join(err, rerr)
	}
	r.logger().Warn("removing lock marker", zap.String("ref", sess.LockRef), zap.Error(err))
}

func (r *Recorder) save(ctx context.Context, sess *recording.Session, backend storage.Backend) (recording.Artifact, error) {
	name, err := recording.NextArtifactName(r.now(), func(n string) (bool, error) {
		return backend.Exists(ctx, n)
	})
	if err != nil {
		return recording.Artifact{}, recording.Wrap("save", sess.TempPath, recording.ErrSave, err)
	}
	return backend.Save(ctx, sess.TempPath, name)
}
