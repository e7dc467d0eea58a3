package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/pubsub"
)

// Sound is a loaded, playing file.
type Sound interface {
	Done() <-chan error
	Unload() error
}

// Player loads files for playback.
type Player interface {
	Load(ctx context.Context, path string) (Sound, error)
}

// Loader opens an artifact by reference.
type Loader interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

type PlayOutcome int

const (
	Started PlayOutcome = iota
	Stopped
)

type EventKind int

const (
	Loaded EventKind = iota
	Ended
	Unloaded
	Failed
)

func (k EventKind) String() string {
	return [...]string{"loaded", "ended", "unloaded", "failed"}[k]
}

type PlaybackEvent struct {
	Ref  string
	Kind EventKind
	Err  error
}

// Playback keeps at most one artifact loaded. Playing the loaded artifact
// again stops it.
type Playback struct {
	Player  Player
	Loader  Loader
	Fs      afero.Fs
	TempDir string
	Logger  *zap.Logger

	mu      sync.Mutex
	current *loaded
	events  pubsub.Hub[PlaybackEvent]
}

type loaded struct {
	ref   string
	sound Sound
	tmp   string
}

func (p *Playback) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Playback) Subscribe() (<-chan PlaybackEvent, func()) {
	return p.events.Subscribe(8)
}

// Current returns the loaded artifact reference.
func (p *Playback) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return "", false
	}
	return p.current.ref, true
}

// Play toggles ref: a loaded ref is stopped, anything else replaces what is
// loaded.
func (p *Playback) Play(ctx context.Context, ref string) (PlayOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cur := p.current; cur != nil {
		p.unloadLocked()
		if cur.ref == ref {
			return Stopped, nil
		}
	}

	path, tmp, err := p.materialize(ctx, ref)
	if err != nil {
		p.events.Publish(PlaybackEvent{Ref: ref, Kind: Failed, Err: err})
		return Stopped, recording.Wrap("play", ref, recording.ErrPlayback, err)
	}
	sound, err := p.Player.Load(ctx, path)
	if err != nil {
		p.removeTemp(tmp)
		p.events.Publish(PlaybackEvent{Ref: ref, Kind: Failed, Err: err})
		return Stopped, recording.Wrap("play", ref, recording.ErrPlayback, err)
	}

	cur := &loaded{ref: ref, sound: sound, tmp: tmp}
	p.current = cur
	p.events.Publish(PlaybackEvent{Ref: ref, Kind: Loaded})
	go p.watch(cur)
	return Started, nil
}

// Stop unloads whatever is playing.
func (p *Playback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.unloadLocked()
	}
}

func (p *Playback) watch(cur *loaded) {
	err := <-cur.sound.Done()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != cur {
		return
	}
	p.current = nil
	p.removeTemp(cur.tmp)
	if err != nil {
		p.events.Publish(PlaybackEvent{Ref: cur.ref, Kind: Failed, Err: recording.Wrap("play", cur.ref, recording.ErrPlayback, err)})
		return
	}
	p.events.Publish(PlaybackEvent{Ref: cur.ref, Kind: Ended})
}

func (p *Playback) unloadLocked() {
	cur := p.current
	p.current = nil
	if err := cur.sound.Unload(); err != nil {
		p.logger().Warn("unloading sound", zap.String("ref", cur.ref), zap.Error(err))
	}
	p.removeTemp(cur.tmp)
	p.events.Publish(PlaybackEvent{Ref: cur.ref, Kind: Unloaded})
}

// materialize returns a local path the player can open. Scoped entries are
// copied to a temp file first.
func (p *Playback) materialize(ctx context.Context, ref string) (path, tmp string, err error) {
	if !recording.IsScoped(ref) {
		if _, err := p.Fs.Stat(ref); err != nil {
			return "", "", err
		}
		return ref, "", nil
	}

	src, err := p.Loader.Open(ctx, ref)
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	if err := p.Fs.MkdirAll(p.TempDir, 0o755); err != nil {
		return "", "", err
	}
	tmp = filepath.Join(p.TempDir, "play-"+uuid.NewString()+recording.Extension)
	dst, err := p.Fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return "", "", err
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		p.removeTemp(tmp)
		return "", "", fmt.Errorf("copying %s: %w", ref, err)
	}
	return tmp, tmp, nil
}

func (p *Playback) removeTemp(tmp string) {
	if tmp == "" {
		return
	}
	if err := p.Fs.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger().Warn("removing playback temp file", zap.String("path", tmp), zap.Error(err))
	}
}
