package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// Player plays files with ffplay, one process per loaded file.
type Player struct {
	FFplay string
}

func NewPlayer(ffplay string) *Player {
	if ffplay == "" {
		ffplay = "ffplay"
	}
	return &Player{FFplay: ffplay}
}

func (p *Player) CheckFFplay() error {
	if _, err := exec.LookPath(p.FFplay); err != nil {
		return fmt.Errorf("ffplay not found. It ships with ffmpeg")
	}
	return nil
}

// Sound is a loaded file that is playing.
type Sound struct {
	cmd  *exec.Cmd
	done chan error

	mu      sync.Mutex
	stopped bool
}

// Load starts playing path. The sound ends on its own at end of file.
func (p *Player) Load(ctx context.Context, path string) (*Sound, error) {
	if err := p.CheckFFplay(); err != nil {
		return nil, err
	}
	cmd := exec.Command(p.FFplay, "-nodisp", "-autoexit", "-loglevel", "error", path)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffplay: %w", err)
	}

	s := &Sound{cmd: cmd, done: make(chan error, 1)}
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		if s.stopped {
			err = nil
		}
		s.mu.Unlock()
		s.done <- err
		close(s.done)
	}()
	return s, nil
}

// Done yields the playback result once the process exits.
func (s *Sound) Done() <-chan error { return s.done }

// Unload stops playback. It is safe to call after the sound ended.
func (s *Sound) Unload() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	if err := s.cmd.Process.Signal(os.Kill); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
