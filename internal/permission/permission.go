// Package permission records whether the user allowed microphone access.
package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
)

const microphoneKey = "permission.microphone"

const granted = "granted"

// Prompt asks on the terminal the first time and remembers a yes. A no is
// not remembered, so the next recording asks again.
type Prompt struct {
	KV        *kv.Store
	In        io.Reader
	Out       io.Writer
	AssumeYes bool

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan string
}

func (p *Prompt) Granted() bool {
	v, _, err := p.KV.Get(microphoneKey)
	return err == nil && v == granted
}

func (p *Prompt) RequestMicrophone(ctx context.Context) (bool, error) {
	if p.Granted() {
		return true, nil
	}
	if !p.AssumeYes {
		ok, err := p.ask(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	if err := p.KV.Set(microphoneKey, granted); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Prompt) ask(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.Out, "🎙️  rec needs access to the microphone. Allow? [y/N] ")

	// A read abandoned by a cancelled ask stays blocked on In. The next ask
	// takes over its answer instead of starting a second reader.
	if p.pending == nil {
		if p.reader == nil {
			p.reader = bufio.NewReader(p.In)
		}
		answer := make(chan string, 1)
		go func() {
			line, _ := p.reader.ReadString('\n')
			answer <- line
		}()
		p.pending = answer
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return false, ctx.Err()
	case line := <-p.pending:
		p.pending = nil
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// Revoke forgets a previous grant.
func (p *Prompt) Revoke() error {
	return p.KV.Delete(microphoneKey)
}
