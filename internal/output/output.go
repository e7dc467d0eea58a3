package output

import (
	"fmt"
	"io"
	"time"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(sess *recording.Session, sync bool) {
	fmt.Fprintf(f.w, "🔴 Recording into %s\n", sess.Location.Raw)
	if sync {
		fmt.Fprintf(f.w, "   Press Ctrl+C to stop.\n")
	} else {
		fmt.Fprintf(f.w, "   Run 'rec stop' to finish.\n")
	}
}

// Progress rewrites the current line with the elapsed time.
func (f *Formatter) Progress(elapsed time.Duration) {
	fmt.Fprintf(f.w, "\r⏺️  %s", formatDuration(elapsed))
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	fmt.Fprintf(f.w, "\r⏹️  Recording stopped (%s)\n", formatDuration(duration))
}

func (f *Formatter) RecordingSaved(art recording.Artifact) {
	fmt.Fprintf(f.w, "✅ Saved %s (%s)\n", art.Name, formatSize(art.SizeBytes))
}

func (f *Formatter) RecordingStatus(sess *recording.Session) {
	if sess == nil {
		fmt.Fprintf(f.w, "⏸️  Idle\n")
		return
	}
	fmt.Fprintf(f.w, "🔴 Recording for %s into %s\n", formatDuration(time.Since(sess.StartedAt)), sess.Location.Raw)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) LocationFallback(revoked string, now string) {
	f.Warning(fmt.Sprintf("Access to %s was lost. Saving to %s again.", revoked, now))
}

func (f *Formatter) RecordingListHeader(where string) {
	fmt.Fprintf(f.w, "🎙️  Recordings in %s:\n\n", where)
}

func (f *Formatter) RecordingListItem(art recording.Artifact) {
	fmt.Fprintf(f.w, "  %-28s %9s  %s\n", art.Name, formatSize(art.SizeBytes), art.CreatedAt.Format("2006-01-02 15:04"))
}

func (f *Formatter) Playing(name string) {
	fmt.Fprintf(f.w, "▶️  Playing %s\n", name)
}

func (f *Formatter) PlaybackStopped(name string) {
	fmt.Fprintf(f.w, "⏹️  Stopped %s\n", name)
}

func (f *Formatter) Location(kind, where string) {
	fmt.Fprintf(f.w, "📁 Save location (%s): %s\n", kind, where)
}

func (f *Formatter) GrantListItem(g grants.Grant, active bool) {
	marker := " "
	if active {
		marker = "*"
	}
	fmt.Fprintf(f.w, " %s %s  %s  (granted %s)\n", marker, g.Handle, g.Dir, g.GrantedAt.Local().Format("2006-01-02"))
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
