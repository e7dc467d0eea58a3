package recording

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const nameLayout = "2006-01-02 15-04-05"

// ArtifactName formats "YYYY-MM-DD HH-MM-SS N.m4a". n disambiguates
// recordings finished within the same second.
func ArtifactName(t time.Time, n int) string {
	return fmt.Sprintf("%s %d%s", t.Format(nameLayout), n, Extension)
}

// NextArtifactName returns the first name for t whose disambiguator does not
// collide according to exists.
func NextArtifactName(t time.Time, exists func(name string) (bool, error)) (string, error) {
	for n := 0; ; n++ {
		name := ArtifactName(t, n)
		taken, err := exists(name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
}

// ParseTime extracts the timestamp encoded in an artifact name. It accepts
// names with or without the disambiguator.
func ParseTime(name string) (time.Time, bool) {
	base := name
	if n := len(name) - len(Extension); n >= 0 && strings.EqualFold(name[n:], Extension) {
		base = name[:n]
	}
	if len(base) < len(nameLayout) {
		return time.Time{}, false
	}
	rest := strings.TrimSpace(base[len(nameLayout):])
	if rest != "" {
		if _, err := strconv.Atoi(rest); err != nil {
			return time.Time{}, false
		}
	}
	t, err := time.ParseInLocation(nameLayout, base[:len(nameLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LockName is the marker file name for a session.
func LockName(sessionID string) string {
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	return "recording-" + sessionID + LockSuffix
}
