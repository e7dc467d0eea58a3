package recording

import (
	"strings"
	"time"
)

const (
	// Extension identifies recording artifacts.
	Extension = ".m4a"
	// LockSuffix marks an in-progress recording; such files are never listed.
	LockSuffix = ".lock"
	// ScopedScheme prefixes handles that must go through the grant broker.
	ScopedScheme = "content://"
)

// Artifact is a persisted recording.
type Artifact struct {
	Name      string    `json:"name"`
	Ref       string    `json:"ref"` // filesystem path or scoped entry URI
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationKind tells which storage mechanism a SaveLocation needs.
type LocationKind int

const (
	Default LocationKind = iota
	ScopedDirectory
)

func (k LocationKind) String() string {
	if k == ScopedDirectory {
		return "scoped"
	}
	return "default"
}

// SaveLocation is where new recordings are written. Raw is a directory path
// for Default and an opaque grant handle for ScopedDirectory.
type SaveLocation struct {
	Kind LocationKind `json:"kind"`
	Raw  string       `json:"raw"`
}

// Classify turns a persisted identifier into a SaveLocation. An empty value
// means the default private directory.
func Classify(raw, defaultDir string) SaveLocation {
	if raw == "" {
		return SaveLocation{Kind: Default, Raw: defaultDir}
	}
	if IsScoped(raw) {
		return SaveLocation{Kind: ScopedDirectory, Raw: raw}
	}
	return SaveLocation{Kind: Default, Raw: raw}
}

func (l SaveLocation) IsScoped() bool { return l.Kind == ScopedDirectory }

func (l SaveLocation) String() string { return l.Raw }

// IsScoped reports whether ref is a permission-scoped URI.
func IsScoped(ref string) bool {
	return strings.HasPrefix(ref, ScopedScheme)
}

// IsArtifactName reports whether a directory entry should show up in listings.
func IsArtifactName(name string) bool {
	if strings.HasSuffix(name, LockSuffix) {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), Extension)
}

// Session is the persisted state of an in-progress recording.
type Session struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"started_at"`
	TempPath  string       `json:"temp_path"`
	LockRef   string       `json:"lock_ref"`
	LockPath  string       `json:"lock_path,omitempty"` // on-disk marker, kept for after a grant is revoked
	Location  SaveLocation `json:"location"`
	PID       int          `json:"pid"`
}
