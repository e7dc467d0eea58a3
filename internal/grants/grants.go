// Package grants hands out scoped-directory handles. A handle is an opaque
// content:// URI standing for a folder the user explicitly granted; all
// access to that folder goes through the Broker, which refuses handles that
// were revoked or whose folder disappeared.
package grants

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
)

const (
	handlePrefix = recording.ScopedScheme + "grants/"
	keyPrefix    = "grant."
)

// Grant is a folder the user allowed access to.
type Grant struct {
	Handle    string
	Dir       string
	GrantedAt time.Time
}

// Entry is a file inside a granted folder.
type Entry struct {
	Name string
	Ref  string
	Size int64
}

type Broker struct {
	kv  *kv.Store
	fs  afero.Fs
	now func() time.Time
}

func NewBroker(store *kv.Store, fs afero.Fs) *Broker {
	return &Broker{kv: store, fs: fs, now: time.Now}
}

// Grant registers dir and returns its handle.
func (b *Broker) Grant(dir string) (Grant, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Grant{}, err
	}
	info, err := b.fs.Stat(abs)
	if err != nil {
		return Grant{}, fmt.Errorf("granting %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Grant{}, fmt.Errorf("granting %s: not a directory", abs)
	}

	g := Grant{
		Handle:    handlePrefix + uuid.NewString(),
		Dir:       abs,
		GrantedAt: b.now().UTC().Truncate(time.Second),
	}
	if err := b.kv.Set(keyPrefix+idOf(g.Handle), g.GrantedAt.Format(time.RFC3339)+"|"+g.Dir); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (b *Broker) Revoke(handle string) error {
	if _, err := b.lookup(handle); err != nil {
		return err
	}
	return b.kv.Delete(keyPrefix + idOf(handle))
}

func (b *Broker) List() ([]Grant, error) {
	keys, err := b.kv.Keys(keyPrefix)
	if err != nil {
		return nil, err
	}
	var out []Grant
	for _, k := range keys {
		g, err := b.lookup(handlePrefix + strings.TrimPrefix(k, keyPrefix))
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}

// Resolve returns the folder behind handle, or ErrPermissionDenied when the
// grant is gone or the folder is no longer reachable.
func (b *Broker) Resolve(handle string) (string, error) {
	g, err := b.lookup(handle)
	if err != nil {
		return "", err
	}
	info, err := b.fs.Stat(g.Dir)
	if err != nil || !info.IsDir() {
		return "", recording.Wrap("resolve", handle, recording.ErrPermissionDenied, fmt.Errorf("folder %s is not accessible", g.Dir))
	}
	return g.Dir, nil
}

func (b *Broker) lookup(handle string) (Grant, error) {
	if !strings.HasPrefix(handle, handlePrefix) || idOf(handle) == "" {
		return Grant{}, recording.Wrap("resolve", handle, recording.ErrPermissionDenied, errors.New("not a grant handle"))
	}
	v, ok, err := b.kv.Get(keyPrefix + idOf(handle))
	if err != nil {
		return Grant{}, err
	}
	if !ok {
		return Grant{}, recording.Wrap("resolve", handle, recording.ErrPermissionDenied, errors.New("grant revoked"))
	}
	at, dir, found := strings.Cut(v, "|")
	if !found {
		return Grant{}, fmt.Errorf("corrupt grant %s", handle)
	}
	grantedAt, _ := time.Parse(time.RFC3339, at)
	return Grant{Handle: handle, Dir: dir, GrantedAt: grantedAt}, nil
}

func idOf(handle string) string {
	return strings.TrimPrefix(handle, handlePrefix)
}

// EntryRef builds the reference of name inside the granted folder.
func EntryRef(handle, name string) string {
	return handle + "/" + url.PathEscape(name)
}

// SplitEntry is the inverse of EntryRef.
func SplitEntry(ref string) (handle, name string, err error) {
	if !strings.HasPrefix(ref, handlePrefix) {
		return "", "", fmt.Errorf("not a scoped entry: %s", ref)
	}
	id, escaped, ok := strings.Cut(strings.TrimPrefix(ref, handlePrefix), "/")
	if !ok || escaped == "" {
		return "", "", fmt.Errorf("not a scoped entry: %s", ref)
	}
	name, err = url.PathUnescape(escaped)
	if err != nil {
		return "", "", fmt.Errorf("bad entry name in %s: %w", ref, err)
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", "", fmt.Errorf("bad entry name in %s", ref)
	}
	return handlePrefix + id, name, nil
}

// Path returns the file behind an entry reference while its grant is held.
func (b *Broker) Path(ref string) (string, error) {
	return b.entryPath(ref)
}

func (b *Broker) entryPath(ref string) (string, error) {
	handle, name, err := SplitEntry(ref)
	if err != nil {
		return "", err
	}
	dir, err := b.Resolve(handle)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// CreateFile creates an empty entry named name and returns its reference.
// An existing entry with the same name is truncated.
func (b *Broker) CreateFile(handle, name string) (string, error) {
	dir, err := b.Resolve(handle)
	if err != nil {
		return "", err
	}
	f, err := b.fs.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return EntryRef(handle, name), nil
}

// WriteAll replaces the contents of an existing entry.
func (b *Broker) WriteAll(ref string, data []byte) error {
	path, err := b.entryPath(ref)
	if err != nil {
		return err
	}
	f, err := b.fs.OpenFile(path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (b *Broker) Open(ref string) (io.ReadCloser, error) {
	path, err := b.entryPath(ref)
	if err != nil {
		return nil, err
	}
	return b.fs.Open(path)
}

func (b *Broker) Delete(ref string) error {
	path, err := b.entryPath(ref)
	if err != nil {
		return err
	}
	return b.fs.Remove(path)
}

func (b *Broker) Exists(handle, name string) (bool, error) {
	dir, err := b.Resolve(handle)
	if err != nil {
		return false, err
	}
	return afero.Exists(b.fs, filepath.Join(dir, name))
}

// ReadDir lists the regular files in the granted folder.
func (b *Broker) ReadDir(handle string) ([]Entry, error) {
	dir, err := b.Resolve(handle)
	if err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		entries = append(entries, Entry{Name: fi.Name(), Ref: EntryRef(handle, fi.Name()), Size: fi.Size()})
	}
	return entries, nil
}
