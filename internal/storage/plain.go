package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording"
)

// PlainPathStore keeps artifacts in a directory addressed by path.
type PlainPathStore struct {
	fs  afero.Fs
	dir string
}

func NewPlainPathStore(fs afero.Fs, dir string) *PlainPathStore {
	return &PlainPathStore{fs: fs, dir: dir}
}

func (s *PlainPathStore) Location() recording.SaveLocation {
	return recording.SaveLocation{Kind: recording.Default, Raw: s.dir}
}

func (s *PlainPathStore) Save(ctx context.Context, tmpPath, name string) (recording.Artifact, error) {
	dst := filepath.Join(s.dir, name)
	if err := s.copy(tmpPath, dst); err != nil {
		return recording.Artifact{}, recording.Wrap("save", dst, recording.ErrSave, err)
	}
	info, err := s.fs.Stat(dst)
	if err != nil {
		return recording.Artifact{}, recording.Wrap("save", dst, recording.ErrSave, err)
	}
	return recording.Artifact{Name: name, Ref: dst, SizeBytes: info.Size(), CreatedAt: info.ModTime()}, nil
}

func (s *PlainPathStore) copy(src, dst string) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	in, err := s.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (s *PlainPathStore) List(ctx context.Context) ([]recording.Artifact, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []recording.Artifact{}, nil
		}
		return nil, recording.Wrap("list", s.dir, recording.ErrList, err)
	}

	arts := make([]recording.Artifact, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || !recording.IsArtifactName(fi.Name()) {
			continue
		}
		arts = append(arts, recording.Artifact{
			Name:      fi.Name(),
			Ref:       filepath.Join(s.dir, fi.Name()),
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}
	SortNewestFirst(arts)
	return arts, nil
}

func (s *PlainPathStore) Delete(ctx context.Context, ref string) error {
	if err := s.owns(ref); err != nil {
		return recording.Wrap("delete", ref, recording.ErrNotFound, err)
	}
	return deleteError(ref, s.fs.Remove(ref))
}

func (s *PlainPathStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := s.owns(ref); err != nil {
		return nil, err
	}
	return s.fs.Open(ref)
}

func (s *PlainPathStore) Exists(ctx context.Context, name string) (bool, error) {
	return afero.Exists(s.fs, filepath.Join(s.dir, name))
}

func (s *PlainPathStore) WriteLock(ctx context.Context, name string) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	ref := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, ref, nil, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *PlainPathStore) RemoveLock(ctx context.Context, ref string) error {
	if !strings.HasSuffix(ref, recording.LockSuffix) {
		return fmt.Errorf("not a lock marker: %s", ref)
	}
	return s.fs.Remove(ref)
}

func (s *PlainPathStore) owns(ref string) error {
	if filepath.Dir(ref) != filepath.Clean(s.dir) {
		return fmt.Errorf("%s is outside %s", ref, s.dir)
	}
	return nil
}
