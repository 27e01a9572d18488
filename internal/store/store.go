package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"doorbell/internal/errs"
	"doorbell/internal/lib/sl"
	"doorbell/internal/parse"
)

// Store defines read access to the directory the sensor loop publishes into.
type Store interface {
	List(ctx context.Context) ([]Clip, error)
	Open(name string) (http.File, error)
	Stat(name string) (fs.FileInfo, error)
}

// dirStore implements Store over a plain directory.
type dirStore struct {
	dir string
	fs  http.Dir
	loc *time.Location
	log *slog.Logger
}

// NewDirStore creates a Store reading from dir. Clip names are interpreted
// in local time, matching how the sensor loop names them.
func NewDirStore(dir string, log *slog.Logger) Store {
	return &dirStore{dir: dir, fs: http.Dir(dir), loc: time.Local, log: log}
}

// List returns every entry in the directory, unfiltered, in the order the
// directory is enumerated. A directory that does not exist yet is empty.
func (s *dirStore) List(ctx context.Context) ([]Clip, error) {
	const op = "store.List"

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Clip{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read video directory %s: %w", s.dir, err)
	}

	clips := make([]Clip, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clip := Clip{Name: entry.Name(), IsDir: entry.IsDir()}
		if info, err := entry.Info(); err == nil {
			clip.Size = info.Size()
			clip.ModTime = info.ModTime()
		} else {
			// Removed between ReadDir and Info; still listed by name.
			s.log.Warn("could not stat video entry",
				slog.String("op", op), slog.String("name", entry.Name()), sl.Err(err))
		}
		if parsed, err := parse.ParseClipName(entry.Name(), s.loc); err == nil {
			recordedAt := parsed.RecordedAt
			clip.RecordedAt = &recordedAt
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

// Open returns the named regular file, or errs.ErrClipNotFound.
func (s *dirStore) Open(name string) (http.File, error) {
	f, err := s.fs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrClipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, errs.ErrClipNotFound
	}
	return f, nil
}

// Stat describes the named regular file, or returns errs.ErrClipNotFound.
func (s *dirStore) Stat(name string) (fs.FileInfo, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}
