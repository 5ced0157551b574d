// Package files stores uploaded submission attachments.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store writes uploads to a filesystem and serves them under a URL prefix.
type Store struct {
	fs     afero.Fs
	prefix string
}

// New returns a Store over fsys whose URLs start with urlPrefix.
func New(fsys afero.Fs, urlPrefix string) *Store {
	return &Store{fs: fsys, prefix: "/" + strings.Trim(urlPrefix, "/") + "/"}
}

// NewOS returns a Store rooted at dir on the local disk, creating it if needed.
func NewOS(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), urlPrefix), nil
}

// Save writes r under a unique name derived from name and returns its URL.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	stored := uuid.NewString() + "-" + sanitize(name)
	if err := afero.WriteReader(s.fs, "/"+stored, r); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	slog.Debug("upload saved", "file", stored)
	return s.prefix + stored, nil
}

// Delete removes the file behind url. Unknown URLs and missing files are
// not errors.
func (s *Store) Delete(url string) error {
	name, ok := s.nameOf(url)
	if !ok {
		return nil
	}
	if err := s.fs.Remove("/" + name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// Open opens the file behind url.
func (s *Store) Open(url string) (afero.File, error) {
	name, ok := s.nameOf(url)
	if !ok {
		return nil, fs.ErrNotExist
	}
	return s.fs.Open("/" + name)
}

// Handler serves stored files. Mount it with the URL prefix stripped.
// Only plain files at the root are served; directories answer 404.
func (s *Store) Handler() http.Handler {
	fileServer := http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.ContainsAny(name, `/\`) {
			http.NotFound(w, r)
			return
		}
		info, err := s.fs.Stat("/" + name)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Store) nameOf(url string) (string, bool) {
	if !strings.HasPrefix(url, s.prefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, s.prefix)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

func sanitize(name string) string {
	name = path.Base(filepath.ToSlash(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
