package files

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestSaveOpenDelete(t *testing.T) {
	s := New(afero.NewMemMapFs(), "uploads")

	url, err := s.Save("../../etc/my report.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, "-my_report.pdf") {
		t.Errorf("unexpected url %q", url)
	}

	f, err := s.Open(url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}

	if err := s.Delete(url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(url); err == nil {
		t.Error("expected file to be gone")
	}
	if err := s.Delete(url); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if err := s.Delete("https://elsewhere/x.pdf"); err != nil {
		t.Errorf("foreign url Delete: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"notes.txt", "notes.txt"},
		{"a b/c d.png", "c_d.png"},
		{"..", "file"},
		{"", "file"},
		{"résumé.doc", "r_sum_.doc"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandlerServesFiles(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/uploads/")
	url, err := s.Save("a.txt", strings.NewReader("served"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	srv := http.StripPrefix("/uploads", s.Handler())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "served" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandlerRefusesListings(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := New(fsys, "/uploads/")
	if _, err := s.Save("a.txt", strings.NewReader("secret")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fsys.MkdirAll("/nested", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	srv := http.StripPrefix("/uploads", s.Handler())

	for _, path := range []string{"/uploads/", "/uploads/nested", "/uploads/nested/", "/uploads/missing.txt"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if strings.Contains(rec.Body.String(), "a.txt") {
				t.Errorf("response lists stored files: %q", rec.Body.String())
			}
		})
	}
}
