package imagestore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linkdeck/internal/infra/imagestore"
)

// pngBytes is a minimal valid-enough payload; the store is content
// agnostic and trusts the response content type.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestFileStore_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	dir := t.TempDir()
	store, err := imagestore.NewFileStore(dir, "https://cdn.example.com/previews/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := store.Upload(context.Background(), server.URL+"/hero.png", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(url, "https://cdn.example.com/previews/") {
		t.Errorf("expected public URL prefix, got %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("expected .png extension, got %s", url)
	}

	// The stored file must exist under the hash-addressed path.
	relative := strings.TrimPrefix(url, "https://cdn.example.com/previews/")
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(relative))); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestFileStore_UploadIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	store, err := imagestore.NewFileStore(t.TempDir(), "https://cdn.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := store.Upload(context.Background(), server.URL+"/a.png", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Upload(context.Background(), server.URL+"/b.png", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same bytes, same hash, same stored URL.
	if first != second {
		t.Errorf("expected identical content to share a URL, got %s and %s", first, second)
	}
}

func TestFileStore_RejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	store, err := imagestore.NewFileStore(t.TempDir(), "https://cdn.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Upload(context.Background(), server.URL+"/page", 1); err == nil {
		t.Error("expected error for non-image content type")
	}
}

func TestFileStore_RejectsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store, err := imagestore.NewFileStore(t.TempDir(), "https://cdn.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Upload(context.Background(), server.URL+"/gone.png", 1); err == nil {
		t.Error("expected error for upstream 404")
	}
}

func TestNewFileStore_RequiresBaseDir(t *testing.T) {
	if _, err := imagestore.NewFileStore("  ", "https://cdn.example.com"); err == nil {
		t.Error("expected error for blank base directory")
	}
}
