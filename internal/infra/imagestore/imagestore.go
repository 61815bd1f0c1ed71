// Package imagestore re-hosts external preview images on local storage so
// persisted previews survive the third-party origin going away.
package imagestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkdeck/internal/observability/metrics"
)

// maxImageSize caps downloaded image bytes. Preview images beyond this are
// rejected rather than stored.
const maxImageSize = 10 * 1024 * 1024 // 10MB

// allowedImageTypes is the content-type allow list for re-hosted images.
var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/avif":    true,
	"image/svg+xml": true,
	"image/x-icon":  true,
}

// FileStore implements preview.ImageStore on the local filesystem.
// Files are hash-addressed (sha256 of content, two-level fan-out), so
// re-uploading the same image is idempotent and storage never duplicates.
type FileStore struct {
	baseDir   string
	publicURL string // URL prefix under which baseDir is served
	client    *http.Client
}

// NewFileStore constructs a filesystem-backed image store.
// publicURL is the external prefix the stored files are served under,
// e.g. "https://cdn.example.com/previews".
func NewFileStore(baseDir, publicURL string) (*FileStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory must be provided")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &FileStore{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Upload downloads the image at sourceImageURL and stores a copy, returning
// the stable public URL of the stored file. This method implements the
// preview.ImageStore interface.
//
// The download enforces a size cap and an image content-type allow list;
// anything else is rejected. linkID only appears in error context, the
// stored path is derived purely from content.
func (s *FileStore) Upload(ctx context.Context, sourceImageURL string, linkID int64) (string, error) {
	publicURL, err := s.upload(ctx, sourceImageURL)
	metrics.RecordImageRehost(err == nil)
	if err != nil {
		return "", fmt.Errorf("re-host image for link %d: %w", linkID, err)
	}
	return publicURL, nil
}

func (s *FileStore) upload(ctx context.Context, sourceImageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceImageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("unsupported image content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image body")
	}
	if int64(len(data)) > maxImageSize {
		return "", fmt.Errorf("image exceeds size limit %d bytes", maxImageSize)
	}

	relative, err := s.save(data, contentType, sourceImageURL)
	if err != nil {
		return "", err
	}

	return s.publicURL + "/" + filepath.ToSlash(relative), nil
}

// save writes the image bytes under a content-addressed path and returns
// the path relative to baseDir. Writing an already-present hash is a no-op.
func (s *FileStore) save(data []byte, contentType, sourceURL string) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	subdir := hash[:2]
	filename := hash[2:]

	ext := pickImageExtension(contentType, sourceURL)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	relative := filepath.Join(subdir, filename+ext)
	fullPath := filepath.Join(s.baseDir, relative)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create image subdir: %w", err)
	}
	if _, err := os.Stat(fullPath); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat image file: %w", err)
		}
		if err := os.WriteFile(fullPath, data, 0o644); err != nil {
			return "", fmt.Errorf("write image file: %w", err)
		}
	}
	return relative, nil
}

// pickImageExtension derives a file extension from the content type, or
// from the source URL when the type yields none.
func pickImageExtension(contentType, sourceURL string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct != "" {
		if exts, err := mime.ExtensionsByType(ct); err == nil {
			for _, ext := range exts {
				if ext != "" {
					return strings.TrimPrefix(ext, ".")
				}
			}
		}
	}
	if idx := strings.Index(sourceURL, "?"); idx >= 0 {
		sourceURL = sourceURL[:idx]
	}
	if dot := strings.LastIndex(sourceURL, "."); dot >= 0 && dot < len(sourceURL)-1 {
		ext := strings.ToLower(sourceURL[dot+1:])
		if len(ext) <= 5 {
			return ext
		}
	}
	return ""
}
