// Package media implements filesystem-backed blob storage for uploaded
// images and videos referenced from diary entries by filename.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lovediary/internal/models"
	"lovediary/internal/observability"

	"github.com/google/uuid"
)

const (
	// MaxFileBytes is the per-file upload cap (10 MiB).
	MaxFileBytes = 10 * 1024 * 1024
	// MaxFilesPerUpload is the per-request upload cap.
	MaxFilesPerUpload = 10
)

// allowedMimeTypes is the fixed allow-list of accepted upload types.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
	"video/mov":       {},
}

// Upload is a single uploaded blob as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Store persists uploaded blobs under a single directory and hands out the
// generated filenames used to reference them.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the upload directory if needed and returns a Store over it.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("media: upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory blobs are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and writes one blob, returning the generated filename.
// Names are collision-resistant: millisecond timestamp, random suffix, and a
// sanitized extension taken from the original name.
func (s *Store) Save(up Upload) (string, error) {
	if len(up.Content) == 0 {
		return "", models.NewMediaRejectedError("No file content uploaded")
	}
	if int64(len(up.Content)) > MaxFileBytes {
		return "", models.NewMediaRejectedError(
			fmt.Sprintf("File too large (max %dMB)", MaxFileBytes/(1024*1024)))
	}
	if !isAllowedMimeType(up.ContentType) {
		return "", models.NewMediaRejectedError("Only image or video uploads are allowed")
	}

	name := fmt.Sprintf("%d-%s%s",
		time.Now().UnixMilli(),
		uuid.New().String()[:8],
		safeExt(up.Filename),
	)

	if err := os.WriteFile(filepath.Join(s.dir, name), up.Content, 0o600); err != nil {
		return "", models.NewInternalError(fmt.Errorf("media: write %s: %w", name, err))
	}
	observability.MediaFilesStored.Inc()
	observability.MediaBytesStored.Add(float64(len(up.Content)))
	return name, nil
}

// Delete removes each named file best-effort. A file that is already gone is
// not an error; any other failure is logged and the batch continues.
func (s *Store) Delete(filenames []string) {
	for _, name := range filenames {
		// Stored names never contain separators, but never trust the caller.
		base := filepath.Base(name)
		if base != name || base == "." || base == ".." {
			s.logger.Warn("media delete skipped suspicious filename", slog.String("filename", name))
			continue
		}
		err := os.Remove(filepath.Join(s.dir, base))
		switch {
		case err == nil:
			observability.MediaFilesDeleted.Inc()
		case !errors.Is(err, fs.ErrNotExist):
			s.logger.Error("media delete failed",
				slog.String("filename", base),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Exists reports whether the named blob is present in the store.
func (s *Store) Exists(name string) bool {
	base := filepath.Base(name)
	if base != name {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, base))
	return err == nil
}

func isAllowedMimeType(contentType string) bool {
	normalized := contentType
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		normalized = mediaType
	}
	normalized = strings.ToLower(strings.TrimSpace(normalized))
	_, ok := allowedMimeTypes[normalized]
	return ok
}

// safeExt extracts a filesystem-safe extension from the client filename.
// Anything but a short lowercase alphanumeric suffix is dropped so a crafted
// filename can never steer the stored path.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 9 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
