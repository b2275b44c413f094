package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"lovediary/internal/media"
	"lovediary/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// PageQuery holds parsed page/limit query parameters (1-indexed pages).
type PageQuery struct {
	Page  int
	Limit int
}

const maxPageLimit = 100

// parsePageQuery extracts page and limit with defaults 1 and 10.
func parsePageQuery(c *fiber.Ctx) PageQuery {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return PageQuery{Page: page, Limit: limit}
}

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid entry ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseCommentID extracts the :commentId route parameter.
func (s *Server) parseCommentID(c *fiber.Ctx) (string, error) {
	commentID := strings.TrimSpace(c.Params("commentId"))
	if commentID == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid comment ID"))
		return "", errResponseWritten
	}
	return commentID, nil
}

// dateLayouts are the accepted formats for the optional entry date field.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDateField parses the optional date form value. nil means "not supplied".
func parseDateField(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, models.NewValidationError("Invalid date format")
}

// readUploads collects the "media" files from a multipart form. Count and
// per-file size are rejected before any bytes are read so an oversized
// request does not mutate the store at all.
func readUploads(form *multipart.Form) ([]media.Upload, error) {
	files := form.File["media"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > media.MaxFilesPerUpload {
		return nil, models.NewMediaRejectedError("Too many files or file too large")
	}

	uploads := make([]media.Upload, 0, len(files))
	for _, hdr := range files {
		if hdr.Size > media.MaxFileBytes {
			return nil, models.NewMediaRejectedError("Too many files or file too large")
		}
		f, err := hdr.Open()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		content := make([]byte, hdr.Size)
		if _, err := io.ReadFull(f, content); err != nil {
			_ = f.Close()
			return nil, models.NewInternalError(err)
		}
		_ = f.Close()

		uploads = append(uploads, media.Upload{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return uploads, nil
}

// formValue returns the first value of a multipart form field, trimmed.
func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
