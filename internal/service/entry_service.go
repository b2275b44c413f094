// Package service contains the application's business logic.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lovediary/internal/media"
	"lovediary/internal/models"
	"lovediary/internal/observability"
	"lovediary/internal/repository"
)

// DefaultPageSize is used when a listing request does not specify a limit.
const DefaultPageSize = 10

// EntryService orchestrates diary entry writes against both the repository
// and the media store so that neither orphaned files nor dangling filename
// references survive a failed operation.
type EntryService struct {
	repo  repository.EntryRepository
	store *media.Store
}

// NewEntryService creates a new entry service.
func NewEntryService(repo repository.EntryRepository, store *media.Store) *EntryService {
	return &EntryService{repo: repo, store: store}
}

// CreateEntryInput carries the fields of a new diary entry.
type CreateEntryInput struct {
	Author  string
	Title   string
	Content string
	// Date defaults to the creation time when nil.
	Date    *time.Time
	Uploads []media.Upload
}

// UpdateEntryInput carries a partial update. Empty text fields keep their
// previous values. MediaToKeep lists the current filenames to retain, in the
// order the caller wants them displayed; an empty list keeps nothing.
type UpdateEntryInput struct {
	ID          uint
	Title       string
	Content     string
	Date        *time.Time
	MediaToKeep []string
	Uploads     []media.Upload
}

// EntryPage is one page of a date-descending entry listing.
type EntryPage struct {
	Entries    []*models.DiaryEntry `json:"entries"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int64                `json:"totalPages"`
}

// Create stores every uploaded blob, then persists the entry referencing the
// generated filenames. If persistence fails, every file stored in this call
// is deleted before the error is returned.
func (s *EntryService) Create(ctx context.Context, in CreateEntryInput) (*models.DiaryEntry, error) {
	if strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Author, title, and content are required")
	}

	stored, err := s.storeUploads(in.Uploads)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if in.Date != nil {
		date = *in.Date
	}

	entry := &models.DiaryEntry{
		Author:   in.Author,
		Title:    in.Title,
		Content:  in.Content,
		Date:     date,
		Media:    stored,
		Likes:    0,
		Comments: []models.Comment{},
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.store.Delete(stored)
		return nil, err
	}
	observability.EntriesCreated.Inc()
	return entry, nil
}

// Update applies partial fields and recomputes the entry's media set:
// finalMedia = kept (caller order) ++ newly stored. Files dropped from the
// entry are deleted only after a successful persist; files stored by this
// call are deleted when the persist fails.
func (s *EntryService) Update(ctx context.Context, in UpdateEntryInput) (*models.DiaryEntry, error) {
	entry, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	current := entry.Media
	kept := intersect(in.MediaToKeep, current)

	newNames, err := s.storeUploads(in.Uploads)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		entry.Title = in.Title
	}
	if in.Content != "" {
		entry.Content = in.Content
	}
	if in.Date != nil {
		entry.Date = *in.Date
	}
	entry.Media = append(append([]string{}, kept...), newNames...)

	if err := s.repo.Update(ctx, entry); err != nil {
		// Retained files stay put: the stored entry still references them.
		s.store.Delete(newNames)
		return nil, err
	}

	s.store.Delete(difference(current, kept))
	return entry, nil
}

// Delete removes all media referenced by the entry, then the record itself.
// A missing entry fails NotFound without touching the store.
func (s *EntryService) Delete(ctx context.Context, id uint) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if len(entry.Media) > 0 {
		s.store.Delete(entry.Media)
	}
	return s.repo.Delete(ctx, id)
}

// Get fetches one entry by id.
func (s *EntryService) Get(ctx context.Context, id uint) (*models.DiaryEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one 1-indexed page of entries sorted by date descending.
// Out-of-range pages yield an empty page, not an error.
func (s *EntryService) List(ctx context.Context, page, limit int) (*EntryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	entries, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.DiaryEntry{}
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	return &EntryPage{
		Entries:    entries,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// storeUploads writes each blob to the media store and returns the generated
// filenames. On any failure the files already stored by this call are removed.
func (s *EntryService) storeUploads(uploads []media.Upload) ([]string, error) {
	if len(uploads) > media.MaxFilesPerUpload {
		return nil, models.NewMediaRejectedError(
			fmt.Sprintf("Too many files (max %d per request)", media.MaxFilesPerUpload))
	}

	stored := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name, err := s.store.Save(up)
		if err != nil {
			s.store.Delete(stored)
			return nil, err
		}
		stored = append(stored, name)
	}
	return stored, nil
}

// intersect returns the requested names that actually exist in current,
// preserving the requested order.
func intersect(requested, current []string) []string {
	currentSet := make(map[string]struct{}, len(current))
	for _, name := range current {
		currentSet[name] = struct{}{}
	}
	kept := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, ok := currentSet[name]; ok {
			kept = append(kept, name)
		}
	}
	return kept
}

// difference returns the names in all that are absent from keep.
func difference(all, keep []string) []string {
	keepSet := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		keepSet[name] = struct{}{}
	}
	var out []string
	for _, name := range all {
		if _, ok := keepSet[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
