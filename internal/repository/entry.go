// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"lovediary/internal/cache"
	"lovediary/internal/models"

	"gorm.io/gorm"
)

// EntryRepository defines the interface for diary entry data operations.
// Nested comment and reply mutation goes through the aggregate: load the
// entry, mutate its comment tree in memory, then Update persists the whole
// document.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.DiaryEntry) error
	GetByID(ctx context.Context, id uint) (*models.DiaryEntry, error)
	// List returns entries sorted by date descending plus the total count.
	List(ctx context.Context, limit, offset int) ([]*models.DiaryEntry, int64, error)
	Update(ctx context.Context, entry *models.DiaryEntry) error
	Delete(ctx context.Context, id uint) error
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository.
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *models.DiaryEntry) error {
	entry.Normalize()
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translateError(err, entry.ID)
	}
	return nil
}

func (r *entryRepository) GetByID(ctx context.Context, id uint) (*models.DiaryEntry, error) {
	var entry models.DiaryEntry
	err := cache.Aside(ctx, cache.EntryKey(id), &entry, cache.EntryTTL, func() error {
		return r.db.WithContext(ctx).First(&entry, id).Error
	})
	if err != nil {
		return nil, translateError(err, id)
	}
	entry.Normalize()
	return &entry, nil
}

func (r *entryRepository) List(ctx context.Context, limit, offset int) ([]*models.DiaryEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.DiaryEntry{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var entries []*models.DiaryEntry
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	for _, entry := range entries {
		entry.Normalize()
	}
	return entries, total, nil
}

func (r *entryRepository) Update(ctx context.Context, entry *models.DiaryEntry) error {
	entry.Normalize()
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return translateError(err, entry.ID)
	}
	cache.InvalidateEntry(ctx, entry.ID)
	return nil
}

func (r *entryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.DiaryEntry{}, id)
	if result.Error != nil {
		return translateError(result.Error, id)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Entry", id)
	}
	cache.InvalidateEntry(ctx, id)
	return nil
}

// translateError converts GORM errors into the application error taxonomy.
func translateError(err error, id uint) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Entry", id)
	}
	if errors.Is(err, gorm.ErrInvalidData) || errors.Is(err, gorm.ErrInvalidValue) {
		return models.NewValidationError("Invalid entry data")
	}
	return models.NewInternalError(err)
}
