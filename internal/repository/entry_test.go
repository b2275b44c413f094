package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"lovediary/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) EntryRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiaryEntry{}))
	return NewEntryRepository(db)
}

func newEntry(title string, date time.Time) *models.DiaryEntry {
	return &models.DiaryEntry{
		Author:  "kim",
		Title:   title,
		Content: "content of " + title,
		Date:    date,
	}
}

func TestEntryRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := newEntry("first", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	entry.Media = []string{"a.png", "b.png"}
	entry.Comments = []models.Comment{{
		ID: "c-1", Author: "lee", Content: "hi",
		CreatedAt: time.Now().UTC(),
		Replies:   []models.Reply{{ID: "r-1", Author: "kim", Content: "hey"}},
	}}

	require.NoError(t, repo.Create(ctx, entry))
	require.NotZero(t, entry.ID)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, []string{"a.png", "b.png"}, got.Media)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "c-1", got.Comments[0].ID)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "r-1", got.Comments[0].Replies[0].ID)
}

func TestEntryRepositoryGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 12345)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestEntryRepositoryListDateDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(ctx, newEntry(
			"entry", base.Add(time.Duration(i)*24*time.Hour))))
	}

	page1, total, err := repo.List(ctx, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, page1, 5)
	for i := 1; i < len(page1); i++ {
		assert.False(t, page1[i].Date.After(page1[i-1].Date), "dates must be descending")
	}

	page3, _, err := repo.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Len(t, page3, 2)

	page4, _, err := repo.List(ctx, 5, 15)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestEntryRepositoryUpdatePersistsWholeAggregate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := newEntry("before", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, entry))

	entry.Title = "after"
	entry.Likes = 3
	entry.Comments = append(entry.Comments, models.Comment{ID: "c-9", Author: "lee", Content: "new"})
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, 3, got.Likes)
	require.Len(t, got.Comments, 1)
}

func TestEntryRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := newEntry("doomed", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, entry))
	require.NoError(t, repo.Delete(ctx, entry.ID))

	_, err := repo.GetByID(ctx, entry.ID)
	require.Error(t, err)

	// Deleting again reports NotFound, not success.
	err = repo.Delete(ctx, entry.ID)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

// sqlmock covers the failure translation the sqlite-backed tests cannot reach.
func newMockRepo(t *testing.T) (EntryRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewEntryRepository(db), mock
}

func TestEntryRepositoryTranslatesDriverErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "diary_entries"`).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetByID(context.Background(), 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeInternal, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepositoryCountFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "diary_entries"`).
		WillReturnError(errors.New("connection refused"))

	_, _, err := repo.List(context.Background(), 10, 0)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeInternal, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
