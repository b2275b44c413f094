// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"lovediary/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumEntries  int
	MaxComments int
	MaxReplies  int
	// MaxDays spreads entry dates over the given number of past days.
	MaxDays     int
	ShouldClean bool
}

// Seed populates the database with demo diary entries.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumEntries <= 0 {
		opts.NumEntries = 25
	}
	if opts.MaxComments <= 0 {
		opts.MaxComments = 4
	}
	if opts.MaxReplies <= 0 {
		opts.MaxReplies = 2
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 365
	}

	log.Printf("Seeding %d diary entries...", opts.NumEntries)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("Warning: could not clear existing data, continuing anyway: %v", err)
		}
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	entries := make([]*models.DiaryEntry, 0, opts.NumEntries)
	for i := 0; i < opts.NumEntries; i++ {
		entries = append(entries, buildEntry(r, opts))
	}

	if err := db.CreateInBatches(entries, 50).Error; err != nil {
		return fmt.Errorf("failed to create entries: %w", err)
	}

	log.Printf("Seeded %d entries", len(entries))
	return nil
}

func buildEntry(r *rand.Rand, opts Options) *models.DiaryEntry {
	date := time.Now().
		Add(-time.Duration(r.Intn(opts.MaxDays)) * 24 * time.Hour).
		Add(-time.Duration(r.Intn(24)) * time.Hour)

	entry := &models.DiaryEntry{
		Author:   gofakeit.FirstName(),
		Title:    gofakeit.Sentence(4),
		Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
		Date:     date,
		Media:    []string{},
		Likes:    r.Intn(30),
		Comments: buildComments(r, date, opts),
	}
	return entry
}

func buildComments(r *rand.Rand, after time.Time, opts Options) []models.Comment {
	comments := make([]models.Comment, 0, opts.MaxComments)
	for i := 0; i < r.Intn(opts.MaxComments+1); i++ {
		createdAt := after.Add(time.Duration(1+r.Intn(72)) * time.Hour)
		comment := models.Comment{
			ID:        uuid.NewString(),
			Author:    gofakeit.FirstName(),
			Content:   gofakeit.Sentence(8),
			CreatedAt: createdAt,
			Replies:   []models.Reply{},
		}
		for j := 0; j < r.Intn(opts.MaxReplies+1); j++ {
			comment.Replies = append(comment.Replies, models.Reply{
				ID:        uuid.NewString(),
				Author:    gofakeit.FirstName(),
				Content:   gofakeit.Sentence(6),
				CreatedAt: createdAt.Add(time.Duration(1+r.Intn(24)) * time.Hour),
			})
		}
		comments = append(comments, comment)
	}
	return comments
}

func clearData(db *gorm.DB) error {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.DiaryEntry{}).Error
}
