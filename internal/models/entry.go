// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DiaryEntry is the aggregate root of the diary domain. Media filenames and the
// comment tree are stored as JSON document columns on the entry row, so every
// write persists the whole aggregate in one statement.
type DiaryEntry struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Author  string    `gorm:"not null" json:"author"`
	Title   string    `gorm:"not null" json:"title"`
	Content string    `gorm:"type:text;not null" json:"content"`
	Date    time.Time `gorm:"index" json:"date"`
	// Media holds filenames in display order; duplicates are kept as supplied.
	Media []string `gorm:"serializer:json" json:"media"`
	Likes int      `gorm:"not null;default:0" json:"likes"`
	// Comments are owned exclusively by the entry, insertion order preserved.
	Comments  []Comment `gorm:"serializer:json" json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a child of a DiaryEntry. Its ID is unique within the parent
// entry's comment collection.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// Reply is a child of a Comment. Replies cannot themselves be replied to.
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize replaces nil child collections with empty ones so JSON responses
// always render arrays. Rows written before a column existed deserialize to nil.
func (e *DiaryEntry) Normalize() {
	if e.Media == nil {
		e.Media = []string{}
	}
	if e.Comments == nil {
		e.Comments = []Comment{}
	}
	for i := range e.Comments {
		if e.Comments[i].Replies == nil {
			e.Comments[i].Replies = []Reply{}
		}
	}
}

// FindComment returns a pointer to the comment with the given id, or nil.
// Linear scan; comment collections are small.
func (e *DiaryEntry) FindComment(commentID string) *Comment {
	for i := range e.Comments {
		if e.Comments[i].ID == commentID {
			return &e.Comments[i]
		}
	}
	return nil
}
