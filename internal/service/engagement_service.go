package service

import (
	"context"
	"strings"
	"time"

	"lovediary/internal/models"
	"lovediary/internal/repository"

	"github.com/google/uuid"
)

// EngagementService handles like counters and the comment/reply tree of a
// single entry. All mutation goes through the aggregate's load-mutate-persist
// cycle; last write wins at the document level.
type EngagementService struct {
	repo repository.EntryRepository
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(repo repository.EntryRepository) *EngagementService {
	return &EngagementService{repo: repo}
}

// Like increments the entry's like counter and returns the new count.
func (s *EngagementService) Like(ctx context.Context, entryID uint) (int, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return 0, err
	}
	entry.Likes++
	if err := s.repo.Update(ctx, entry); err != nil {
		return 0, err
	}
	return entry.Likes, nil
}

// Dislike decrements the entry's like counter, floored at zero.
func (s *EngagementService) Dislike(ctx context.Context, entryID uint) (int, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return 0, err
	}
	if entry.Likes > 0 {
		entry.Likes--
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return 0, err
	}
	return entry.Likes, nil
}

// AddComment appends a new comment with a server-assigned id and timestamp.
func (s *EngagementService) AddComment(ctx context.Context, entryID uint, author, content string) (*models.Comment, error) {
	author, content, err := requireAuthorContent(author, content)
	if err != nil {
		return nil, err
	}

	entry, getErr := s.repo.GetByID(ctx, entryID)
	if getErr != nil {
		return nil, getErr
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		CreatedAt: time.Now(),
		Replies:   []models.Reply{},
	}
	entry.Comments = append(entry.Comments, comment)

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return &comment, nil
}

// AddReply appends a new reply to the targeted comment.
func (s *EngagementService) AddReply(ctx context.Context, entryID uint, commentID, author, content string) (*models.Reply, error) {
	author, content, err := requireAuthorContent(author, content)
	if err != nil {
		return nil, err
	}

	entry, getErr := s.repo.GetByID(ctx, entryID)
	if getErr != nil {
		return nil, getErr
	}
	comment := entry.FindComment(commentID)
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	reply := models.Reply{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		CreatedAt: time.Now(),
	}
	comment.Replies = append(comment.Replies, reply)

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return &reply, nil
}

// EditComment updates whichever of author/content is non-empty after
// trimming; the other field and the replies are left untouched.
func (s *EngagementService) EditComment(ctx context.Context, entryID uint, commentID, author, content string) (*models.Comment, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	comment := entry.FindComment(commentID)
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	if trimmed := strings.TrimSpace(author); trimmed != "" {
		comment.Author = trimmed
	}
	if trimmed := strings.TrimSpace(content); trimmed != "" {
		comment.Content = trimmed
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	result := *comment
	return &result, nil
}

// DeleteComment removes the comment and all its replies from the entry.
// Sibling comments keep their ids.
func (s *EngagementService) DeleteComment(ctx context.Context, entryID uint, commentID string) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	idx := -1
	for i := range entry.Comments {
		if entry.Comments[i].ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.NewNotFoundError("Comment", commentID)
	}

	entry.Comments = append(entry.Comments[:idx], entry.Comments[idx+1:]...)
	return s.repo.Update(ctx, entry)
}

// requireAuthorContent trims both fields and rejects empty values.
func requireAuthorContent(author, content string) (string, string, error) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" || content == "" {
		return "", "", models.NewValidationError("Author and content must not be empty")
	}
	return author, content, nil
}
