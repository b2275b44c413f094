package server

import (
	"lovediary/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikeEntry handles POST /api/diary/:id/like.
func (s *Server) LikeEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.Like(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"likes": likes})
}

// DislikeEntry handles POST /api/diary/:id/dislike. The counter never goes
// below zero.
func (s *Server) DislikeEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	likes, err := s.engagementService.Dislike(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"likes": likes})
}

// commentRequest is the JSON body shared by comment and reply endpoints.
type commentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// AddComment handles POST /api/diary/:id/comment.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.engagementService.AddComment(c.Context(), id, req.Author, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// AddReply handles POST /api/diary/:id/comment/:commentId/reply.
func (s *Server) AddReply(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseCommentID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.engagementService.AddReply(c.Context(), id, commentID, req.Author, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reply)
}

// EditComment handles PUT /api/diary/:id/comment/:commentId. Only non-empty
// fields are applied; replies are untouched.
func (s *Server) EditComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseCommentID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.engagementService.EditComment(c.Context(), id, commentID, req.Author, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/diary/:id/comment/:commentId. The comment
// and all of its replies are removed.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseCommentID(c)
	if err != nil {
		return nil
	}

	if err := s.engagementService.DeleteComment(c.Context(), id, commentID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
