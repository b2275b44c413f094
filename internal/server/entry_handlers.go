package server

import (
	"lovediary/internal/models"
	"lovediary/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetEntries handles GET /api/diary?page&limit.
func (s *Server) GetEntries(c *fiber.Ctx) error {
	page := parsePageQuery(c)

	result, err := s.entryService.List(c.Context(), page.Page, page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}

// GetEntry handles GET /api/diary/:id.
func (s *Server) GetEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	entry, err := s.entryService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(entry)
}

// CreateEntry handles POST /api/diary (multipart form with optional media).
func (s *Server) CreateEntry(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	date, err := parseDateField(formValue(form, "date"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	uploads, err := readUploads(form)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	entry, err := s.entryService.Create(c.Context(), service.CreateEntryInput{
		Author:  formValue(form, "author"),
		Title:   formValue(form, "title"),
		Content: formValue(form, "content"),
		Date:    date,
		Uploads: uploads,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateEntry handles PUT /api/diary/:id (multipart form).
// Omitting mediaToKeep keeps nothing: existing media not listed is deleted.
func (s *Server) UpdateEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	date, err := parseDateField(formValue(form, "date"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	uploads, err := readUploads(form)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	entry, err := s.entryService.Update(c.Context(), service.UpdateEntryInput{
		ID:          id,
		Title:       formValue(form, "title"),
		Content:     formValue(form, "content"),
		Date:        date,
		MediaToKeep: form.Value["mediaToKeep"],
		Uploads:     uploads,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(entry)
}

// DeleteEntry handles DELETE /api/diary/:id.
func (s *Server) DeleteEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.entryService.Delete(c.Context(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Entry deleted"})
}
