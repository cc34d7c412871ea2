package server

import (
	"io"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage proxies a multipart image upload to the media store and
// returns the hosted file's metadata. Credentials stay server-side.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unreadable file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unreadable file"))
	}

	result, err := s.uploadService.Upload(c.UserContext(), service.UploadInput{
		UserID:   user.ID,
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
