package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateUsernameRequest is the payload for claiming or changing a handle.
type UpdateUsernameRequest struct {
	Username string `json:"username"`
}

// StoreUser resolves the caller's identity to a user record, creating it on
// first login. The frontend calls this once after authentication completes.
func (s *Server) StoreUser(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetCurrentUser returns the caller's own record, or null for anonymous
// callers. Being signed out is not an error on this route.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	ident := middleware.IdentityFromCtx(c)
	token := ""
	if ident != nil {
		token = ident.TokenIdentifier
	}

	user, err := s.userService.CurrentUser(c.UserContext(), token)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateUsername claims or changes the caller's unique handle.
func (s *Server) UpdateUsername(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	var req UpdateUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	id, err := s.userService.UpdateUsername(c.UserContext(), user.ID, req.Username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":       id,
		"username": req.Username,
	})
}

// GetUserByUsername returns the public profile behind a handle, or null when
// the handle is unclaimed. Profile pages render their own not-found state.
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	profile, err := s.userService.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if profile == nil {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}
