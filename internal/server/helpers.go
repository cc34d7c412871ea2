package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts the named route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten;
// callers should check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// requireUser resolves the request's verified identity to a durable user
// record, creating it on first sight. On failure it writes the error response
// and returns errResponseWritten.
func (s *Server) requireUser(c *fiber.Ctx) (*models.User, error) {
	ident := middleware.IdentityFromCtx(c)
	if ident == nil {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Authorization required"))
		return nil, errResponseWritten
	}

	user, err := s.userService.ResolveOrCreate(c.UserContext(), service.IdentityInput{
		TokenIdentifier: ident.TokenIdentifier,
		Name:            ident.Name,
		Email:           ident.Email,
		AvatarURL:       ident.AvatarURL,
	})
	if err != nil {
		_ = models.RespondWithError(c, models.StatusForError(err), err)
		return nil, errResponseWritten
	}

	middleware.SyncUserID(c, user.ID)
	return user, nil
}

// respondServiceError writes the mapped status for a service-layer error.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// fiberErrorHandler is the app-level fallback for errors handlers did not
// translate themselves.
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	return models.RespondWithError(c, models.StatusForError(err), err)
}
