package server

import (
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SavePostRequest is the editor's save payload. Every save carries the whole
// document; Status decides between keeping a draft and publishing.
type SavePostRequest struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Status        string     `json:"status"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	FeaturedImage string     `json:"featured_image"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
}

// UpdatePostRequest patches a specific post. Absent fields stay untouched.
type UpdatePostRequest struct {
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	Status        *string    `json:"status"`
	Tags          *[]string  `json:"tags"`
	Category      *string    `json:"category"`
	FeaturedImage *string    `json:"featured_image"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
}

// GetUserDraft returns the caller's single working draft, or null when the
// editor should start fresh.
func (s *Server) GetUserDraft(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	draft, err := s.postService.GetUserDraft(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if draft == nil {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// SavePost creates or updates the caller's draft, or publishes it.
func (s *Server) SavePost(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	var req SavePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	id, err := s.postService.SavePost(c.UserContext(), user.ID, service.SavePostInput{
		Title:         req.Title,
		Content:       req.Content,
		Status:        models.PostStatus(req.Status),
		Tags:          req.Tags,
		Category:      req.Category,
		FeaturedImage: req.FeaturedImage,
		ScheduledFor:  req.ScheduledFor,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id})
}

// UpdatePost applies a partial edit to one of the caller's posts.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdatePostInput{
		Title:         req.Title,
		Content:       req.Content,
		Tags:          req.Tags,
		Category:      req.Category,
		FeaturedImage: req.FeaturedImage,
		ScheduledFor:  req.ScheduledFor,
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		in.Status = &status
	}

	id, err := s.postService.UpdatePost(c.UserContext(), user.ID, postID, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id})
}

// GetMyPosts returns the caller's own posts, drafts included.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.ListByAuthor(c.UserContext(), user.ID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPosts returns the public feed, newest publication first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.ListPublished(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPost returns one published post and counts the view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPublished(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}
