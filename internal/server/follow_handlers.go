package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleFollow flips the caller's follow edge toward the target user and
// returns the resulting state.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.followService.ToggleFollow(c.UserContext(), user.ID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": following})
}

// GetMyFollowers lists everyone following the caller with reciprocity and
// publishing activity per follower.
func (s *Server) GetMyFollowers(c *fiber.Ctx) error {
	user, err := s.requireUser(c)
	if err != nil {
		return nil
	}

	followers, err := s.followService.GetMyFollowers(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(followers)
}

// GetFollowCounts returns follower/following totals for a profile header.
func (s *Server) GetFollowCounts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followers, following, err := s.followService.FollowCounts(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"followers": followers,
		"following": following,
	})
}
