package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

type FollowService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

// FollowerProjection is one entry of the caller's follower list, enriched
// with reciprocity and publishing activity.
type FollowerProjection struct {
	User          models.PublicUser `json:"user"`
	FollowedAt    time.Time         `json:"followed_at"`
	FollowsBack   bool              `json:"follows_back"`
	PostCount     int64             `json:"post_count"`
	LatestPostAt  *time.Time        `json:"latest_post_at,omitempty"`
	FollowerCount int64             `json:"follower_count"`
}

func NewFollowService(db *gorm.DB, userRepo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository) *FollowService {
	return &FollowService{db: db, userRepo: userRepo, followRepo: followRepo, postRepo: postRepo}
}

// ToggleFollow flips the caller's follow edge toward the target and returns
// the resulting state: true when the edge now exists. The existence check
// and the write run in one transaction with the edge row locked, so two
// concurrent toggles net out to a single flip rather than a double insert.
func (s *FollowService) ToggleFollow(ctx context.Context, callerID, targetID uint) (bool, error) {
	if callerID == targetID {
		return false, models.NewInvalidOperationError("You cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	var following bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.followRepo.WithTx(tx)

		edge, err := repo.GetForUpdate(ctx, callerID, targetID)
		if err != nil {
			return err
		}

		if edge != nil {
			following = false
			return repo.Delete(ctx, callerID, targetID)
		}

		following = true
		return repo.Create(ctx, &models.Follow{
			FollowerID:  callerID,
			FollowingID: targetID,
		})
	})
	if err != nil {
		return false, err
	}

	result := "unfollowed"
	if following {
		result = "followed"
	}
	observability.FollowToggles.WithLabelValues(result).Inc()
	return following, nil
}

// GetMyFollowers lists everyone following the caller, newest edge first.
// All reads share one transaction so the reciprocity flags and post counts
// describe a single point in time.
func (s *FollowService) GetMyFollowers(ctx context.Context, callerID uint) ([]FollowerProjection, error) {
	var projections []FollowerProjection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fRepo := s.followRepo.WithTx(tx)
		pRepo := s.postRepo.WithTx(tx)

		edges, err := fRepo.ListFollowers(ctx, callerID)
		if err != nil {
			return err
		}

		projections = make([]FollowerProjection, 0, len(edges))
		for _, edge := range edges {
			followsBack, err := fRepo.Exists(ctx, callerID, edge.FollowerID)
			if err != nil {
				return err
			}
			postCount, err := pRepo.CountPublishedByAuthor(ctx, edge.FollowerID)
			if err != nil {
				return err
			}
			var latestPostAt *time.Time
			if postCount > 0 {
				latest, err := pRepo.LatestPublishedAt(ctx, edge.FollowerID)
				if err != nil {
					return err
				}
				if latest != nil {
					latestPostAt = latest.PublishedAt
				}
			}
			followerCount, err := fRepo.CountFollowers(ctx, edge.FollowerID)
			if err != nil {
				return err
			}

			projections = append(projections, FollowerProjection{
				User:          edge.Follower.Public(),
				FollowedAt:    edge.CreatedAt,
				FollowsBack:   followsBack,
				PostCount:     postCount,
				LatestPostAt:  latestPostAt,
				FollowerCount: followerCount,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projections, nil
}

// IsFollowing reports whether the caller currently follows the target.
func (s *FollowService) IsFollowing(ctx context.Context, callerID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, callerID, targetID)
}

// FollowCounts returns how many users follow the target and how many the
// target follows, for profile headers.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (followers, following int64, err error) {
	followers, err = s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
