// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge operations
type FollowRepository interface {
	Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	GetForUpdate(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uint) error
	ListFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	WithTx(tx *gorm.DB) FollowRepository
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository {
	return &followRepository{db: tx}
}

// Get returns the directed edge follower->following, or (nil, nil) when absent.
func (r *followRepository) Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return r.get(r.db.WithContext(ctx), followerID, followingID)
}

// GetForUpdate is Get with a row lock, for use inside the toggle transaction.
func (r *followRepository) GetForUpdate(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), followerID, followingID)
}

func (r *followRepository) get(db *gorm.DB, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	if err := db.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Unique pair index absorbs toggle races: the edge already exists.
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListFollowers returns every edge pointing at the user, newest first, with
// the follower record preloaded.
func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Preload("Follower").
		Order("created_at DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
