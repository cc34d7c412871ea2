// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Post, error)
	GetDraftByAuthor(ctx context.Context, authorID uint) (*models.Post, error)
	GetDraftByAuthorForUpdate(ctx context.Context, authorID uint) (*models.Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	CountPublishedByAuthor(ctx context.Context, authorID uint) (int64, error)
	LatestPublishedAt(ctx context.Context, authorID uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Patch(ctx context.Context, id uint, fields map[string]interface{}) error
	IncrementViewCount(ctx context.Context, id uint) error
	WithTx(tx *gorm.DB) PostRepository
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate is GetByID with a row lock, for use inside the
// update-post transaction.
func (r *postRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Post, error) {
	return r.getByID(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *postRepository) getByID(db *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetDraftByAuthor returns the author's single live draft, or (nil, nil)
// when the author has none.
func (r *postRepository) GetDraftByAuthor(ctx context.Context, authorID uint) (*models.Post, error) {
	return r.getDraftByAuthor(r.db.WithContext(ctx), authorID)
}

// GetDraftByAuthorForUpdate locks the draft row for the duration of the
// surrounding transaction. The save state machine calls this before deciding
// insert-vs-patch so concurrent saves from the same author serialize.
func (r *postRepository) GetDraftByAuthorForUpdate(ctx context.Context, authorID uint) (*models.Post, error) {
	return r.getDraftByAuthor(forUpdate(r.db.WithContext(ctx)), authorID)
}

func (r *postRepository) getDraftByAuthor(db *gorm.DB, authorID uint) (*models.Post, error) {
	var post models.Post
	if err := db.Where("author_id = ? AND status = ?", authorID, models.PostStatusDraft).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("status = ?", models.PostStatusPublished).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountPublishedByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND status = ?", authorID, models.PostStatusPublished).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// LatestPublishedAt returns the author's most recently published post, or
// (nil, nil) when the author has published nothing.
func (r *postRepository) LatestPublishedAt(ctx context.Context, authorID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND status = ?", authorID, models.PostStatusPublished).
		Order("published_at DESC").
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Patch applies a partial column update. Omitted columns are left untouched.
func (r *postRepository) Patch(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
