// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByToken(ctx context.Context, tokenIdentifier string) (*models.User, error)
	GetByTokenForUpdate(ctx context.Context, tokenIdentifier string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Patch(ctx context.Context, id uint, fields map[string]interface{}) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate bypasses the cache and locks the user row for the
// duration of the surrounding transaction.
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByToken looks a user up by the identity provider's subject token.
// Returns (nil, nil) when no user has been stored for the token yet.
func (r *userRepository) GetByToken(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	return r.getByToken(r.db.WithContext(ctx), tokenIdentifier)
}

// GetByTokenForUpdate is GetByToken with a row lock, for use inside the
// resolve-or-create transaction so concurrent logins cannot both insert.
func (r *userRepository) GetByTokenForUpdate(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	return r.getByToken(forUpdate(r.db.WithContext(ctx)), tokenIdentifier)
}

func (r *userRepository) getByToken(db *gorm.DB, tokenIdentifier string) (*models.User, error) {
	var user models.User
	if err := db.Where("token_identifier = ?", tokenIdentifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Patch applies a partial column update. Callers supply only the fields that
// changed; the unique index on username turns races into constraint errors.
func (r *userRepository) Patch(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		if isUniqueConstraintError(err) {
			if username, ok := fields["username"].(string); ok {
				return models.NewUsernameTakenError(username)
			}
			return models.NewValidationError("Unique constraint violated")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
