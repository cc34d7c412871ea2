// Package service contains the business logic of the application. Services
// own transaction boundaries; repositories stay single-statement.
package service

import (
	"context"
	"regexp"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// usernamePattern admits letters, digits, underscores, and hyphens.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
)

type UserService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

// IdentityInput carries the verified claims of an external identity token.
type IdentityInput struct {
	TokenIdentifier string
	Name            string
	Email           string
	AvatarURL       string
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository) *UserService {
	return &UserService{db: db, userRepo: userRepo}
}

// ResolveOrCreate maps a verified identity onto a local user record,
// creating the record on first sight. Repeated calls with the same token
// return the same user; a changed display name is picked up on the next
// call. The lookup and insert run in one transaction so concurrent first
// logins cannot both insert.
func (s *UserService) ResolveOrCreate(ctx context.Context, in IdentityInput) (*models.User, error) {
	if in.TokenIdentifier == "" {
		return nil, models.NewUnauthenticatedError("Called ResolveOrCreate without an identity")
	}

	var resolved *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		now := time.Now().UTC()

		user, err := repo.GetByTokenForUpdate(ctx, in.TokenIdentifier)
		if err != nil {
			return err
		}

		if user != nil {
			fields := map[string]interface{}{"last_active_at": now}
			if in.Name != "" && in.Name != user.Name {
				fields["name"] = in.Name
				user.Name = in.Name
			}
			if err := repo.Patch(ctx, user.ID, fields); err != nil {
				return err
			}
			user.LastActiveAt = now
			resolved = user
			return nil
		}

		name := in.Name
		if name == "" {
			name = "Anonymous"
		}
		user = &models.User{
			TokenIdentifier: in.TokenIdentifier,
			Name:            name,
			Email:           in.Email,
			AvatarURL:       in.AvatarURL,
			LastActiveAt:    now,
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		resolved = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// CurrentUser returns the user for the given identity token, or (nil, nil)
// when the token is empty or no user has been stored for it yet. Callers
// treat nil as "not signed in" rather than an error.
func (s *UserService) CurrentUser(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	if tokenIdentifier == "" {
		return nil, nil
	}
	return s.userRepo.GetByToken(ctx, tokenIdentifier)
}

// UpdateUsername claims or changes the caller's unique handle. Validation
// rejects bad characters before bad length so the caller always sees the
// most specific error. Re-submitting the current handle is a no-op apart
// from the activity timestamp.
func (s *UserService) UpdateUsername(ctx context.Context, userID uint, username string) (uint, error) {
	if !usernamePattern.MatchString(username) {
		return 0, models.NewInvalidFormatError("Username can only contain letters, numbers, underscores, and hyphens")
	}
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return 0, models.NewInvalidFormatError("Username must be between 3 and 20 characters")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		now := time.Now().UTC()

		user, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if user.Username != nil && *user.Username == username {
			return repo.Patch(ctx, user.ID, map[string]interface{}{"last_active_at": now})
		}

		holder, err := repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if holder != nil && holder.ID != user.ID {
			return models.NewUsernameTakenError(username)
		}

		// The unique index on username is the second line of defense; Patch
		// maps a violation back to the same taken error.
		return repo.Patch(ctx, user.ID, map[string]interface{}{
			"username":       username,
			"last_active_at": now,
		})
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// GetByUsername resolves a handle to a public profile. Unknown handles and
// the empty string yield (nil, nil), never an error, so profile pages can
// render a not-found state without special-casing.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.PublicUser, error) {
	if username == "" {
		return nil, nil
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	public := user.Public()
	return &public, nil
}
