// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a user in the Inkwell application. Users are created on
// first sight of an external identity token and never deleted by the core.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// TokenIdentifier is the stable subject token issued by the external
	// identity provider. Immutable after creation.
	TokenIdentifier string `gorm:"uniqueIndex;not null" json:"-"`
	Name            string `gorm:"not null" json:"name"`
	Email           string `json:"-"`
	AvatarURL       string `json:"avatar_url"`
	// Username is optional until the user claims one; a pointer so that the
	// unique index tolerates any number of unset rows.
	Username     *string   `gorm:"uniqueIndex" json:"username,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// PublicUser is the projection of a User exposed on public profile reads.
// It never carries the identity token or email.
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Username  *string   `json:"username,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the non-sensitive projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}
