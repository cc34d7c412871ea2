// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostStatus represents the lifecycle state of a post.
type PostStatus string

const (
	// PostStatusDraft indicates an unpublished working copy. An author owns
	// at most one draft at any time.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished indicates a publicly visible post.
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a post in the Inkwell application.
//
// The composite (author_id, status) index backs the "does this author have a
// draft" lookup that the draft state machine performs on every save.
type Post struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	Title   string     `gorm:"not null" json:"title"`
	Content string     `gorm:"type:text;not null" json:"content"`
	Status  PostStatus `gorm:"type:varchar(20);not null;index:idx_posts_author_status" json:"status"`
	// AuthorID is immutable after creation.
	AuthorID      uint       `gorm:"not null;index:idx_posts_author_status" json:"author_id"`
	Author        User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags          []string   `gorm:"serializer:json" json:"tags"`
	Category      string     `json:"category,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	// PublishedAt is set exactly once, on the first transition to
	// published, and never cleared.
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
	ViewCount   int        `gorm:"not null;default:0" json:"view_count"`
	LikeCount   int        `gorm:"not null;default:0" json:"like_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
