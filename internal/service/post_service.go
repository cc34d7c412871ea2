package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

type PostService struct {
	db       *gorm.DB
	postRepo repository.PostRepository
}

// SavePostInput carries the full content payload of an editor save. Every
// save ships the whole document; partial edits go through UpdatePost.
type SavePostInput struct {
	Title         string
	Content       string
	Status        models.PostStatus
	Tags          []string
	Category      string
	FeaturedImage string
	ScheduledFor  *time.Time
}

// UpdatePostInput patches an existing post. Nil fields are left untouched.
type UpdatePostInput struct {
	Title         *string
	Content       *string
	Status        *models.PostStatus
	Tags          *[]string
	Category      *string
	FeaturedImage *string
	ScheduledFor  *time.Time
}

func NewPostService(db *gorm.DB, postRepo repository.PostRepository) *PostService {
	return &PostService{db: db, postRepo: postRepo}
}

// SavePost is the editor's single entry point for both autosave and publish.
// An author has at most one live draft: saving with status draft patches the
// existing draft in place (same record ID) or inserts one if none exists.
// Saving with status published consumes the draft, stamping publishedAt, or
// inserts a new published post directly. The draft lookup and the write run
// in one transaction with the draft row locked, so concurrent saves from the
// same author serialize and can never leave two drafts behind.
func (s *PostService) SavePost(ctx context.Context, authorID uint, in SavePostInput) (uint, error) {
	if in.Title == "" {
		return 0, models.NewValidationError("Title is required")
	}
	if in.Content == "" {
		return 0, models.NewValidationError("Content is required")
	}
	if !in.Status.Valid() {
		return 0, models.NewValidationError("Status must be draft or published")
	}

	var postID uint
	effect := "insert"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.postRepo.WithTx(tx)
		now := time.Now().UTC()

		draft, err := repo.GetDraftByAuthorForUpdate(ctx, authorID)
		if err != nil {
			return err
		}

		if draft != nil {
			draft.Title = in.Title
			draft.Content = in.Content
			draft.Status = in.Status
			draft.Tags = in.Tags
			draft.Category = in.Category
			draft.FeaturedImage = in.FeaturedImage
			draft.ScheduledFor = in.ScheduledFor
			if in.Status == models.PostStatusPublished && draft.PublishedAt == nil {
				draft.PublishedAt = &now
			}
			if err := repo.Update(ctx, draft); err != nil {
				return err
			}
			postID = draft.ID
			effect = "patch"
			return nil
		}

		post := &models.Post{
			Title:         in.Title,
			Content:       in.Content,
			Status:        in.Status,
			AuthorID:      authorID,
			Tags:          in.Tags,
			Category:      in.Category,
			FeaturedImage: in.FeaturedImage,
			ScheduledFor:  in.ScheduledFor,
		}
		if in.Status == models.PostStatusPublished {
			post.PublishedAt = &now
		}
		if err := repo.Create(ctx, post); err != nil {
			return err
		}
		postID = post.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	observability.PostSaves.WithLabelValues(string(in.Status), effect).Inc()
	return postID, nil
}

// UpdatePost applies a partial edit to a post the caller owns. Publishing a
// draft through here stamps publishedAt once; re-publishing an already
// published post keeps the original timestamp.
func (s *PostService) UpdatePost(ctx context.Context, callerID, postID uint, in UpdatePostInput) (uint, error) {
	if in.Status != nil && !in.Status.Valid() {
		return 0, models.NewValidationError("Status must be draft or published")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.postRepo.WithTx(tx)

		post, err := repo.GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != callerID {
			return models.NewNotAuthorizedError("Not authorized to update this post")
		}

		if in.Title != nil {
			post.Title = *in.Title
		}
		if in.Content != nil {
			post.Content = *in.Content
		}
		if in.Tags != nil {
			post.Tags = *in.Tags
		}
		if in.Category != nil {
			post.Category = *in.Category
		}
		if in.FeaturedImage != nil {
			post.FeaturedImage = *in.FeaturedImage
		}
		if in.ScheduledFor != nil {
			post.ScheduledFor = in.ScheduledFor
		}
		if in.Status != nil {
			if *in.Status == models.PostStatusPublished && post.PublishedAt == nil {
				now := time.Now().UTC()
				post.PublishedAt = &now
			}
			post.Status = *in.Status
		}

		return repo.Update(ctx, post)
	})
	if err != nil {
		return 0, err
	}
	return postID, nil
}

// GetUserDraft returns the author's current draft, or (nil, nil) when the
// author has none. The editor polls this on load to resume where it left off.
func (s *PostService) GetUserDraft(ctx context.Context, authorID uint) (*models.Post, error) {
	return s.postRepo.GetDraftByAuthor(ctx, authorID)
}

// ListPublished returns the public feed, newest publication first.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListPublished(ctx, limit, offset)
}

// GetPublished returns a single post for public reading and bumps its view
// counter. Drafts are invisible here regardless of who asks.
func (s *PostService) GetPublished(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		return nil, err
	}
	post.ViewCount++
	return post, nil
}

// ListByAuthor returns the author's own posts, drafts included, most
// recently touched first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListByAuthor(ctx, authorID, limit, offset)
}
