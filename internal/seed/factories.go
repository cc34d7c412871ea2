// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, rng: rand.New(rand.NewSource(seed))}
}

var seedTags = []string{
	"writing", "go", "travel", "food", "photography", "music",
	"books", "productivity", "design", "science", "history", "opinion",
}

// CreateUser persists a fake user. Roughly two thirds of seeded users have
// claimed a username, mirroring a real population where some never do.
func (f *Factory) CreateUser() (*models.User, error) {
	name := gofakeit.Name()
	user := &models.User{
		TokenIdentifier: fmt.Sprintf("seed|%s", gofakeit.UUID()),
		Name:            name,
		Email:           gofakeit.Email(),
		AvatarURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		LastActiveAt:    gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
	}

	if f.rng.Intn(3) != 0 {
		username := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
		username = fmt.Sprintf("%s_%d", username, f.rng.Intn(1000))
		if len(username) > 20 {
			username = username[:20]
		}
		user.Username = &username
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePublishedPost persists a published post with a publication time
// spread over the past months so feeds look lived-in.
func (f *Factory) CreatePublishedPost(author *models.User) (*models.Post, error) {
	publishedAt := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
	post := &models.Post{
		Title:       gofakeit.Sentence(f.rng.Intn(6) + 3),
		Content:     gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Status:      models.PostStatusPublished,
		AuthorID:    author.ID,
		Tags:        f.pickTags(),
		Category:    seedTags[f.rng.Intn(len(seedTags))],
		PublishedAt: &publishedAt,
		ViewCount:   f.rng.Intn(500),
		LikeCount:   f.rng.Intn(50),
	}
	if f.rng.Intn(2) == 0 {
		post.FeaturedImage = fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID())
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateDraft persists a working draft for the author. Callers must respect
// the one-draft-per-author rule; the factory does not insert a second one.
func (f *Factory) CreateDraft(author *models.User) (*models.Post, error) {
	var existing int64
	err := f.db.Model(&models.Post{}).
		Where("author_id = ? AND status = ?", author.ID, models.PostStatusDraft).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, nil
	}

	post := &models.Post{
		Title:    gofakeit.Sentence(f.rng.Intn(6) + 3),
		Content:  gofakeit.Paragraph(1, 2, 6, "\n\n"),
		Status:   models.PostStatusDraft,
		AuthorID: author.ID,
		Tags:     f.pickTags(),
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateFollow persists a follow edge, skipping self-follows and duplicates.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if follower.ID == following.ID {
		return nil
	}
	edge := &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
		CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
	}
	err := f.db.Create(edge).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

func (f *Factory) pickTags() []string {
	n := f.rng.Intn(3) + 1
	tags := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(seedTags))[:n] {
		tags = append(tags, seedTags[i])
	}
	return tags
}

func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
