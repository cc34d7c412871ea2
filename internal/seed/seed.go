package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers int
	NumPosts int
}

// Seeder populates the database with a believable publishing community.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll wipes seedable tables in dependency order.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{&models.Follow{}, &models.Post{}, &models.User{}} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, spreads published posts across them, gives a third of
// them a working draft, and wires a follow mesh.
func (s *Seeder) Run(opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 100
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		if _, err := s.factory.CreatePublishedPost(author); err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
	}

	for i, user := range users {
		if i%3 != 0 {
			continue
		}
		if _, err := s.factory.CreateDraft(user); err != nil {
			return fmt.Errorf("seeding draft: %w", err)
		}
	}

	// Each user follows a handful of others.
	for _, follower := range users {
		for i := 0; i < s.factory.rng.Intn(5)+1; i++ {
			target := users[s.factory.rng.Intn(len(users))]
			if err := s.factory.CreateFollow(follower, target); err != nil {
				return fmt.Errorf("seeding follow: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d posts", len(users), opts.NumPosts)
	return nil
}
