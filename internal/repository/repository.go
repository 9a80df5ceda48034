package repository

import (
	"context"
	"database/sql"

	"storyhouse/internal/dbx"
	"storyhouse/internal/models"
)

type UserRepo interface {
	Create(ctx context.Context, u *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int) error
}

type StoryRepo interface {
	Create(ctx context.Context, s *models.Story) (int, error)
	GetByID(ctx context.Context, id int) (*models.Story, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Story, error)
	// SlugExists reports whether slug is used by any story other than excludeID.
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	Update(ctx context.Context, s *models.Story) error
	Delete(ctx context.Context, id int) error
	ListPublished(ctx context.Context, limit int) ([]models.Story, error)
	ListByAuthor(ctx context.Context, userID int) ([]models.Story, error)
	ListPublishedByAuthor(ctx context.Context, userID int) ([]models.Story, error)
}

// Stores is a set of repositories sharing one database handle.
type Stores struct {
	Users   UserRepo
	Stories StoryRepo
}

// Transactor runs fn with repositories bound to a single transaction.
type Transactor interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type Repository struct {
	Stores
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Stores: newStores(db),
		db:     db,
	}
}

// Ensure implementation of Transactor interface at compile time.
var _ Transactor = (*Repository)(nil)

// Atomic commits everything fn did through s, or nothing if fn fails.
func (r *Repository) Atomic(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newStores(tx))
	})
}

func newStores(db dbx.DBTX) Stores {
	return Stores{
		Users:   NewUserSQLite(db),
		Stories: NewStorySQLite(db),
	}
}
