package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storyhouse/internal/dbx"
	"storyhouse/internal/models"
)

type StorySQLite struct {
	db dbx.DBTX
}

func NewStorySQLite(db dbx.DBTX) *StorySQLite { return &StorySQLite{db: db} }

// Ensure implementation of StoryRepo interface at compile time.
var _ StoryRepo = (*StorySQLite)(nil)

const (
	// storyColumns is the SELECT list shared by every story query; the author
	// username is joined in for display.
	storyColumns = `s.id, s.title, s.subtitle, s.content, s.slug, s.published,
		s.created_at, s.updated_at, s.user_id, u.username`

	storyFrom = ` FROM stories s JOIN users u ON u.id = s.user_id`

	insertStorySQL = `
		INSERT INTO stories (title, subtitle, content, slug, published, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	updateStorySQL = `
		UPDATE stories
		SET title = ?, subtitle = ?, content = ?, slug = ?, published = ?, updated_at = ?
		WHERE id = ?
	`

	deleteStorySQL = `DELETE FROM stories WHERE id = ?`

	selectStoryByIDSQL         = `SELECT ` + storyColumns + storyFrom + ` WHERE s.id = ?`
	selectPublishedBySlugSQL   = `SELECT ` + storyColumns + storyFrom + ` WHERE s.slug = ? AND s.published = 1`
	selectSlugExistsSQL        = `SELECT EXISTS (SELECT 1 FROM stories WHERE slug = ? AND id <> ?)`
	selectPublishedSQL         = `SELECT ` + storyColumns + storyFrom + ` WHERE s.published = 1 ORDER BY s.created_at DESC, s.id DESC LIMIT ?`
	selectByAuthorSQL          = `SELECT ` + storyColumns + storyFrom + ` WHERE s.user_id = ? ORDER BY s.updated_at DESC, s.id DESC`
	selectPublishedByAuthorSQL = `SELECT ` + storyColumns + storyFrom + ` WHERE s.user_id = ? AND s.published = 1 ORDER BY s.created_at DESC, s.id DESC`
)

// Create inserts a story and returns its ID. Timestamps are set when zero.
func (r *StorySQLite) Create(ctx context.Context, s *models.Story) (int, error) {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, insertStorySQL,
		s.Title,
		s.Subtitle,
		s.Content,
		s.Slug,
		s.Published,
		s.CreatedAt.UTC(),
		s.UpdatedAt.UTC(),
		s.UserID,
	)
	if err != nil {
		if uniqueColumn(err) == "stories.slug" {
			return 0, ErrSlugTaken
		}
		return 0, fmt.Errorf("insert story %q: %w", s.Slug, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for story %q: %w", s.Slug, err)
	}
	s.ID = int(lastID)
	return s.ID, nil
}

// GetByID fetches a story regardless of its published flag.
func (r *StorySQLite) GetByID(ctx context.Context, id int) (*models.Story, error) {
	st, err := scanStory(r.db.QueryRowContext(ctx, selectStoryByIDSQL, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("select story %d: %w", id, err)
	}
	return st, nil
}

// GetPublishedBySlug fetches a published story; drafts are reported as ErrNotFound.
func (r *StorySQLite) GetPublishedBySlug(ctx context.Context, slug string) (*models.Story, error) {
	st, err := scanStory(r.db.QueryRowContext(ctx, selectPublishedBySlugSQL, slug))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("select story %q: %w", slug, err)
	}
	return st, nil
}

func (r *StorySQLite) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, selectSlugExistsSQL, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// Update overwrites the editable fields and always refreshes UpdatedAt.
func (r *StorySQLite) Update(ctx context.Context, s *models.Story) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, updateStorySQL,
		s.Title,
		s.Subtitle,
		s.Content,
		s.Slug,
		s.Published,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if uniqueColumn(err) == "stories.slug" {
			return ErrSlugTaken
		}
		return fmt.Errorf("update story %d: %w", s.ID, err)
	}
	return requireAffected(res, "update story", s.ID)
}

func (r *StorySQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteStorySQL, id)
	if err != nil {
		return fmt.Errorf("delete story %d: %w", id, err)
	}
	return requireAffected(res, "delete story", id)
}

// ListPublished returns the newest published stories, at most limit of them.
func (r *StorySQLite) ListPublished(ctx context.Context, limit int) ([]models.Story, error) {
	return r.list(ctx, "list published stories", selectPublishedSQL, limit)
}

// ListByAuthor returns drafts and published stories, most recently updated first.
func (r *StorySQLite) ListByAuthor(ctx context.Context, userID int) ([]models.Story, error) {
	return r.list(ctx, "list stories by author", selectByAuthorSQL, userID)
}

func (r *StorySQLite) ListPublishedByAuthor(ctx context.Context, userID int) ([]models.Story, error) {
	return r.list(ctx, "list published stories by author", selectPublishedByAuthorSQL, userID)
}

func (r *StorySQLite) list(ctx context.Context, op, query string, args ...any) ([]models.Story, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Story, 0, 16)
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*models.Story, error) {
	var s models.Story
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Subtitle,
		&s.Content,
		&s.Slug,
		&s.Published,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.UserID,
		&s.AuthorUsername,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
