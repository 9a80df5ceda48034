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

type UserSQLite struct {
	db dbx.DBTX
}

func NewUserSQLite(db dbx.DBTX) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserSQLite)(nil)

const (
	userColumns = `id, username, email, password_hash, bio, created_at`

	insertUserSQL = `INSERT INTO users (username, email, password_hash, bio, created_at) VALUES (?, ?, ?, ?, ?)`

	selectUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	updateUserSQL = `UPDATE users SET username = ?, email = ?, password_hash = ?, bio = ? WHERE id = ?`
	deleteUserSQL = `DELETE FROM users WHERE id = ?`
)

// Create inserts a new user and returns its ID. CreatedAt is set when zero.
func (r *UserSQLite) Create(ctx context.Context, u *models.User) (int, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.Bio, u.CreatedAt.UTC())
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	u.ID = int(lastID)
	return u.ID, nil
}

// GetByID fetches a user by primary key.
func (r *UserSQLite) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByIDSQL, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

// GetByUsername fetches a user by username.
func (r *UserSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByUsernameSQL, username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// Update overwrites the mutable columns of an existing user.
func (r *UserSQLite) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx, updateUserSQL, u.Username, u.Email, u.PasswordHash, u.Bio, u.ID)
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return requireAffected(res, "update user", u.ID)
}

// Delete removes a user; their stories go with them through the FK cascade.
func (r *UserSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireAffected(res, "delete user", id)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// requireAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func requireAffected(res sql.Result, op string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
