// Package session persists the authenticated session (bearer token plus the
// cached user snapshot) in the local SQLite database.
//
// The two keys are always written and removed together, so a reader never
// observes a token without its user or the reverse.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/dbx"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

type Repository interface {
	// Token returns the persisted token or "" when there is none.
	Token(ctx context.Context) (string, error)
	// User returns the cached snapshot or nil.
	User(ctx context.Context) (*models.User, error)
	// Save stores token and user atomically.
	Save(ctx context.Context, token string, user *models.User) error
	// SaveUser replaces the snapshot, leaving the token untouched.
	SaveUser(ctx context.Context, user *models.User) error
	// Clear removes both keys atomically.
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Token(ctx context.Context) (string, error) {
	v, err := get(ctx, r.db, KeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r *SQLiteRepository) User(ctx context.Context) (*models.User, error) {
	v, err := get(ctx, r.db, KeyUser)
	if err != nil || v == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return errors.New("session requires both token and user")
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, KeyToken, []byte(token)); err != nil {
			return err
		}
		return set(ctx, tx, KeyUser, b)
	})
}

func (r *SQLiteRepository) SaveUser(ctx context.Context, user *models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return set(ctx, r.db, KeyUser, b)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session WHERE key IN (?, ?)`, KeyToken, KeyUser); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}
