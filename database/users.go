package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gadgetplan-api/models"
)

const selectUserColumns = `
	SELECT id, COALESCE(email, ''), COALESCE(full_name, ''), COALESCE(avatar_url, '')
	FROM app_users
`

// identifiers are an email address or a phone number
func emailFor(identifier string) sql.NullString {
	if strings.Contains(identifier, "@") {
		return sql.NullString{String: identifier, Valid: true}
	}
	return sql.NullString{}
}

func scanUser(row *sql.Row) (*models.AppUser, error) {
	var u models.AppUser
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.AvatarURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &u, nil
}

func (t *Transaction) UpsertUser(ctx context.Context, fullName, identifier string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO app_users (id, identifier, email, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE full_name = VALUES(full_name), updated_at = NOW()
	`, uuid.NewString(), identifier, emailFor(identifier), fullName)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (t *Transaction) InsertUserIfMissing(ctx context.Context, identifier string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT IGNORE INTO app_users (id, identifier, email, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
	`, uuid.NewString(), identifier, emailFor(identifier))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (t *Transaction) GetUserByIdentifier(ctx context.Context, identifier string) (*models.AppUser, error) {
	return scanUser(t.tx.QueryRowContext(ctx, selectUserColumns+` WHERE identifier = ?`, identifier))
}

// RegisterUser creates the account for identifier or updates its name.
func (c *Connection) RegisterUser(ctx context.Context, fullName, identifier string) (*models.AppUser, error) {
	var user *models.AppUser
	err := c.withTransaction(ctx, func(tx *Transaction) error {
		if err := tx.UpsertUser(ctx, fullName, identifier); err != nil {
			return err
		}
		u, err := tx.GetUserByIdentifier(ctx, identifier)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureUser returns the account for identifier, creating a nameless one
// for visitors who sign in without registering first.
func (c *Connection) EnsureUser(ctx context.Context, identifier string) (*models.AppUser, error) {
	var user *models.AppUser
	err := c.withTransaction(ctx, func(tx *Transaction) error {
		if err := tx.InsertUserIfMissing(ctx, identifier); err != nil {
			return err
		}
		u, err := tx.GetUserByIdentifier(ctx, identifier)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Connection) GetUserByID(ctx context.Context, id string) (*models.AppUser, error) {
	return scanUser(c.db.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id))
}
