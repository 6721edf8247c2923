package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gadgetplan-api/models"
)

func (c *Connection) InsertOTP(ctx context.Context, otp models.OTPCode) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO otp_codes (identifier, code, expires_at)
		VALUES (?, ?, ?)
	`, otp.Identifier, otp.Code, otp.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert otp code: %w", err)
	}
	return nil
}

// VerifyOTP delegates to the verify_otp stored function, which owns the
// expiry and single use rules. A NULL result counts as a mismatch.
func (c *Connection) VerifyOTP(ctx context.Context, identifier, code string) (bool, error) {
	var ok sql.NullBool
	err := c.db.QueryRowContext(ctx, `SELECT verify_otp(?, ?)`, identifier, code).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to verify otp code: %w", err)
	}
	return ok.Valid && ok.Bool, nil
}

func (c *Connection) PurgeExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge otp codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purged rows: %w", err)
	}
	return n, nil
}
