package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/models"
)

type resetTokenRepository struct {
	db sqlx.ExtContext
}

func NewResetTokenRepository(db sqlx.ExtContext) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, token.UserID, token.Token, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return translate("create reset token", err)
	}

	return nil
}

func (r *resetTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		return translate("delete reset tokens", err)
	}
	return nil
}

// Consume marks an unused, unexpired token as used and returns its owner.
// A second consumer of the same token matches no row and gets NotFound.
func (r *resetTokenRepository) Consume(ctx context.Context, token string, now time.Time) (int64, error) {
	query := `
		UPDATE password_reset_tokens
		SET is_used = TRUE, used_at = $2
		WHERE token = $1 AND is_used = FALSE AND expires_at > $2
		RETURNING user_id`

	var userID int64
	if err := r.db.QueryRowxContext(ctx, query, token, now).Scan(&userID); err != nil {
		return 0, translate("consume reset token", err)
	}

	return userID, nil
}

func (r *resetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= $1 OR is_used = TRUE`, now)
	if err != nil {
		return 0, translate("delete expired reset tokens", err)
	}
	return res.RowsAffected()
}
