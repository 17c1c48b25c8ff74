package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/models"
)

type sessionRepository struct {
	db sqlx.ExtContext
}

func NewSessionRepository(db sqlx.ExtContext) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, session_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, session.UserID, session.Token, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return translate("create session", err)
	}

	return nil
}

// FindOwner returns the session joined with its account. Expiry and the
// active flag are left to the caller so the decision uses one clock.
func (r *sessionRepository) FindOwner(ctx context.Context, token string) (*models.SessionOwner, error) {
	var owner models.SessionOwner

	query := `
		SELECT s.user_id, u.username, u.display_name, u.avatar_url, u.is_active, s.expires_at
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1`

	if err := sqlx.GetContext(ctx, r.db, &owner, query, token); err != nil {
		return nil, translate("find session", err)
	}

	return &owner, nil
}

// Delete removes the session with token. Deleting an unknown token is not
// an error; the affected count is returned for metrics.
func (r *sessionRepository) Delete(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token)
	if err != nil {
		return 0, translate("delete session", err)
	}
	return res.RowsAffected()
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID int64, exceptToken string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE user_id = $1 AND session_token <> $2`, userID, exceptToken)
	if err != nil {
		return 0, translate("delete user sessions", err)
	}
	return res.RowsAffected()
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, translate("delete expired sessions", err)
	}
	return res.RowsAffected()
}
