package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/models"
)

const userColumns = `id, username, email, password_hash, display_name, avatar_url, bio, location, website,
	is_active, created_at, updated_at, last_login_at`

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

// Create inserts an account whose PasswordHash is already set. Duplicate
// usernames or emails surface as conflicts from the unique indexes.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.DisplayName).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translate("create user", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`

	if err := sqlx.GetContext(ctx, r.db, &user, query, userID); err != nil {
		return nil, translate("get user by id", err)
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) AND is_active`

	if err := sqlx.GetContext(ctx, r.db, &user, query, username); err != nil {
		return nil, translate("get user by username", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND is_active`

	if err := sqlx.GetContext(ctx, r.db, &user, query, email); err != nil {
		return nil, translate("get user by email", err)
	}

	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*models.User, error) {
	var (
		sets []string
		args []interface{}
	)

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.DisplayName != nil {
		set("display_name", *upd.DisplayName)
	}
	if upd.Email != nil {
		// an empty email clears it
		if *upd.Email == "" {
			set("email", nil)
		} else {
			set("email", *upd.Email)
		}
	}
	if upd.Bio != nil {
		set("bio", *upd.Bio)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Website != nil {
		set("website", *upd.Website)
	}

	if len(sets) == 0 {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	args = append(args, userID)
	query := fmt.Sprintf(
		`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d AND is_active RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns,
	)

	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, args...); err != nil {
		return nil, translate("update profile", err)
	}

	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 AND is_active`

	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return translate("update password", err)
	}

	return checkAffected("update password", res)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2 AND is_active`

	res, err := r.db.ExecContext(ctx, query, avatarURL, userID)
	if err != nil {
		return translate("update avatar", err)
	}

	return checkAffected("update avatar", res)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return translate("update last login", err)
	}

	return nil
}

func (r *userRepository) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var stats models.UserStats

	query := `
		SELECT
			(SELECT COUNT(*) FROM files WHERE user_id = $1) AS files,
			(SELECT COUNT(*) FROM albums WHERE user_id = $1) AS albums,
			(SELECT COUNT(*) FROM follows WHERE following_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following,
			(SELECT COUNT(*) FROM likes l JOIN files f ON f.id = l.file_id WHERE f.user_id = $1) AS likes_received,
			(SELECT COUNT(*) FROM favorites WHERE user_id = $1) AS favorites`

	if err := sqlx.GetContext(ctx, r.db, &stats, query, userID); err != nil {
		return nil, translate("user stats", err)
	}

	return &stats, nil
}
