package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/models"
)

// toggleQuery flips a (file_id, user_id) reaction in one statement: the row
// is deleted if present, inserted otherwise. The result is true when the
// reaction exists afterwards; when nothing was deleted the row exists even if
// a concurrent toggle inserted it first.
const toggleQuery = `
	WITH deleted AS (
		DELETE FROM %[1]s WHERE file_id = $1 AND user_id = $2 RETURNING id
	), inserted AS (
		INSERT INTO %[1]s (file_id, user_id)
		SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM deleted)
		ON CONFLICT (file_id, user_id) DO NOTHING
		RETURNING id
	)
	SELECT EXISTS (SELECT 1 FROM inserted) OR NOT EXISTS (SELECT 1 FROM deleted)`

var (
	toggleLikeQuery     = fmt.Sprintf(toggleQuery, "likes")
	toggleFavoriteQuery = fmt.Sprintf(toggleQuery, "favorites")
)

type socialRepository struct {
	db sqlx.ExtContext
}

func NewSocialRepository(db sqlx.ExtContext) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) ToggleLike(ctx context.Context, fileID, userID int64) (bool, error) {
	var liked bool
	if err := sqlx.GetContext(ctx, r.db, &liked, toggleLikeQuery, fileID, userID); err != nil {
		return false, translate("toggle like", err)
	}
	return liked, nil
}

func (r *socialRepository) ToggleFavorite(ctx context.Context, fileID, userID int64) (bool, error) {
	var favorited bool
	if err := sqlx.GetContext(ctx, r.db, &favorited, toggleFavoriteQuery, fileID, userID); err != nil {
		return false, translate("toggle favorite", err)
	}
	return favorited, nil
}

func (r *socialRepository) CountLikes(ctx context.Context, fileID int64) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM likes WHERE file_id = $1`, fileID); err != nil {
		return 0, translate("count likes", err)
	}
	return n, nil
}

func (r *socialRepository) CountFavorites(ctx context.Context, fileID int64) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM favorites WHERE file_id = $1`, fileID); err != nil {
		return 0, translate("count favorites", err)
	}
	return n, nil
}

func (r *socialRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (file_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, comment.FileID, comment.UserID, comment.ParentID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return translate("create comment", err)
	}

	return nil
}

const commentSelect = `
	SELECT c.id, c.file_id, c.user_id, c.parent_id, c.content, c.created_at, c.updated_at,
		u.username, u.display_name, u.avatar_url
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func (r *socialRepository) GetComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	if err := sqlx.GetContext(ctx, r.db, &comment, commentSelect+` WHERE c.id = $1`, commentID); err != nil {
		return nil, translate("get comment", err)
	}
	return &comment, nil
}

func (r *socialRepository) ListComments(ctx context.Context, fileID int64, opts models.ListOptions) ([]models.Comment, int64, error) {
	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM comments WHERE file_id = $1`, fileID); err != nil {
		return nil, 0, translate("count comments", err)
	}

	comments := []models.Comment{}
	query := commentSelect + ` WHERE c.file_id = $1 ORDER BY c.created_at ASC LIMIT $2 OFFSET $3`
	if err := sqlx.SelectContext(ctx, r.db, &comments, query, fileID, opts.Limit, opts.Offset()); err != nil {
		return nil, 0, translate("list comments", err)
	}

	return comments, total, nil
}

func (r *socialRepository) DeleteComment(ctx context.Context, commentID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return translate("delete comment", err)
	}
	return checkAffected("delete comment", res)
}

// Follow is idempotent: following twice keeps a single row.
func (r *socialRepository) Follow(ctx context.Context, followerID, followingID int64) error {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, following_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, followerID, followingID); err != nil {
		return translate("follow", err)
	}
	return nil
}

func (r *socialRepository) Unfollow(ctx context.Context, followerID, followingID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`

	if _, err := r.db.ExecContext(ctx, query, followerID, followingID); err != nil {
		return translate("unfollow", err)
	}
	return nil
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, followerID, followingID); err != nil {
		return false, translate("is following", err)
	}
	return exists, nil
}

func (r *socialRepository) ListFollowers(ctx context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	return r.listFollows(ctx, "following_id", "follower_id", userID, opts)
}

func (r *socialRepository) ListFollowing(ctx context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	return r.listFollows(ctx, "follower_id", "following_id", userID, opts)
}

// listFollows lists the users on the other side of userID's follow edges.
// Column names are fixed by the callers above.
func (r *socialRepository) listFollows(ctx context.Context, matchColumn, otherColumn string, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	var total int64
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM follows fl
		JOIN users u ON u.id = fl.%s
		WHERE fl.%s = $1 AND u.is_active`, otherColumn, matchColumn)
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, userID); err != nil {
		return nil, 0, translate("count follows", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.bio, fl.created_at AS followed_at
		FROM follows fl
		JOIN users u ON u.id = fl.%s
		WHERE fl.%s = $1 AND u.is_active
		ORDER BY fl.created_at DESC
		LIMIT $2 OFFSET $3`, otherColumn, matchColumn)

	users := []models.FollowUser{}
	if err := sqlx.SelectContext(ctx, r.db, &users, listQuery, userID, opts.Limit, opts.Offset()); err != nil {
		return nil, 0, translate("list follows", err)
	}

	return users, total, nil
}
