package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/models"
)

const fileColumns = `f.id, f.user_id, f.album_id, f.object_key, f.original_name, f.mime_type, f.size, f.url,
	f.caption, f.privacy_level, f.views, f.created_at, f.updated_at`

// fileSocialSelect binds the viewer id twice; 0 never matches a user.
const fileSocialSelect = `
	SELECT ` + fileColumns + `,
		u.username, u.display_name, u.avatar_url AS user_avatar_url,
		(SELECT COUNT(*) FROM likes l WHERE l.file_id = f.id) AS likes,
		(SELECT COUNT(*) FROM favorites fv WHERE fv.file_id = f.id) AS favorites,
		(SELECT COUNT(*) FROM comments c WHERE c.file_id = f.id) AS comments,
		EXISTS (SELECT 1 FROM likes l WHERE l.file_id = f.id AND l.user_id = ?) AS is_liked,
		EXISTS (SELECT 1 FROM favorites fv WHERE fv.file_id = f.id AND fv.user_id = ?) AS is_favorited
	FROM files f
	JOIN users u ON u.id = f.user_id`

// likeEscaper makes a search term match literally inside ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type fileRepository struct {
	db sqlx.ExtContext
}

func NewFileRepository(db sqlx.ExtContext) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (user_id, album_id, object_key, original_name, mime_type, size, url, caption, privacy_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, views, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		file.UserID, file.AlbumID, file.ObjectKey, file.OriginalName, file.MimeType,
		file.Size, file.URL, file.Caption, file.PrivacyLevel,
	).Scan(&file.ID, &file.Views, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return translate("create file", err)
	}

	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, fileID int64) (*models.File, error) {
	var file models.File

	query := `SELECT ` + fileColumns + ` FROM files f WHERE f.id = $1`

	if err := sqlx.GetContext(ctx, r.db, &file, query, fileID); err != nil {
		return nil, translate("get file", err)
	}

	return &file, nil
}

func (r *fileRepository) GetWithSocial(ctx context.Context, fileID, viewerID int64) (*models.FileWithSocial, error) {
	var file models.FileWithSocial

	query := r.db.Rebind(fileSocialSelect + ` WHERE f.id = ?`)

	if err := sqlx.GetContext(ctx, r.db, &file, query, viewerID, viewerID, fileID); err != nil {
		return nil, translate("get file with social", err)
	}

	return &file, nil
}

// ListFeed returns public files of active users, newest first by default.
func (r *fileRepository) ListFeed(ctx context.Context, opts models.ListOptions, viewerID int64) ([]models.FileWithSocial, int64, error) {
	conds := []string{`f.privacy_level = 'public'`, `u.is_active`}
	var args []interface{}

	if opts.Search != "" {
		conds = append(conds, `f.original_name ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(opts.Search)+"%")
	}
	switch opts.Type {
	case "image":
		conds = append(conds, `f.mime_type LIKE 'image/%'`)
	case "video":
		conds = append(conds, `f.mime_type LIKE 'video/%'`)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM files f JOIN users u ON u.id = f.user_id` + where)
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, translate("count feed", err)
	}

	listQuery := r.db.Rebind(fileSocialSelect + where +
		fmt.Sprintf(` ORDER BY f.%s %s LIMIT ? OFFSET ?`, opts.SortBy, opts.SortOrder))
	listArgs := append([]interface{}{viewerID, viewerID}, args...)
	listArgs = append(listArgs, opts.Limit, opts.Offset())

	files := []models.FileWithSocial{}
	if err := sqlx.SelectContext(ctx, r.db, &files, listQuery, listArgs...); err != nil {
		return nil, 0, translate("list feed", err)
	}

	return files, total, nil
}

func (r *fileRepository) ListByAlbum(ctx context.Context, filter AlbumFilesFilter, opts models.ListOptions) ([]models.File, int64, error) {
	conds := []string{`f.user_id = ?`}
	args := []interface{}{filter.OwnerID}

	if filter.AlbumID == nil {
		conds = append(conds, `f.album_id IS NULL`)
	} else {
		conds = append(conds, `f.album_id = ?`)
		args = append(args, *filter.AlbumID)
	}
	if !filter.IncludePrivate {
		conds = append(conds, `f.privacy_level = 'public'`)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(*) FROM files f`+where), args...); err != nil {
		return nil, 0, translate("count album files", err)
	}

	listQuery := r.db.Rebind(`SELECT ` + fileColumns + ` FROM files f` + where +
		fmt.Sprintf(` ORDER BY f.%s %s LIMIT ? OFFSET ?`, opts.SortBy, opts.SortOrder))
	listArgs := append(args, opts.Limit, opts.Offset())

	files := []models.File{}
	if err := sqlx.SelectContext(ctx, r.db, &files, listQuery, listArgs...); err != nil {
		return nil, 0, translate("list album files", err)
	}

	return files, total, nil
}

// ListFavorites returns the public files userID has favorited, most recent
// favorite first.
func (r *fileRepository) ListFavorites(ctx context.Context, userID, viewerID int64, opts models.ListOptions) ([]models.FileWithSocial, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(*) FROM favorites mine
		JOIN files f ON f.id = mine.file_id
		WHERE mine.user_id = $1 AND f.privacy_level = 'public'`
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, userID); err != nil {
		return nil, 0, translate("count favorites", err)
	}

	listQuery := r.db.Rebind(fileSocialSelect + `
		JOIN favorites mine ON mine.file_id = f.id
		WHERE mine.user_id = ? AND f.privacy_level = 'public'
		ORDER BY mine.created_at DESC
		LIMIT ? OFFSET ?`)

	files := []models.FileWithSocial{}
	if err := sqlx.SelectContext(ctx, r.db, &files, listQuery,
		viewerID, viewerID, userID, opts.Limit, opts.Offset()); err != nil {
		return nil, 0, translate("list favorites", err)
	}

	return files, total, nil
}

func (r *fileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET album_id = $1, caption = $2, privacy_level = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		file.AlbumID, file.Caption, file.PrivacyLevel, file.ID, file.UserID,
	).Scan(&file.UpdatedAt)
	if err != nil {
		return translate("update file", err)
	}

	return nil
}

func (r *fileRepository) Delete(ctx context.Context, fileID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1 AND user_id = $2`, fileID, userID)
	if err != nil {
		return translate("delete file", err)
	}
	return checkAffected("delete file", res)
}

func (r *fileRepository) IncrementViews(ctx context.Context, fileID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET views = views + 1 WHERE id = $1`, fileID)
	if err != nil {
		return translate("increment views", err)
	}
	return checkAffected("increment views", res)
}
