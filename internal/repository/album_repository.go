package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/models"
)

const albumColumns = `id, user_id, name, description, privacy_level, created_at, updated_at`

type albumRepository struct {
	db sqlx.ExtContext
}

func NewAlbumRepository(db sqlx.ExtContext) AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO albums (user_id, name, description, privacy_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, album.UserID, album.Name, album.Description, album.PrivacyLevel).
		Scan(&album.ID, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		return translate("create album", err)
	}

	return nil
}

func (r *albumRepository) GetByID(ctx context.Context, albumID int64) (*models.Album, error) {
	var album models.Album

	query := `SELECT ` + albumColumns + ` FROM albums WHERE id = $1`

	if err := sqlx.GetContext(ctx, r.db, &album, query, albumID); err != nil {
		return nil, translate("get album", err)
	}

	return &album, nil
}

// ListByUser returns the user's albums with file counts. The default album
// aggregates the files that have no album.
func (r *albumRepository) ListByUser(ctx context.Context, userID int64) ([]models.AlbumSummary, error) {
	query := `
		SELECT a.id, a.user_id, a.name, a.description, a.privacy_level, a.created_at, a.updated_at,
			COUNT(f.id) AS file_count,
			COALESCE(SUM(f.size), 0) AS total_size,
			(SELECT cf.url FROM files cf
				WHERE cf.user_id = a.user_id
				AND (cf.album_id = a.id OR (a.name = $2 AND cf.album_id IS NULL))
				ORDER BY cf.created_at DESC LIMIT 1) AS cover_url
		FROM albums a
		LEFT JOIN files f ON f.user_id = a.user_id
			AND (f.album_id = a.id OR (a.name = $2 AND f.album_id IS NULL))
		WHERE a.user_id = $1
		GROUP BY a.id
		ORDER BY (a.name = $2) DESC, a.created_at DESC`

	albums := []models.AlbumSummary{}
	if err := sqlx.SelectContext(ctx, r.db, &albums, query, userID, models.DefaultAlbumName); err != nil {
		return nil, translate("list albums", err)
	}

	return albums, nil
}

// Update changes name, description and privacy. The owner is part of the
// WHERE clause so a foreign album is reported as not found.
func (r *albumRepository) Update(ctx context.Context, album *models.Album) error {
	query := `
		UPDATE albums
		SET name = $1, description = $2, privacy_level = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		album.Name, album.Description, album.PrivacyLevel, album.ID, album.UserID,
	).Scan(&album.UpdatedAt)
	if err != nil {
		return translate("update album", err)
	}

	return nil
}

// DetachFiles moves every file of the album back to unfiled.
func (r *albumRepository) DetachFiles(ctx context.Context, albumID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE files SET album_id = NULL, updated_at = NOW() WHERE album_id = $1`, albumID)
	if err != nil {
		return 0, translate("detach album files", err)
	}
	return res.RowsAffected()
}

func (r *albumRepository) Delete(ctx context.Context, albumID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1 AND user_id = $2`, albumID, userID)
	if err != nil {
		return translate("delete album", err)
	}
	return checkAffected("delete album", res)
}
