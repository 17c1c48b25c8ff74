package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/w8990/album/internal/database"
	"github.com/w8990/album/internal/models"
)

// UserRepository is the credential store plus profile persistence.
// Lookups by username or email only ever match active accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	Stats(ctx context.Context, userID int64) (*models.UserStats, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindOwner(ctx context.Context, token string) (*models.SessionOwner, error)
	Delete(ctx context.Context, token string) (int64, error)
	DeleteByUser(ctx context.Context, userID int64, exceptToken string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	DeleteByUser(ctx context.Context, userID int64) error
	Consume(ctx context.Context, token string, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, albumID int64) (*models.Album, error)
	ListByUser(ctx context.Context, userID int64) ([]models.AlbumSummary, error)
	Update(ctx context.Context, album *models.Album) error
	DetachFiles(ctx context.Context, albumID int64) (int64, error)
	Delete(ctx context.Context, albumID, userID int64) error
}

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, fileID int64) (*models.File, error)
	GetWithSocial(ctx context.Context, fileID, viewerID int64) (*models.FileWithSocial, error)
	ListFeed(ctx context.Context, opts models.ListOptions, viewerID int64) ([]models.FileWithSocial, int64, error)
	ListByAlbum(ctx context.Context, filter AlbumFilesFilter, opts models.ListOptions) ([]models.File, int64, error)
	ListFavorites(ctx context.Context, userID, viewerID int64, opts models.ListOptions) ([]models.FileWithSocial, int64, error)
	Update(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, fileID, userID int64) error
	IncrementViews(ctx context.Context, fileID int64) error
}

type SocialRepository interface {
	ToggleLike(ctx context.Context, fileID, userID int64) (bool, error)
	ToggleFavorite(ctx context.Context, fileID, userID int64) (bool, error)
	CountLikes(ctx context.Context, fileID int64) (int64, error)
	CountFavorites(ctx context.Context, fileID int64) (int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, commentID int64) (*models.Comment, error)
	ListComments(ctx context.Context, fileID int64, opts models.ListOptions) ([]models.Comment, int64, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error

	Follow(ctx context.Context, followerID, followingID int64) error
	Unfollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	ListFollowers(ctx context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error)
	ListFollowing(ctx context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error)
}

// ProfileUpdate carries only the fields the caller wants to change.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	Bio         *string
	Location    *string
	Website     *string
}

func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Email == nil && u.Bio == nil && u.Location == nil && u.Website == nil
}

// AlbumFilesFilter selects the files of one album. A nil AlbumID selects
// the owner's unfiled files.
type AlbumFilesFilter struct {
	OwnerID        int64
	AlbumID        *int64
	IncludePrivate bool
}

type Repository struct {
	User       UserRepository
	Session    SessionRepository
	ResetToken ResetTokenRepository
	Album      AlbumRepository
	File       FileRepository
	Social     SocialRepository
}

// NewRepository builds every repository on the same handle, which may be
// the pool or a transaction.
func NewRepository(db sqlx.ExtContext) *Repository {
	return &Repository{
		User:       NewUserRepository(db),
		Session:    NewSessionRepository(db),
		ResetToken: NewResetTokenRepository(db),
		Album:      NewAlbumRepository(db),
		File:       NewFileRepository(db),
		Social:     NewSocialRepository(db),
	}
}

// Transactor runs fn with repositories bound to a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error
}

type sqlxTransactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlxTransactor{db: db}
}

func (t *sqlxTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error {
	return database.WithTx(ctx, t.db, func(tx *sqlx.Tx) error {
		return fn(ctx, NewRepository(tx))
	})
}
