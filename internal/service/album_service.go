package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/storage"
)

type CreateAlbumInput struct {
	Name         string
	Description  *string
	PrivacyLevel string
}

type UpdateAlbumInput struct {
	Name         *string
	Description  *string
	PrivacyLevel *string
}

type AlbumService interface {
	List(ctx context.Context, userID int64) ([]models.AlbumSummary, error)
	Create(ctx context.Context, userID int64, in CreateAlbumInput) (*models.Album, error)
	Get(ctx context.Context, albumID, viewerID int64) (*models.Album, error)
	ListFiles(ctx context.Context, albumID, viewerID int64, opts models.ListOptions) (models.Page[models.File], error)
	Update(ctx context.Context, albumID, callerID int64, in UpdateAlbumInput) (*models.Album, error)
	Delete(ctx context.Context, albumID, callerID int64) error
}

type albumService struct {
	albums  repository.AlbumRepository
	files   repository.FileRepository
	social  repository.SocialRepository
	tx      repository.Transactor
	storage storage.Storage
	log     logrus.FieldLogger
}

func NewAlbumService(rep *repository.Repository, tx repository.Transactor, store storage.Storage, log logrus.FieldLogger) AlbumService {
	return &albumService{
		albums:  rep.Album,
		files:   rep.File,
		social:  rep.Social,
		tx:      tx,
		storage: store,
		log:     log,
	}
}

func (s *albumService) List(ctx context.Context, userID int64) ([]models.AlbumSummary, error) {
	return s.albums.ListByUser(ctx, userID)
}

func (s *albumService) Create(ctx context.Context, userID int64, in CreateAlbumInput) (*models.Album, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ErrMissingFields
	}
	if name == models.DefaultAlbumName {
		return nil, apperror.ErrDefaultAlbumProtected
	}

	privacy, err := normalizePrivacy(in.PrivacyLevel)
	if err != nil {
		return nil, err
	}

	album := &models.Album{
		UserID:       userID,
		Name:         name,
		Description:  trimmedOrNil(in.Description),
		PrivacyLevel: privacy,
	}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}

	return album, nil
}

func (s *albumService) Get(ctx context.Context, albumID, viewerID int64) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := mustView(ctx, s.social, album.PrivacyLevel, album.UserID, viewerID); err != nil {
		return nil, err
	}
	return album, nil
}

// ListFiles pages through an album. For the default album that means the
// owner's unfiled files. Only the owner sees non-public files.
func (s *albumService) ListFiles(ctx context.Context, albumID, viewerID int64, opts models.ListOptions) (models.Page[models.File], error) {
	album, err := s.Get(ctx, albumID, viewerID)
	if err != nil {
		return models.Page[models.File]{}, err
	}

	filter := repository.AlbumFilesFilter{
		OwnerID:        album.UserID,
		IncludePrivate: album.UserID == viewerID,
	}
	if !album.IsDefault() {
		filter.AlbumID = &album.ID
	}

	opts = opts.Normalize(models.DefaultPageLimit)
	files, total, err := s.files.ListByAlbum(ctx, filter, opts)
	if err != nil {
		return models.Page[models.File]{}, err
	}

	for i := range files {
		resolveFileURL(ctx, s.storage, s.log, &files[i])
	}
	return models.NewPage(files, opts, total), nil
}

func (s *albumService) Update(ctx context.Context, albumID, callerID int64, in UpdateAlbumInput) (*models.Album, error) {
	if in.Name == nil && in.Description == nil && in.PrivacyLevel == nil {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(album.UserID, callerID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ErrMissingFields
		}
		if name != album.Name && (album.IsDefault() || name == models.DefaultAlbumName) {
			return nil, apperror.ErrDefaultAlbumProtected
		}
		album.Name = name
	}
	if in.Description != nil {
		album.Description = trimmedOrNil(in.Description)
	}
	if in.PrivacyLevel != nil {
		if !models.ValidPrivacy(*in.PrivacyLevel) {
			return nil, apperror.ErrInvalidPrivacy
		}
		album.PrivacyLevel = *in.PrivacyLevel
	}

	if err := s.albums.Update(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// Delete moves the album's files to unfiled and removes the album in one
// transaction. The default album is never deleted.
func (s *albumService) Delete(ctx context.Context, albumID, callerID int64) error {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return err
	}
	if err := AssertOwner(album.UserID, callerID); err != nil {
		return err
	}
	if album.IsDefault() {
		return apperror.ErrDefaultAlbumProtected
	}

	var moved int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		var err error
		if moved, err = repo.Album.DetachFiles(ctx, album.ID); err != nil {
			return err
		}
		return repo.Album.Delete(ctx, album.ID, callerID)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"album_id":    album.ID,
		"moved_files": moved,
	}).Info("album deleted")
	return nil
}
