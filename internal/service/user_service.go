package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/storage"
)

type UserService interface {
	Profile(ctx context.Context, userID, viewerID int64) (*models.User, error)
	Stats(ctx context.Context, userID int64) (*models.UserStats, error)
	UploadAvatar(ctx context.Context, userID int64, file UploadFile) (*models.User, error)
	Followers(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error)
	Following(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error)
	Favorites(ctx context.Context, userID, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error)
}

type userService struct {
	users   repository.UserRepository
	files   repository.FileRepository
	social  repository.SocialRepository
	storage storage.Storage
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	maxSize int64
}

func NewUserService(rep *repository.Repository, store storage.Storage, m *metrics.Metrics, cfg *config.Config, log logrus.FieldLogger) UserService {
	return &userService{
		users:   rep.User,
		files:   rep.File,
		social:  rep.Social,
		storage: store,
		metrics: m,
		log:     log,
		maxSize: cfg.MaxAvatarSize,
	}
}

// Profile returns the public view of an account. The email is only kept
// when users look at themselves.
func (s *userService) Profile(ctx context.Context, userID, viewerID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewerID != user.ID {
		user.Email = nil
		user.LastLoginAt = nil
	}
	return user, nil
}

func (s *userService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Stats(ctx, userID)
}

func (s *userService) UploadAvatar(ctx context.Context, userID int64, file UploadFile) (*models.User, error) {
	if file.Content == nil {
		return nil, apperror.ErrMissingFields
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		s.metrics.UploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return nil, apperror.ErrFileTooLarge
	}

	mtype, err := sniff(file.Content, isImage)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return nil, err
	}

	obj, err := s.storage.Upload(ctx, storage.UploadInput{
		Prefix:       "avatars",
		OwnerID:      userID,
		OriginalName: file.Name,
		ContentType:  mtype.String(),
		Extension:    mtype.Extension(),
		Body:         file.Content,
		Size:         file.Size,
	})
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("avatar", "error").Inc()
		return nil, err
	}

	if err := s.users.UpdateAvatar(ctx, userID, obj.URL); err != nil {
		if delErr := s.storage.Delete(ctx, obj.Key); delErr != nil {
			s.log.WithError(delErr).WithField("object_key", obj.Key).Error("failed to remove orphaned avatar")
		}
		s.metrics.UploadsTotal.WithLabelValues("avatar", "error").Inc()
		return nil, err
	}

	s.metrics.UploadsTotal.WithLabelValues("avatar", "ok").Inc()
	return s.users.GetByID(ctx, userID)
}

func (s *userService) Followers(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error) {
	opts = opts.Normalize(models.DefaultPageLimit)
	users, total, err := s.social.ListFollowers(ctx, userID, opts)
	if err != nil {
		return models.Page[models.FollowUser]{}, err
	}
	return models.NewPage(users, opts, total), nil
}

func (s *userService) Following(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error) {
	opts = opts.Normalize(models.DefaultPageLimit)
	users, total, err := s.social.ListFollowing(ctx, userID, opts)
	if err != nil {
		return models.Page[models.FollowUser]{}, err
	}
	return models.NewPage(users, opts, total), nil
}

func (s *userService) Favorites(ctx context.Context, userID, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error) {
	opts = opts.Normalize(models.DefaultPageLimit)
	files, total, err := s.files.ListFavorites(ctx, userID, viewerID, opts)
	if err != nil {
		return models.Page[models.FileWithSocial]{}, err
	}
	return models.NewPage(files, opts, total), nil
}
