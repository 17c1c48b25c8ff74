package service

import (
	"context"
	"strings"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
)

const feedPageLimit = 10

type ToggleResult struct {
	Active bool
	Count  int64
}

type SocialService interface {
	Feed(ctx context.Context, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error)
	ToggleLike(ctx context.Context, fileID, userID int64) (*ToggleResult, error)
	ToggleFavorite(ctx context.Context, fileID, userID int64) (*ToggleResult, error)
	ListComments(ctx context.Context, fileID, viewerID int64, opts models.ListOptions) (models.Page[models.Comment], error)
	AddComment(ctx context.Context, fileID, userID int64, content string, parentID *int64) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error
	Follow(ctx context.Context, followerID, followingID int64) error
	Unfollow(ctx context.Context, followerID, followingID int64) error
}

type socialService struct {
	users  repository.UserRepository
	files  repository.FileRepository
	social repository.SocialRepository
}

func NewSocialService(rep *repository.Repository) SocialService {
	return &socialService{
		users:  rep.User,
		files:  rep.File,
		social: rep.Social,
	}
}

func (s *socialService) Feed(ctx context.Context, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error) {
	opts = opts.Normalize(feedPageLimit)

	files, total, err := s.files.ListFeed(ctx, opts, viewerID)
	if err != nil {
		return models.Page[models.FileWithSocial]{}, err
	}

	return models.NewPage(files, opts, total), nil
}

// visibleFile loads a file the viewer may see; anything else is NotFound.
func (s *socialService) visibleFile(ctx context.Context, fileID, viewerID int64) (*models.File, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := mustView(ctx, s.social, file.PrivacyLevel, file.UserID, viewerID); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *socialService) ToggleLike(ctx context.Context, fileID, userID int64) (*ToggleResult, error) {
	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}

	liked, err := s.social.ToggleLike(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.social.CountLikes(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{Active: liked, Count: count}, nil
}

func (s *socialService) ToggleFavorite(ctx context.Context, fileID, userID int64) (*ToggleResult, error) {
	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}

	favorited, err := s.social.ToggleFavorite(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.social.CountFavorites(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{Active: favorited, Count: count}, nil
}

func (s *socialService) ListComments(ctx context.Context, fileID, viewerID int64, opts models.ListOptions) (models.Page[models.Comment], error) {
	if _, err := s.visibleFile(ctx, fileID, viewerID); err != nil {
		return models.Page[models.Comment]{}, err
	}

	opts = opts.Normalize(models.DefaultPageLimit)
	comments, total, err := s.social.ListComments(ctx, fileID, opts)
	if err != nil {
		return models.Page[models.Comment]{}, err
	}

	return models.NewPage(comments, opts, total), nil
}

func (s *socialService) AddComment(ctx context.Context, fileID, userID int64, content string, parentID *int64) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ErrEmptyComment
	}

	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.social.GetComment(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.FileID != fileID {
			return nil, apperror.ErrInvalidRequest
		}
	}

	comment := &models.Comment{
		FileID:   fileID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.social.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	// reload for the author's display fields
	return s.social.GetComment(ctx, comment.ID)
}

// DeleteComment lets only the author remove a comment.
func (s *socialService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	comment, err := s.social.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := AssertOwner(comment.UserID, userID); err != nil {
		return err
	}
	return s.social.DeleteComment(ctx, commentID, userID)
}

func (s *socialService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return apperror.ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, followingID); err != nil {
		return err
	}
	return s.social.Follow(ctx, followerID, followingID)
}

func (s *socialService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return apperror.ErrSelfFollow
	}
	return s.social.Unfollow(ctx, followerID, followingID)
}
