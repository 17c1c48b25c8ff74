package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, login, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID int64) (*models.User, *models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*models.UserStats), args.Error(2)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID int64, upd repository.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int64, keepToken, current, next string) error {
	return m.Called(ctx, userID, keepToken, current, next).Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, userID, viewerID int64) (*models.User, error) {
	args := m.Called(ctx, userID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userID int64, file service.UploadFile) (*models.User, error) {
	args := m.Called(ctx, userID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Followers(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error) {
	args := m.Called(ctx, userID, opts)
	return args.Get(0).(models.Page[models.FollowUser]), args.Error(1)
}

func (m *MockUserService) Following(ctx context.Context, userID int64, opts models.ListOptions) (models.Page[models.FollowUser], error) {
	args := m.Called(ctx, userID, opts)
	return args.Get(0).(models.Page[models.FollowUser]), args.Error(1)
}

func (m *MockUserService) Favorites(ctx context.Context, userID, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error) {
	args := m.Called(ctx, userID, viewerID, opts)
	return args.Get(0).(models.Page[models.FileWithSocial]), args.Error(1)
}

type MockAlbumService struct {
	mock.Mock
}

func (m *MockAlbumService) List(ctx context.Context, userID int64) ([]models.AlbumSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AlbumSummary), args.Error(1)
}

func (m *MockAlbumService) Create(ctx context.Context, userID int64, in service.CreateAlbumInput) (*models.Album, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumService) Get(ctx context.Context, albumID, viewerID int64) (*models.Album, error) {
	args := m.Called(ctx, albumID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumService) ListFiles(ctx context.Context, albumID, viewerID int64, opts models.ListOptions) (models.Page[models.File], error) {
	args := m.Called(ctx, albumID, viewerID, opts)
	return args.Get(0).(models.Page[models.File]), args.Error(1)
}

func (m *MockAlbumService) Update(ctx context.Context, albumID, callerID int64, in service.UpdateAlbumInput) (*models.Album, error) {
	args := m.Called(ctx, albumID, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumService) Delete(ctx context.Context, albumID, callerID int64) error {
	return m.Called(ctx, albumID, callerID).Error(0)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, ownerID int64, in service.UploadInput) ([]models.File, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.File), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, fileID, viewerID int64) (*models.FileWithSocial, error) {
	args := m.Called(ctx, fileID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileWithSocial), args.Error(1)
}

func (m *MockFileService) RecordView(ctx context.Context, fileID, viewerID int64) error {
	return m.Called(ctx, fileID, viewerID).Error(0)
}

func (m *MockFileService) Update(ctx context.Context, fileID, callerID int64, in service.UpdateFileInput) (*models.File, error) {
	args := m.Called(ctx, fileID, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, fileID, callerID int64) error {
	return m.Called(ctx, fileID, callerID).Error(0)
}

type MockSocialService struct {
	mock.Mock
}

func (m *MockSocialService) Feed(ctx context.Context, viewerID int64, opts models.ListOptions) (models.Page[models.FileWithSocial], error) {
	args := m.Called(ctx, viewerID, opts)
	return args.Get(0).(models.Page[models.FileWithSocial]), args.Error(1)
}

func (m *MockSocialService) ToggleLike(ctx context.Context, fileID, userID int64) (*service.ToggleResult, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ToggleResult), args.Error(1)
}

func (m *MockSocialService) ToggleFavorite(ctx context.Context, fileID, userID int64) (*service.ToggleResult, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ToggleResult), args.Error(1)
}

func (m *MockSocialService) ListComments(ctx context.Context, fileID, viewerID int64, opts models.ListOptions) (models.Page[models.Comment], error) {
	args := m.Called(ctx, fileID, viewerID, opts)
	return args.Get(0).(models.Page[models.Comment]), args.Error(1)
}

func (m *MockSocialService) AddComment(ctx context.Context, fileID, userID int64, content string, parentID *int64) (*models.Comment, error) {
	args := m.Called(ctx, fileID, userID, content, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockSocialService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	return m.Called(ctx, commentID, userID).Error(0)
}

func (m *MockSocialService) Follow(ctx context.Context, followerID, followingID int64) error {
	return m.Called(ctx, followerID, followingID).Error(0)
}

func (m *MockSocialService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	return m.Called(ctx, followerID, followingID).Error(0)
}

// MockValidator stands in for the session service behind the auth middleware.
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, token string) (*models.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}
