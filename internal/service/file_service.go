package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/storage"
)

const MaxFilesPerUpload = 10

var (
	imageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	videoTypes = map[string]bool{
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	}
)

type UploadFile struct {
	Name    string
	Size    int64
	Content io.ReadSeeker
}

type UploadInput struct {
	AlbumID      *int64
	Caption      *string
	PrivacyLevel string
	Files        []UploadFile
}

// UpdateFileInput changes only the fields that are set. AlbumID pointing at
// 0 or at the default album moves the file to unfiled.
type UpdateFileInput struct {
	AlbumID      *int64
	Caption      *string
	PrivacyLevel *string
}

type FileService interface {
	Upload(ctx context.Context, ownerID int64, in UploadInput) ([]models.File, error)
	Get(ctx context.Context, fileID, viewerID int64) (*models.FileWithSocial, error)
	RecordView(ctx context.Context, fileID, viewerID int64) error
	Update(ctx context.Context, fileID, callerID int64, in UpdateFileInput) (*models.File, error)
	Delete(ctx context.Context, fileID, callerID int64) error
}

type fileService struct {
	files   repository.FileRepository
	albums  repository.AlbumRepository
	social  repository.SocialRepository
	tx      repository.Transactor
	storage storage.Storage
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	maxSize int64
}

func NewFileService(
	rep *repository.Repository,
	tx repository.Transactor,
	store storage.Storage,
	m *metrics.Metrics,
	cfg *config.Config,
	log logrus.FieldLogger,
) FileService {
	return &fileService{
		files:   rep.File,
		albums:  rep.Album,
		social:  rep.Social,
		tx:      tx,
		storage: store,
		metrics: m,
		log:     log,
		maxSize: cfg.MaxUploadSize,
	}
}

// sniff detects the content type from the leading bytes and rewinds r.
func sniff(r io.ReadSeeker, allowed func(string) bool) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	if !allowed(mtype.String()) {
		return nil, apperror.ErrInvalidFileType
	}
	return mtype, nil
}

func isMedia(contentType string) bool {
	return imageTypes[contentType] || videoTypes[contentType]
}

func isImage(contentType string) bool {
	return imageTypes[contentType]
}

// targetAlbum checks that albumID belongs to ownerID and maps the default
// album (and 0) to nil, which stores the file as unfiled.
func targetAlbum(ctx context.Context, albums repository.AlbumRepository, albumID *int64, ownerID int64) (*int64, error) {
	if albumID == nil || *albumID == 0 {
		return nil, nil
	}

	album, err := albums.GetByID(ctx, *albumID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(album.UserID, ownerID); err != nil {
		return nil, err
	}
	if album.IsDefault() {
		return nil, nil
	}

	id := album.ID
	return &id, nil
}

type pendingUpload struct {
	src   UploadFile
	mtype *mimetype.MIME
}

// Upload validates every part before storing any of them. Objects are
// removed again if a later upload or the database insert fails.
func (s *fileService) Upload(ctx context.Context, ownerID int64, in UploadInput) ([]models.File, error) {
	if len(in.Files) == 0 {
		return nil, apperror.ErrMissingFields
	}
	if len(in.Files) > MaxFilesPerUpload {
		return nil, apperror.ErrInvalidRequest
	}

	privacy, err := normalizePrivacy(in.PrivacyLevel)
	if err != nil {
		return nil, err
	}

	albumID, err := targetAlbum(ctx, s.albums, in.AlbumID, ownerID)
	if err != nil {
		return nil, err
	}

	pending := make([]pendingUpload, 0, len(in.Files))
	for _, f := range in.Files {
		if s.maxSize > 0 && f.Size > s.maxSize {
			s.metrics.UploadsTotal.WithLabelValues("file", "rejected").Inc()
			return nil, apperror.ErrFileTooLarge
		}
		mtype, err := sniff(f.Content, isMedia)
		if err != nil {
			s.metrics.UploadsTotal.WithLabelValues("file", "rejected").Inc()
			return nil, err
		}
		pending = append(pending, pendingUpload{src: f, mtype: mtype})
	}

	caption := trimmedOrNil(in.Caption)
	files := make([]models.File, 0, len(pending))
	for _, p := range pending {
		obj, err := s.storage.Upload(ctx, storage.UploadInput{
			Prefix:       "files",
			OwnerID:      ownerID,
			OriginalName: p.src.Name,
			ContentType:  p.mtype.String(),
			Extension:    p.mtype.Extension(),
			Body:         p.src.Content,
			Size:         p.src.Size,
		})
		if err != nil {
			s.removeObjects(ctx, files)
			s.metrics.UploadsTotal.WithLabelValues("file", "error").Inc()
			return nil, err
		}

		files = append(files, models.File{
			UserID:       ownerID,
			AlbumID:      albumID,
			ObjectKey:    obj.Key,
			OriginalName: p.src.Name,
			MimeType:     p.mtype.String(),
			Size:         p.src.Size,
			URL:          obj.URL,
			Caption:      caption,
			PrivacyLevel: privacy,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		for i := range files {
			if err := repo.File.Create(ctx, &files[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeObjects(ctx, files)
		s.metrics.UploadsTotal.WithLabelValues("file", "error").Add(float64(len(files)))
		return nil, err
	}

	s.metrics.UploadsTotal.WithLabelValues("file", "ok").Add(float64(len(files)))
	for i := range files {
		s.resolveURL(ctx, &files[i])
	}
	return files, nil
}

func (s *fileService) removeObjects(ctx context.Context, files []models.File) {
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.ObjectKey); err != nil {
			s.log.WithError(err).WithField("object_key", f.ObjectKey).Error("failed to remove orphaned object")
		}
	}
}

// resolveURL swaps the stored URL of a non-public file for a presigned one.
func (s *fileService) resolveURL(ctx context.Context, f *models.File) {
	resolveFileURL(ctx, s.storage, s.log, f)
}

func resolveFileURL(ctx context.Context, store storage.Storage, log logrus.FieldLogger, f *models.File) {
	if f.PrivacyLevel == models.PrivacyPublic || f.ObjectKey == "" {
		return
	}
	u, err := store.PresignedURL(ctx, f.ObjectKey)
	if err != nil {
		log.WithError(err).WithField("file_id", f.ID).Warn("failed to presign file url")
		return
	}
	f.URL = u
}

func (s *fileService) Get(ctx context.Context, fileID, viewerID int64) (*models.FileWithSocial, error) {
	file, err := s.files.GetWithSocial(ctx, fileID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := mustView(ctx, s.social, file.PrivacyLevel, file.UserID, viewerID); err != nil {
		return nil, err
	}

	s.resolveURL(ctx, &file.File)
	return file, nil
}

func (s *fileService) RecordView(ctx context.Context, fileID, viewerID int64) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := mustView(ctx, s.social, file.PrivacyLevel, file.UserID, viewerID); err != nil {
		return err
	}
	return s.files.IncrementViews(ctx, fileID)
}

func (s *fileService) Update(ctx context.Context, fileID, callerID int64, in UpdateFileInput) (*models.File, error) {
	if in.AlbumID == nil && in.Caption == nil && in.PrivacyLevel == nil {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(file.UserID, callerID); err != nil {
		return nil, err
	}

	if in.PrivacyLevel != nil {
		if !models.ValidPrivacy(*in.PrivacyLevel) {
			return nil, apperror.ErrInvalidPrivacy
		}
		file.PrivacyLevel = *in.PrivacyLevel
	}
	if in.Caption != nil {
		file.Caption = trimmedOrNil(in.Caption)
	}
	if in.AlbumID != nil {
		file.AlbumID, err = targetAlbum(ctx, s.albums, in.AlbumID, callerID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.files.Update(ctx, file); err != nil {
		return nil, err
	}

	s.resolveURL(ctx, file)
	return file, nil
}

// Delete removes the row first; a failure to remove the object afterwards
// is only logged.
func (s *fileService) Delete(ctx context.Context, fileID, callerID int64) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := AssertOwner(file.UserID, callerID); err != nil {
		return err
	}

	if err := s.files.Delete(ctx, fileID, callerID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.ObjectKey); err != nil {
		s.log.WithError(err).WithField("object_key", file.ObjectKey).Error("failed to delete object")
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
