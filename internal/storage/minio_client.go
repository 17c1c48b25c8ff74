package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/w8990/album/internal/config"
)

type Object struct {
	Key string
	URL string
}

type UploadInput struct {
	// Prefix groups objects by kind, e.g. "files" or "avatars".
	Prefix       string
	OwnerID      int64
	OriginalName string
	ContentType  string
	Extension    string
	Body         io.Reader
	Size         int64
}

type Storage interface {
	Upload(ctx context.Context, in UploadInput) (*Object, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

type MinIOClient struct {
	client  *minio.Client
	bucket  string
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

func NewMinIOClient(ctx context.Context, cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIO.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIO.BucketName, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIO.BucketName, minio.MakeBucketOptions{Region: cfg.MinIO.Region})
		if err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIO.BucketName, err)
		}
	}

	return &MinIOClient{
		client:  client,
		bucket:  cfg.MinIO.BucketName,
		baseURL: publicBaseURL(cfg.MinIO.Endpoint, cfg.MinIO.UseSSL),
		expiry:  cfg.MinIO.URLExpiry,
		now:     time.Now,
	}, nil
}

func publicBaseURL(endpoint string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimSuffix(endpoint, "/"))
}

// objectKey lays objects out as <prefix>/<owner>/<yyyy>/<mm>/<uuid><ext>.
func objectKey(prefix string, ownerID int64, at time.Time, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%d/%d/%02d/%s%s",
		prefix,
		ownerID,
		at.Year(),
		at.Month(),
		uuid.New().String(),
		strings.ToLower(ext))
}

func (m *MinIOClient) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	now := m.now()
	key := objectKey(in.Prefix, in.OwnerID, now, in.Extension)

	_, err := m.client.PutObject(ctx, m.bucket, key, in.Body, in.Size,
		minio.PutObjectOptions{
			ContentType: in.ContentType,
			UserMetadata: map[string]string{
				"original-filename": in.OriginalName,
				"owner-id":          fmt.Sprintf("%d", in.OwnerID),
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return nil, fmt.Errorf("upload to minio: %w", err)
	}

	return &Object{
		Key: key,
		URL: fmt.Sprintf("%s/%s/%s", m.baseURL, m.bucket, key),
	}, nil
}

func (m *MinIOClient) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete from minio: %w", err)
	}
	return nil
}

// PresignedURL returns a time-limited GET link for objects that are not
// public.
func (m *MinIOClient) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

func (m *MinIOClient) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
