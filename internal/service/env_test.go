package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/throttle"
)

const sessionTTL = 30 * 24 * time.Hour

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testEnv struct {
	store   *memStore
	clock   *fakeClock
	storage *fakeStorage
	mail    *fakeMailer
	metrics *metrics.Metrics
	log     *logrus.Logger
	hook    *test.Hook

	sessions *sessionService
	auth     *authService
	albums   *albumService
	files    *fileService
	social   *socialService
	users    *userService
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{
			SessionTTL:       sessionTTL,
			ResetTokenTTL:    time.Hour,
			BcryptCost:       bcrypt.MinCost,
			LockoutThreshold: 3,
			LockoutBase:      time.Minute,
			LockoutMax:       time.Hour,
			LockoutWindow:    time.Hour,
			ExposeResetToken: true,
		},
		MaxUploadSize: 1 << 20,
		MaxAvatarSize: 1 << 10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemStore(clock.Now)
	repo := store.repository()
	log, hook := test.NewNullLogger()

	env := &testEnv{
		store:   store,
		clock:   clock,
		storage: newFakeStorage(),
		mail:    &fakeMailer{},
		metrics: metrics.New(),
		log:     log,
		hook:    hook,
	}

	th := throttle.NewMemoryThrottle(100, throttle.Policy{
		Threshold: cfg.Auth.LockoutThreshold,
		Base:      cfg.Auth.LockoutBase,
		Max:       cfg.Auth.LockoutMax,
		Window:    cfg.Auth.LockoutWindow,
	})

	env.sessions = newSessionService(repo.Session, repo.ResetToken, sessionTTL, env.metrics, clock.Now)
	env.auth = NewAuthService(env.sessions, repo, store, th, env.mail, env.metrics, cfg, log).(*authService)
	env.auth.now = clock.Now
	env.albums = NewAlbumService(repo, store, env.storage, log).(*albumService)
	env.files = NewFileService(repo, store, env.storage, env.metrics, cfg, log).(*fileService)
	env.social = NewSocialService(repo).(*socialService)
	env.users = NewUserService(repo, env.storage, env.metrics, cfg, log).(*userService)

	return env
}

func (e *testEnv) register(t *testing.T, username string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username:    username,
		Email:       username + "@x.com",
		Password:    "secret1",
		DisplayName: username,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) defaultAlbum(t *testing.T, userID int64) models.Album {
	t.Helper()
	albums, err := e.albums.List(context.Background(), userID)
	require.NoError(t, err)
	for _, a := range albums {
		if a.IsDefault() {
			return a.Album
		}
	}
	t.Fatalf("user %d has no default album", userID)
	return models.Album{}
}

func (e *testEnv) upload(t *testing.T, ownerID int64, privacy string, albumID *int64) models.File {
	t.Helper()
	files, err := e.files.Upload(context.Background(), ownerID, UploadInput{
		AlbumID:      albumID,
		PrivacyLevel: privacy,
		Files: []UploadFile{
			{Name: "photo.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)},
		},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	return files[0]
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
