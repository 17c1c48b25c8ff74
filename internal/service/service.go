package service

import (
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/mailer"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/storage"
	"github.com/w8990/album/internal/throttle"
)

type Service struct {
	Session SessionService
	Auth    AuthService
	User    UserService
	Album   AlbumService
	File    FileService
	Social  SocialService
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Repo     *repository.Repository
	Tx       repository.Transactor
	Storage  storage.Storage
	Throttle throttle.LoginThrottle
	Mailer   mailer.Mailer
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func NewService(deps Deps, cfg *config.Config) *Service {
	sessions := NewSessionService(deps.Repo, cfg, deps.Metrics)
	return &Service{
		Session: sessions,
		Auth:    NewAuthService(sessions, deps.Repo, deps.Tx, deps.Throttle, deps.Mailer, deps.Metrics, cfg, deps.Log),
		User:    NewUserService(deps.Repo, deps.Storage, deps.Metrics, cfg, deps.Log),
		Album:   NewAlbumService(deps.Repo, deps.Tx, deps.Storage, deps.Log),
		File:    NewFileService(deps.Repo, deps.Tx, deps.Storage, deps.Metrics, cfg, deps.Log),
		Social:  NewSocialService(deps.Repo),
	}
}
