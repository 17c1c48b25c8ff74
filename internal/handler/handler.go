package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/service"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	AuthService   service.AuthService
	UserService   service.UserService
	AlbumService  service.AlbumService
	FileService   service.FileService
	SocialService service.SocialService
	Checks        map[string]HealthCheck
	Cfg           *config.Config
	Validate      *validator.Validate
	Log           logrus.FieldLogger
}

func NewHandlers(svc *service.Service, checks map[string]HealthCheck, cfg *config.Config, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		AuthService:   svc.Auth,
		UserService:   svc.User,
		AlbumService:  svc.Album,
		FileService:   svc.File,
		SocialService: svc.Social,
		Checks:        checks,
		Cfg:           cfg,
		Validate:      NewValidator(),
		Log:           log,
	}
}
