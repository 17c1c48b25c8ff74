package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/mailer"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/throttle"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID int64) (*models.User, *models.UserStats, error)
	UpdateProfile(ctx context.Context, userID int64, upd repository.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, keepToken, current, next string) error
	// ForgotPassword never reveals whether the email is known. The token is
	// returned only when the service is configured to expose it.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	tx       repository.Transactor
	sessions SessionService
	throttle throttle.LoginThrottle
	mailer   mailer.Mailer
	metrics  *metrics.Metrics
	log      logrus.FieldLogger

	bcryptCost  int
	resetTTL    time.Duration
	exposeReset bool
	now         func() time.Time
}

func NewAuthService(
	sessions SessionService,
	rep *repository.Repository,
	tx repository.Transactor,
	th throttle.LoginThrottle,
	m mailer.Mailer,
	mx *metrics.Metrics,
	cfg *config.Config,
	log logrus.FieldLogger,
) AuthService {
	return &authService{
		users:       rep.User,
		tx:          tx,
		sessions:    sessions,
		throttle:    th,
		mailer:      m,
		metrics:     mx,
		log:         log,
		bcryptCost:  cfg.Auth.BcryptCost,
		resetTTL:    cfg.Auth.ResetTokenTTL,
		exposeReset: cfg.Auth.ExposeResetToken,
		now:         time.Now,
	}
}

// Register creates the account, its default album and the first session in
// one transaction, so a failure at any step leaves no account behind.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, apperror.ErrMissingFields
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	if email := normalizeEmail(in.Email); email != "" {
		user.Email = &email
	}

	var session *models.Session
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		if err := repo.User.Create(ctx, user); err != nil {
			return err
		}

		album := &models.Album{
			UserID:       user.ID,
			Name:         models.DefaultAlbumName,
			PrivacyLevel: models.PrivacyPrivate,
		}
		if err := repo.Album.Create(ctx, album); err != nil {
			return err
		}

		var err error
		session, err = s.sessions.IssueVia(ctx, repo.Session, user.ID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repo.User.TouchLastLogin(ctx, user.ID, now); err != nil {
			return err
		}
		user.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsIssued.Inc()
	s.log.WithField("user_id", user.ID).Info("user registered")

	return &AuthResult{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Login accepts a username or, when login contains "@", an email. Unknown
// logins and wrong passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperror.ErrMissingFields
	}

	key := throttle.Key(login)
	if wait := s.lockedFor(ctx, key); wait > 0 {
		s.metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, apperror.TooManyAttempts(wait)
	}

	user, err := s.lookup(ctx, login)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	// failures also count against the account, so alternating between its
	// username and email shares one budget
	var accountKey string
	if user != nil {
		accountKey = throttle.AccountKey(user.ID)
		if wait := s.lockedFor(ctx, accountKey); wait > 0 {
			s.metrics.LoginsTotal.WithLabelValues("locked").Inc()
			return nil, apperror.TooManyAttempts(wait)
		}
	}

	if user == nil || !verifyPassword(user.PasswordHash, password) {
		s.recordFailure(ctx, key)
		if accountKey != "" {
			s.recordFailure(ctx, accountKey)
		}
		s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperror.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	for _, k := range []string{key, accountKey} {
		if err := s.throttle.Reset(ctx, k); err != nil {
			s.log.WithError(err).Warn("login throttle reset failed")
		}
	}
	s.metrics.LoginsTotal.WithLabelValues("success").Inc()

	return &AuthResult{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (s *authService) lookup(ctx context.Context, login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		return s.users.GetByEmail(ctx, normalizeEmail(login))
	}
	return s.users.GetByUsername(ctx, login)
}

// lockedFor fails open: if the throttle store is unreachable the attempt
// goes through to the password check.
func (s *authService) lockedFor(ctx context.Context, key string) time.Duration {
	wait, err := s.throttle.Locked(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("login throttle unavailable")
		return 0
	}
	return wait
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	lock, err := s.throttle.Fail(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("login throttle unavailable")
		return
	}
	if lock > 0 {
		s.log.WithField("lock", lock.String()).Warn("login locked after repeated failures")
	}
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func (s *authService) Me(ctx context.Context, userID int64) (*models.User, *models.UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.users.Stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, stats, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, upd repository.ProfileUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, apperror.ErrNoFieldsToUpdate
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		upd.Email = &email
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return nil, apperror.ErrMissingFields
		}
		upd.DisplayName = &name
	}

	return s.users.UpdateProfile(ctx, userID, upd)
}

// ChangePassword replaces the hash and revokes every other session of the
// user; keepToken stays valid.
func (s *authService) ChangePassword(ctx context.Context, userID int64, keepToken, current, next string) error {
	if current == "" || next == "" {
		return apperror.ErrMissingFields
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, current) {
		return apperror.ErrInvalidCurrentPassword
	}
	if current == next {
		return apperror.ErrSamePassword
	}

	hash, err := hashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.sessions.RevokeAllForUser(ctx, userID, keepToken)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", apperror.ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		if err := repo.ResetToken.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return repo.ResetToken.Create(ctx, &models.PasswordResetToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: s.now().Add(s.resetTTL),
		})
	})
	if err != nil {
		return "", fmt.Errorf("create reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, email, user.Username, token); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to send password reset email")
	}

	if s.exposeReset {
		return token, nil
	}
	return "", nil
}

// ResetPassword consumes token and sets the new password. The token is
// marked used in the same statement that checks it, so it works once.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperror.ErrMissingFields
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	var revoked int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repo *repository.Repository) error {
		userID, err := repo.ResetToken.Consume(ctx, token, s.now())
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrInvalidResetToken
		}
		if err != nil {
			return err
		}

		if err := repo.User.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}

		revoked, err = repo.Session.DeleteByUser(ctx, userID, "")
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.SessionsRevoked.Add(float64(revoked))
	return nil
}
