package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
)

type SessionService interface {
	Issue(ctx context.Context, userID int64) (*models.Session, error)
	// IssueVia writes the new session through store, so a caller can issue
	// inside its own transaction. It does not count the session as issued.
	IssueVia(ctx context.Context, store repository.SessionRepository, userID int64) (*models.Session, error)
	Validate(ctx context.Context, token string) (*models.Identity, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64, keepToken string) error
	SweepExpired(ctx context.Context) (SweepResult, error)
}

type SweepResult struct {
	Sessions    int64
	ResetTokens int64
}

type sessionService struct {
	sessions repository.SessionRepository
	resets   repository.ResetTokenRepository
	ttl      time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSessionService(rep *repository.Repository, cfg *config.Config, m *metrics.Metrics) SessionService {
	return newSessionService(rep.Session, rep.ResetToken, cfg.Auth.SessionTTL, m, time.Now)
}

func newSessionService(
	sessions repository.SessionRepository,
	resets repository.ResetTokenRepository,
	ttl time.Duration,
	m *metrics.Metrics,
	now func() time.Time,
) *sessionService {
	return &sessionService{
		sessions: sessions,
		resets:   resets,
		ttl:      ttl,
		metrics:  m,
		now:      now,
	}
}

func (s *sessionService) Issue(ctx context.Context, userID int64) (*models.Session, error) {
	session, err := s.IssueVia(ctx, s.sessions, userID)
	if err != nil {
		return nil, err
	}
	s.metrics.SessionsIssued.Inc()
	return session, nil
}

func (s *sessionService) IssueVia(ctx context.Context, store repository.SessionRepository, userID int64) (*models.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	return session, nil
}

// Validate resolves token to its account. Every call reads the store; a
// session is valid only while now < expires_at and the account is active.
func (s *sessionService) Validate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, apperror.ErrNoToken
	}

	owner, err := s.sessions.FindOwner(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidToken
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}

	if !owner.IsActive || !s.now().Before(owner.ExpiresAt) {
		return nil, apperror.ErrInvalidToken
	}

	identity := owner.Identity
	return &identity, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	n, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return err
	}
	s.metrics.SessionsRevoked.Add(float64(n))
	return nil
}

// RevokeAllForUser drops every session of the user except keepToken. An
// empty keepToken drops them all.
func (s *sessionService) RevokeAllForUser(ctx context.Context, userID int64, keepToken string) error {
	n, err := s.sessions.DeleteByUser(ctx, userID, keepToken)
	if err != nil {
		return err
	}
	s.metrics.SessionsRevoked.Add(float64(n))
	return nil
}

func (s *sessionService) SweepExpired(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()

	sessions, sessErr := s.sessions.DeleteExpired(ctx, now)
	if sessErr == nil {
		res.Sessions = sessions
		s.metrics.SweepDeleted.WithLabelValues("session").Add(float64(sessions))
	}

	resets, resetErr := s.resets.DeleteExpired(ctx, now)
	if resetErr == nil {
		res.ResetTokens = resets
		s.metrics.SweepDeleted.WithLabelValues("reset_token").Add(float64(resets))
	}

	return res, errors.Join(sessErr, resetErr)
}
