package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/contextkeys"
	"github.com/w8990/album/internal/models"
)

// SessionHeader is accepted when the Authorization header carries no bearer token.
const SessionHeader = "X-Session-Token"

type TokenValidator interface {
	Validate(ctx context.Context, token string) (*models.Identity, error)
}

type Auth struct {
	validator TokenValidator
	log       logrus.FieldLogger
}

func NewAuth(validator TokenValidator, log logrus.FieldLogger) *Auth {
	return &Auth{validator: validator, log: log}
}

// ExtractToken reads "Authorization: Bearer <token>" and falls back to the
// custom session header.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// RequireAuth rejects the request unless it carries a valid session.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			writeError(w, apperror.ErrNoToken)
			return
		}

		identity, err := a.validator.Validate(r.Context(), token)
		if err != nil {
			appErr, ok := apperror.From(err)
			if !ok {
				a.log.WithError(err).WithField("request_id", contextkeys.RequestIDFrom(r.Context())).
					Error("session validation failed")
			}
			writeError(w, appErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), identity, token)))
	})
}

// OptionalAuth attaches the identity when a valid session is presented and
// otherwise lets the request through anonymously.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.validator.Validate(r.Context(), token)
		if err != nil {
			if _, ok := apperror.From(err); !ok {
				a.log.WithError(err).Warn("optional session validation failed, continuing anonymously")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), identity, token)))
	})
}

func withSession(ctx context.Context, identity *models.Identity, token string) context.Context {
	return contextkeys.WithToken(contextkeys.WithIdentity(ctx, identity), token)
}
