package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/middleware"
)

type RouterDeps struct {
	Auth     *middleware.Auth
	Limiter  *middleware.RateLimiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the API under /api plus /health and /metrics, and wraps
// it with the request-scoped middleware chain.
func NewRouter(h *Handlers, deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(middleware.Metrics(deps.Metrics)))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, apperror.ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"}, http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	required := func(f http.HandlerFunc) http.Handler { return deps.Auth.RequireAuth(f) }
	optional := func(f http.HandlerFunc) http.Handler { return deps.Auth.OptionalAuth(f) }
	limited := func(f http.HandlerFunc) http.Handler { return deps.Limiter.Limit(f) }

	api := r.PathPrefix("/api").Subrouter()

	// auth
	api.Handle("/auth/register", limited(h.Register)).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(h.Login)).Methods(http.MethodPost)
	api.Handle("/auth/forgot-password", limited(h.ForgotPassword)).Methods(http.MethodPost)
	api.Handle("/auth/reset-password", limited(h.ResetPassword)).Methods(http.MethodPost)
	api.Handle("/auth/logout", required(h.Logout)).Methods(http.MethodPost)
	api.Handle("/auth/me", required(h.Me)).Methods(http.MethodGet)
	api.Handle("/auth/me", required(h.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/auth/avatar", required(h.UploadAvatar)).Methods(http.MethodPost)
	api.Handle("/auth/password", required(h.ChangePassword)).Methods(http.MethodPut)

	// users
	api.Handle("/users/{id:[0-9]+}", optional(h.GetUser)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/stats", optional(h.GetUserStats)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/follow", required(h.Follow)).Methods(http.MethodPost)
	api.Handle("/users/{id:[0-9]+}/follow", required(h.Unfollow)).Methods(http.MethodDelete)
	api.Handle("/users/{id:[0-9]+}/followers", optional(h.Followers)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/following", optional(h.Following)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/favorites", optional(h.Favorites)).Methods(http.MethodGet)

	// albums
	api.Handle("/albums", required(h.ListAlbums)).Methods(http.MethodGet)
	api.Handle("/albums", required(h.CreateAlbum)).Methods(http.MethodPost)
	api.Handle("/albums/{id:[0-9]+}", optional(h.GetAlbum)).Methods(http.MethodGet)
	api.Handle("/albums/{id:[0-9]+}", required(h.UpdateAlbum)).Methods(http.MethodPut)
	api.Handle("/albums/{id:[0-9]+}", required(h.DeleteAlbum)).Methods(http.MethodDelete)
	api.Handle("/albums/{id:[0-9]+}/files", optional(h.ListAlbumFiles)).Methods(http.MethodGet)

	// files
	api.Handle("/files", required(h.UploadFiles)).Methods(http.MethodPost)
	api.Handle("/files/{id:[0-9]+}", optional(h.GetFile)).Methods(http.MethodGet)
	api.Handle("/files/{id:[0-9]+}", required(h.UpdateFile)).Methods(http.MethodPut)
	api.Handle("/files/{id:[0-9]+}", required(h.DeleteFile)).Methods(http.MethodDelete)
	api.Handle("/files/{id:[0-9]+}/view", optional(h.RecordView)).Methods(http.MethodPost)
	api.Handle("/files/{id:[0-9]+}/like", required(h.ToggleLike)).Methods(http.MethodPost)
	api.Handle("/files/{id:[0-9]+}/favorite", required(h.ToggleFavorite)).Methods(http.MethodPost)
	api.Handle("/files/{id:[0-9]+}/comments", optional(h.ListComments)).Methods(http.MethodGet)
	api.Handle("/files/{id:[0-9]+}/comments", required(h.AddComment)).Methods(http.MethodPost)

	// social
	api.Handle("/comments/{id:[0-9]+}", required(h.DeleteComment)).Methods(http.MethodDelete)
	api.Handle("/social/feed", optional(h.Feed)).Methods(http.MethodGet)

	return middleware.Chain(r,
		middleware.RequestID,
		middleware.Logging(h.Log),
		middleware.Recovery(h.Log),
		middleware.CORS(h.Cfg.Server.CORSOrigin),
	)
}
