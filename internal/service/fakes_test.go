package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/storage"
)

type pair [2]int64

// memData is everything the in-memory store holds. Values, not pointers, so
// a copy is a full snapshot for transaction rollback.
type memData struct {
	nextID    int64
	users     map[int64]models.User
	sessions  map[string]models.Session
	resets    map[string]models.PasswordResetToken
	albums    map[int64]models.Album
	files     map[int64]models.File
	comments  map[int64]models.Comment
	follows   map[pair]time.Time
	likes     map[pair]bool
	favorites map[pair]time.Time
}

func (d memData) clone() memData {
	c := d
	c.users = cloneMap(d.users)
	c.sessions = cloneMap(d.sessions)
	c.resets = cloneMap(d.resets)
	c.albums = cloneMap(d.albums)
	c.files = cloneMap(d.files)
	c.comments = cloneMap(d.comments)
	c.follows = cloneMap(d.follows)
	c.likes = cloneMap(d.likes)
	c.favorites = cloneMap(d.favorites)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

type memStore struct {
	mu   sync.Mutex
	data memData
	now  func() time.Time

	// failures injected by tests
	failSessionCreate error
	failFileCreate    error
	failFindOwner     error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now: now,
		data: memData{
			users:     map[int64]models.User{},
			sessions:  map[string]models.Session{},
			resets:    map[string]models.PasswordResetToken{},
			albums:    map[int64]models.Album{},
			files:     map[int64]models.File{},
			comments:  map[int64]models.Comment{},
			follows:   map[pair]time.Time{},
			likes:     map[pair]bool{},
			favorites: map[pair]time.Time{},
		},
	}
}

func (s *memStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:       memUsers{s},
		Session:    memSessions{s},
		ResetToken: memResets{s},
		Album:      memAlbums{s},
		File:       memFiles{s},
		Social:     memSocial{s},
	}
}

// WithinTx restores the snapshot taken before fn when fn fails.
func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repo *repository.Repository) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.repository()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) sessionCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.data.sessions {
		if sess.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memStore) setActive(userID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.data.users[userID]
	u.IsActive = active
	s.data.users[userID] = u
}

// users

type memUsers struct{ s *memStore }

func (r memUsers) conflict(username string, email *string, exceptID int64) error {
	for _, u := range r.s.data.users {
		if !u.IsActive || u.ID == exceptID {
			continue
		}
		if username != "" && strings.EqualFold(u.Username, username) {
			return apperror.ErrUsernameExists
		}
		if email != nil && u.Email != nil && strings.EqualFold(*u.Email, *email) {
			return apperror.ErrEmailExists
		}
	}
	return nil
}

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflict(user.Username, user.Email, 0); err != nil {
		return err
	}
	user.ID = r.s.id()
	user.IsActive = true
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.data.users[user.ID] = *user
	return nil
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.IsActive && match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, userID int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == userID })
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email != nil && strings.EqualFold(*u.Email, email) })
}

func (r memUsers) UpdateProfile(_ context.Context, userID int64, upd repository.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[userID]
	if !ok || !u.IsActive {
		return nil, apperror.ErrNotFound
	}
	if upd.Email != nil && *upd.Email != "" {
		if err := r.conflict("", upd.Email, userID); err != nil {
			return nil, err
		}
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Email != nil {
		if *upd.Email == "" {
			u.Email = nil
		} else {
			u.Email = upd.Email
		}
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	if upd.Location != nil {
		u.Location = upd.Location
	}
	if upd.Website != nil {
		u.Website = upd.Website
	}
	r.s.data.users[userID] = u
	return &u, nil
}

func (r memUsers) update(userID int64, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[userID]
	if !ok || !u.IsActive {
		return apperror.ErrNotFound
	}
	fn(&u)
	r.s.data.users[userID] = u
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	return r.update(userID, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r memUsers) UpdateAvatar(_ context.Context, userID int64, avatarURL string) error {
	return r.update(userID, func(u *models.User) { u.AvatarURL = &avatarURL })
}

func (r memUsers) TouchLastLogin(_ context.Context, userID int64, at time.Time) error {
	return r.update(userID, func(u *models.User) { u.LastLoginAt = &at })
}

func (r memUsers) Stats(_ context.Context, userID int64) (*models.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var st models.UserStats
	for _, f := range r.s.data.files {
		if f.UserID == userID {
			st.Files++
		}
	}
	for _, a := range r.s.data.albums {
		if a.UserID == userID {
			st.Albums++
		}
	}
	for p := range r.s.data.follows {
		if p[1] == userID {
			st.Followers++
		}
		if p[0] == userID {
			st.Following++
		}
	}
	for p := range r.s.data.likes {
		if f, ok := r.s.data.files[p[0]]; ok && f.UserID == userID {
			st.LikesReceived++
		}
	}
	for p := range r.s.data.favorites {
		if p[1] == userID {
			st.Favorites++
		}
	}
	return &st, nil
}

// sessions

type memSessions struct{ s *memStore }

func (r memSessions) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failSessionCreate != nil {
		return r.s.failSessionCreate
	}
	if _, dup := r.s.data.sessions[session.Token]; dup {
		return errors.New("duplicate session token")
	}
	session.ID = r.s.id()
	session.CreatedAt = r.s.now()
	r.s.data.sessions[session.Token] = *session
	return nil
}

func (r memSessions) FindOwner(_ context.Context, token string) (*models.SessionOwner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failFindOwner != nil {
		return nil, r.s.failFindOwner
	}
	sess, ok := r.s.data.sessions[token]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	u := r.s.data.users[sess.UserID]
	return &models.SessionOwner{
		Identity: models.Identity{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
		},
		IsActive:  u.IsActive,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (r memSessions) Delete(_ context.Context, token string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.sessions[token]; !ok {
		return 0, nil
	}
	delete(r.s.data.sessions, token)
	return 1, nil
}

func (r memSessions) DeleteByUser(_ context.Context, userID int64, exceptToken string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for token, sess := range r.s.data.sessions {
		if sess.UserID == userID && token != exceptToken {
			delete(r.s.data.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for token, sess := range r.s.data.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.s.data.sessions, token)
			n++
		}
	}
	return n, nil
}

// reset tokens

type memResets struct{ s *memStore }

func (r memResets) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = r.s.id()
	token.CreatedAt = r.s.now()
	r.s.data.resets[token.Token] = *token
	return nil
}

func (r memResets) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.data.resets {
		if t.UserID == userID {
			delete(r.s.data.resets, k)
		}
	}
	return nil
}

func (r memResets) Consume(_ context.Context, token string, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.resets[token]
	if !ok || t.IsUsed || !t.ExpiresAt.After(now) {
		return 0, apperror.ErrNotFound
	}
	t.IsUsed = true
	t.UsedAt = &now
	r.s.data.resets[token] = t
	return t.UserID, nil
}

func (r memResets) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.data.resets {
		if t.IsUsed || !t.ExpiresAt.After(now) {
			delete(r.s.data.resets, k)
			n++
		}
	}
	return n, nil
}

// albums

type memAlbums struct{ s *memStore }

func (r memAlbums) Create(_ context.Context, album *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	album.ID = r.s.id()
	album.CreatedAt = r.s.now()
	album.UpdatedAt = album.CreatedAt
	r.s.data.albums[album.ID] = *album
	return nil
}

func (r memAlbums) GetByID(_ context.Context, albumID int64) (*models.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.albums[albumID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &a, nil
}

func (r memAlbums) ListByUser(_ context.Context, userID int64) ([]models.AlbumSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.AlbumSummary{}
	for _, a := range r.s.data.albums {
		if a.UserID != userID {
			continue
		}
		sum := models.AlbumSummary{Album: a}
		for _, f := range r.s.data.files {
			if f.UserID != userID {
				continue
			}
			if (f.AlbumID != nil && *f.AlbumID == a.ID) || (f.AlbumID == nil && a.IsDefault()) {
				sum.FileCount++
				sum.TotalSize += f.Size
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAlbums) Update(_ context.Context, album *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.albums[album.ID]
	if !ok || a.UserID != album.UserID {
		return apperror.ErrNotFound
	}
	album.UpdatedAt = r.s.now()
	r.s.data.albums[album.ID] = *album
	return nil
}

func (r memAlbums) DetachFiles(_ context.Context, albumID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, f := range r.s.data.files {
		if f.AlbumID != nil && *f.AlbumID == albumID {
			f.AlbumID = nil
			r.s.data.files[id] = f
			n++
		}
	}
	return n, nil
}

func (r memAlbums) Delete(_ context.Context, albumID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.albums[albumID]
	if !ok || a.UserID != userID {
		return apperror.ErrNotFound
	}
	delete(r.s.data.albums, albumID)
	return nil
}

// files

type memFiles struct{ s *memStore }

func (r memFiles) Create(_ context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFileCreate != nil {
		return r.s.failFileCreate
	}
	file.ID = r.s.id()
	file.CreatedAt = r.s.now()
	file.UpdatedAt = file.CreatedAt
	r.s.data.files[file.ID] = *file
	return nil
}

func (r memFiles) GetByID(_ context.Context, fileID int64) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.files[fileID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &f, nil
}

func (r memFiles) withSocial(f models.File, viewerID int64) models.FileWithSocial {
	u := r.s.data.users[f.UserID]
	out := models.FileWithSocial{
		File:          f,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		UserAvatarURL: u.AvatarURL,
	}
	for p := range r.s.data.likes {
		if p[0] == f.ID {
			out.Likes++
			out.IsLiked = out.IsLiked || p[1] == viewerID
		}
	}
	for p := range r.s.data.favorites {
		if p[0] == f.ID {
			out.Favorites++
			out.IsFavorited = out.IsFavorited || p[1] == viewerID
		}
	}
	for _, c := range r.s.data.comments {
		if c.FileID == f.ID {
			out.Comments++
		}
	}
	return out
}

func (r memFiles) GetWithSocial(_ context.Context, fileID, viewerID int64) (*models.FileWithSocial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.files[fileID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	out := r.withSocial(f, viewerID)
	return &out, nil
}

func (r memFiles) sorted(match func(models.File) bool) []models.File {
	var out []models.File
	for _, f := range r.s.data.files {
		if match(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func pageOf[T any](all []T, opts models.ListOptions) []T {
	start := opts.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (r memFiles) ListFeed(_ context.Context, opts models.ListOptions, viewerID int64) ([]models.FileWithSocial, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(f models.File) bool { return f.PrivacyLevel == models.PrivacyPublic })
	var out []models.FileWithSocial
	for _, f := range pageOf(all, opts) {
		out = append(out, r.withSocial(f, viewerID))
	}
	return out, int64(len(all)), nil
}

func (r memFiles) ListByAlbum(_ context.Context, filter repository.AlbumFilesFilter, opts models.ListOptions) ([]models.File, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(f models.File) bool {
		if f.UserID != filter.OwnerID {
			return false
		}
		if filter.AlbumID == nil && f.AlbumID != nil {
			return false
		}
		if filter.AlbumID != nil && (f.AlbumID == nil || *f.AlbumID != *filter.AlbumID) {
			return false
		}
		return filter.IncludePrivate || f.PrivacyLevel == models.PrivacyPublic
	})
	return pageOf(all, opts), int64(len(all)), nil
}

func (r memFiles) ListFavorites(_ context.Context, userID, viewerID int64, opts models.ListOptions) ([]models.FileWithSocial, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(f models.File) bool {
		_, fav := r.s.data.favorites[pair{f.ID, userID}]
		return fav && f.PrivacyLevel == models.PrivacyPublic
	})
	var out []models.FileWithSocial
	for _, f := range pageOf(all, opts) {
		out = append(out, r.withSocial(f, viewerID))
	}
	return out, int64(len(all)), nil
}

func (r memFiles) Update(_ context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.files[file.ID]
	if !ok || f.UserID != file.UserID {
		return apperror.ErrNotFound
	}
	file.UpdatedAt = r.s.now()
	r.s.data.files[file.ID] = *file
	return nil
}

func (r memFiles) Delete(_ context.Context, fileID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.files[fileID]
	if !ok || f.UserID != userID {
		return apperror.ErrNotFound
	}
	delete(r.s.data.files, fileID)
	return nil
}

func (r memFiles) IncrementViews(_ context.Context, fileID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.data.files[fileID]
	if !ok {
		return apperror.ErrNotFound
	}
	f.Views++
	r.s.data.files[fileID] = f
	return nil
}

// social

type memSocial struct{ s *memStore }

func (r memSocial) ToggleLike(_ context.Context, fileID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pair{fileID, userID}
	if r.s.data.likes[key] {
		delete(r.s.data.likes, key)
		return false, nil
	}
	r.s.data.likes[key] = true
	return true, nil
}

func (r memSocial) ToggleFavorite(_ context.Context, fileID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pair{fileID, userID}
	if _, ok := r.s.data.favorites[key]; ok {
		delete(r.s.data.favorites, key)
		return false, nil
	}
	r.s.data.favorites[key] = r.s.now()
	return true, nil
}

func (r memSocial) CountLikes(_ context.Context, fileID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for p := range r.s.data.likes {
		if p[0] == fileID {
			n++
		}
	}
	return n, nil
}

func (r memSocial) CountFavorites(_ context.Context, fileID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for p := range r.s.data.favorites {
		if p[0] == fileID {
			n++
		}
	}
	return n, nil
}

func (r memSocial) CreateComment(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.id()
	comment.CreatedAt = r.s.now()
	comment.UpdatedAt = comment.CreatedAt
	r.s.data.comments[comment.ID] = *comment
	return nil
}

func (r memSocial) GetComment(_ context.Context, commentID int64) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[commentID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	u := r.s.data.users[c.UserID]
	c.Username = u.Username
	c.DisplayName = u.DisplayName
	return &c, nil
}

func (r memSocial) ListComments(_ context.Context, fileID int64, opts models.ListOptions) ([]models.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.Comment
	for _, c := range r.s.data.comments {
		if c.FileID == fileID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return pageOf(all, opts), int64(len(all)), nil
}

func (r memSocial) DeleteComment(_ context.Context, commentID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[commentID]
	if !ok || c.UserID != userID {
		return apperror.ErrNotFound
	}
	delete(r.s.data.comments, commentID)
	return nil
}

func (r memSocial) Follow(_ context.Context, followerID, followingID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.follows[pair{followerID, followingID}]; !ok {
		r.s.data.follows[pair{followerID, followingID}] = r.s.now()
	}
	return nil
}

func (r memSocial) Unfollow(_ context.Context, followerID, followingID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.follows, pair{followerID, followingID})
	return nil
}

func (r memSocial) IsFollowing(_ context.Context, followerID, followingID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.data.follows[pair{followerID, followingID}]
	return ok, nil
}

func (r memSocial) list(userID int64, followers bool, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.FollowUser
	for p, at := range r.s.data.follows {
		var other int64
		switch {
		case followers && p[1] == userID:
			other = p[0]
		case !followers && p[0] == userID:
			other = p[1]
		default:
			continue
		}
		u := r.s.data.users[other]
		all = append(all, models.FollowUser{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, FollowedAt: at})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return pageOf(all, opts), int64(len(all)), nil
}

func (r memSocial) ListFollowers(_ context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	return r.list(userID, true, opts)
}

func (r memSocial) ListFollowing(_ context.Context, userID int64, opts models.ListOptions) ([]models.FollowUser, int64, error) {
	return r.list(userID, false, opts)
}

// collaborators

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	failAfter int // fail the upload after this many successes; 0 disables
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, in storage.UploadInput) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && f.seq >= f.failAfter {
		return nil, errors.New("storage unavailable")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.seq++
	key := fmt.Sprintf("%s/%d/obj-%d%s", in.Prefix, in.OwnerID, f.seq, in.Extension)
	f.objects[key] = body
	return &storage.Object{Key: key, URL: "http://minio/bucket/" + key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, key string) (string, error) {
	return "http://minio/bucket/" + key + "?X-Amz-Signature=sig", nil
}

func (f *fakeStorage) Ping(context.Context) error { return nil }

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type sentReset struct {
	to, username, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentReset{to: to, username: username, token: token})
	return nil
}

// brokenThrottle simulates an unreachable lockout store.
type brokenThrottle struct{}

func (brokenThrottle) Locked(context.Context, string) (time.Duration, error) {
	return 0, errors.New("redis: connection refused")
}

func (brokenThrottle) Fail(context.Context, string) (time.Duration, error) {
	return 0, errors.New("redis: connection refused")
}

func (brokenThrottle) Reset(context.Context, string) error {
	return errors.New("redis: connection refused")
}
