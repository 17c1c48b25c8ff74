package models

import (
	"time"
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
	PrivacyFriends = "friends"

	// DefaultAlbumName is reserved for the per-account unfiled container.
	DefaultAlbumName = "Unfiled"
)

func ValidPrivacy(level string) bool {
	switch level {
	case PrivacyPublic, PrivacyPrivate, PrivacyFriends:
		return true
	}
	return false
}

type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        *string    `json:"email,omitempty" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	AvatarURL    *string    `json:"avatar_url" db:"avatar_url"`
	Bio          *string    `json:"bio" db:"bio"`
	Location     *string    `json:"location" db:"location"`
	Website      *string    `json:"website" db:"website"`
	IsActive     bool       `json:"-" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// Identity is what a valid session resolves to. It never carries credentials.
type Identity struct {
	ID          int64   `json:"id" db:"user_id"`
	Username    string  `json:"username" db:"username"`
	DisplayName string  `json:"display_name" db:"display_name"`
	AvatarURL   *string `json:"avatar_url" db:"avatar_url"`
}

type Session struct {
	ID        int64     `json:"-" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"-" db:"session_token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SessionOwner is a session row joined with the fields of its account
// needed to decide validity.
type SessionOwner struct {
	Identity
	IsActive  bool      `db:"is_active"`
	ExpiresAt time.Time `db:"expires_at"`
}

type PasswordResetToken struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	IsUsed    bool       `db:"is_used"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

type Album struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	PrivacyLevel string    `json:"privacy_level" db:"privacy_level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (a *Album) IsDefault() bool {
	return a.Name == DefaultAlbumName
}

type AlbumSummary struct {
	Album
	FileCount int64   `json:"file_count" db:"file_count"`
	TotalSize int64   `json:"total_size" db:"total_size"`
	CoverURL  *string `json:"cover_url" db:"cover_url"`
}

type File struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	AlbumID      *int64    `json:"album_id" db:"album_id"`
	ObjectKey    string    `json:"-" db:"object_key"`
	OriginalName string    `json:"original_name" db:"original_name"`
	MimeType     string    `json:"mime_type" db:"mime_type"`
	Size         int64     `json:"size" db:"size"`
	URL          string    `json:"url" db:"url"`
	Caption      *string   `json:"caption" db:"caption"`
	PrivacyLevel string    `json:"privacy_level" db:"privacy_level"`
	Views        int64     `json:"views" db:"views"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FileWithSocial is a file as shown in the feed: counts plus the viewer's
// own like/favorite flags (false for anonymous viewers).
type FileWithSocial struct {
	File
	Username      string  `json:"username" db:"username"`
	DisplayName   string  `json:"display_name" db:"display_name"`
	UserAvatarURL *string `json:"user_avatar_url" db:"user_avatar_url"`
	Likes         int64   `json:"likes" db:"likes"`
	Favorites     int64   `json:"favorites" db:"favorites"`
	Comments      int64   `json:"comments" db:"comments"`
	IsLiked       bool    `json:"is_liked" db:"is_liked"`
	IsFavorited   bool    `json:"is_favorited" db:"is_favorited"`
}

type Comment struct {
	ID          int64     `json:"id" db:"id"`
	FileID      int64     `json:"file_id" db:"file_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	ParentID    *int64    `json:"parent_id" db:"parent_id"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AvatarURL   *string   `json:"avatar_url" db:"avatar_url"`
}

type FollowUser struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AvatarURL   *string   `json:"avatar_url" db:"avatar_url"`
	Bio         *string   `json:"bio" db:"bio"`
	FollowedAt  time.Time `json:"followed_at" db:"followed_at"`
}

type UserStats struct {
	Files         int64 `json:"files" db:"files"`
	Albums        int64 `json:"albums" db:"albums"`
	Followers     int64 `json:"followers" db:"followers"`
	Following     int64 `json:"following" db:"following"`
	LikesReceived int64 `json:"likes_received" db:"likes_received"`
	Favorites     int64 `json:"favorites" db:"favorites"`
}
