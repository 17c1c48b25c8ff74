package service

import (
	"context"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
)

// AssertOwner allows a mutation only when the caller owns the resource.
func AssertOwner(ownerID, callerID int64) error {
	if callerID == 0 || ownerID != callerID {
		return apperror.ErrForbidden
	}
	return nil
}

// canView applies the read rules: public to everyone, private to the owner,
// friends to the owner and the accounts the owner follows.
func canView(ctx context.Context, social repository.SocialRepository, privacy string, ownerID, viewerID int64) (bool, error) {
	if privacy == models.PrivacyPublic {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	if ownerID == viewerID {
		return true, nil
	}
	if privacy == models.PrivacyFriends {
		return social.IsFollowing(ctx, ownerID, viewerID)
	}
	return false, nil
}

// mustView turns a hidden resource into NotFound so its existence is not
// revealed.
func mustView(ctx context.Context, social repository.SocialRepository, privacy string, ownerID, viewerID int64) error {
	ok, err := canView(ctx, social, privacy, ownerID, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrNotFound
	}
	return nil
}

func normalizePrivacy(level string) (string, error) {
	if level == "" {
		return models.PrivacyPublic, nil
	}
	if !models.ValidPrivacy(level) {
		return "", apperror.ErrInvalidPrivacy
	}
	return level, nil
}
