package handlers

import (
	"net/http"

	"github.com/w8990/album/internal/contextkeys"
)

type FollowResponse struct {
	Success   bool `json:"success"`
	Following bool `json:"following"`
}

// GetUser returns a public profile. Email and last login are only shown to
// the account itself.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	user, err := h.UserService.Profile(r.Context(), userID, contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, UserResponse{User: user}, http.StatusOK)
}

func (h *Handlers) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	stats, err := h.UserService.Stats(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, stats, http.StatusOK)
}

func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, true)
}

func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, false)
}

func (h *Handlers) setFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	targetID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	callerID := contextkeys.UserID(r.Context())
	if follow {
		err = h.SocialService.Follow(r.Context(), callerID, targetID)
	} else {
		err = h.SocialService.Unfollow(r.Context(), callerID, targetID)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, FollowResponse{Success: true, Following: follow}, http.StatusOK)
}

func (h *Handlers) Followers(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.UserService.Followers(r.Context(), userID, listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) Following(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.UserService.Following(r.Context(), userID, listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.UserService.Favorites(r.Context(), userID, contextkeys.UserID(r.Context()), listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}
