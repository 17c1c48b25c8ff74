package handlers

import (
	"net/http"

	"github.com/w8990/album/internal/contextkeys"
)

type AddCommentRequest struct {
	Content  string `json:"content" validate:"max=2000"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=1"`
}

type LikeResponse struct {
	IsLiked bool  `json:"is_liked"`
	Likes   int64 `json:"likes"`
}

type FavoriteResponse struct {
	IsFavorited bool  `json:"is_favorited"`
	Favorites   int64 `json:"favorites"`
}

func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.SocialService.Feed(r.Context(), contextkeys.UserID(r.Context()), listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.SocialService.ToggleLike(r.Context(), fileID, contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, LikeResponse{IsLiked: res.Active, Likes: res.Count}, http.StatusOK)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.SocialService.ToggleFavorite(r.Context(), fileID, contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, FavoriteResponse{IsFavorited: res.Active, Favorites: res.Count}, http.StatusOK)
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.SocialService.ListComments(r.Context(), fileID, contextkeys.UserID(r.Context()), listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req AddCommentRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	comment, err := h.SocialService.AddComment(r.Context(), fileID, contextkeys.UserID(r.Context()), req.Content, req.ParentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.SocialService.DeleteComment(r.Context(), commentID, contextkeys.UserID(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}
