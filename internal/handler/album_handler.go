package handlers

import (
	"net/http"

	"github.com/w8990/album/internal/contextkeys"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/service"
)

type CreateAlbumRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	PrivacyLevel string  `json:"privacy_level" validate:"omitempty,privacy"`
}

type UpdateAlbumRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	PrivacyLevel *string `json:"privacy_level" validate:"omitempty,privacy"`
}

type AlbumsResponse struct {
	Albums []models.AlbumSummary `json:"albums"`
}

type AlbumResponse struct {
	Album *models.Album `json:"album"`
}

func (h *Handlers) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.AlbumService.List(r.Context(), contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if albums == nil {
		albums = []models.AlbumSummary{}
	}
	writeSuccess(w, AlbumsResponse{Albums: albums}, http.StatusOK)
}

func (h *Handlers) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req CreateAlbumRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	album, err := h.AlbumService.Create(r.Context(), contextkeys.UserID(r.Context()), service.CreateAlbumInput{
		Name:         req.Name,
		Description:  req.Description,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, AlbumResponse{Album: album}, http.StatusCreated)
}

func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	album, err := h.AlbumService.Get(r.Context(), albumID, contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, AlbumResponse{Album: album}, http.StatusOK)
}

func (h *Handlers) ListAlbumFiles(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.AlbumService.ListFiles(r.Context(), albumID, contextkeys.UserID(r.Context()), listOptions(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req UpdateAlbumRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	album, err := h.AlbumService.Update(r.Context(), albumID, contextkeys.UserID(r.Context()), service.UpdateAlbumInput{
		Name:         req.Name,
		Description:  req.Description,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, AlbumResponse{Album: album}, http.StatusOK)
}

func (h *Handlers) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.AlbumService.Delete(r.Context(), albumID, contextkeys.UserID(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}
