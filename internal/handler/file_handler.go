package handlers

import (
	"net/http"

	"github.com/w8990/album/internal/contextkeys"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/service"
)

type UpdateFileRequest struct {
	AlbumID      *int64  `json:"album_id" validate:"omitempty,min=0"`
	Caption      *string `json:"caption" validate:"omitempty,max=1000"`
	PrivacyLevel *string `json:"privacy_level" validate:"omitempty,privacy"`
}

type FilesResponse struct {
	Files []models.File `json:"files"`
}

type FileResponse struct {
	File *models.File `json:"file"`
}

type FileDetailResponse struct {
	File        *models.FileWithSocial `json:"file"`
	Likes       int64                  `json:"likes"`
	Favorites   int64                  `json:"favorites"`
	Comments    int64                  `json:"comments"`
	IsLiked     bool                   `json:"is_liked"`
	IsFavorited bool                   `json:"is_favorited"`
}

// UploadFiles accepts up to service.MaxFilesPerUpload parts named "files".
func (h *Handlers) UploadFiles(w http.ResponseWriter, r *http.Request) {
	form, err := parseMultipart(w, r, h.Cfg.MaxUploadSize*service.MaxFilesPerUpload)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer form.RemoveAll()

	albumID, err := optionalID(r.FormValue("album_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	in := service.UploadInput{
		AlbumID:      albumID,
		PrivacyLevel: r.FormValue("privacy_level"),
	}
	if captions, ok := form.Value["caption"]; ok && len(captions) > 0 {
		in.Caption = &captions[0]
	}

	in.Files, err = openParts(form.File["files"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer closeParts(in.Files)

	files, err := h.FileService.Upload(r.Context(), contextkeys.UserID(r.Context()), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, FilesResponse{Files: files}, http.StatusCreated)
}

func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	file, err := h.FileService.Get(r.Context(), fileID, contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, FileDetailResponse{
		File:        file,
		Likes:       file.Likes,
		Favorites:   file.Favorites,
		Comments:    file.Comments,
		IsLiked:     file.IsLiked,
		IsFavorited: file.IsFavorited,
	}, http.StatusOK)
}

func (h *Handlers) RecordView(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.FileService.RecordView(r.Context(), fileID, contextkeys.UserID(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}

func (h *Handlers) UpdateFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req UpdateFileRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	file, err := h.FileService.Update(r.Context(), fileID, contextkeys.UserID(r.Context()), service.UpdateFileInput{
		AlbumID:      req.AlbumID,
		Caption:      req.Caption,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, FileResponse{File: file}, http.StatusOK)
}

func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.FileService.Delete(r.Context(), fileID, contextkeys.UserID(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}
