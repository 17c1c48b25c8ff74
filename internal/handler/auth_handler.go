package handlers

import (
	"net/http"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/contextkeys"
	"github.com/w8990/album/internal/models"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/service"
)

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"max=50"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Website     *string `json:"website" validate:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type MeResponse struct {
	User  *models.User      `json:"user"`
	Stats *models.UserStats `json:"stats"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type ForgotPasswordResponse struct {
	Success    bool   `json:"success"`
	ResetToken string `json:"reset_token,omitempty"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, res, http.StatusOK)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, res, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), contextkeys.TokenFrom(r.Context())); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, stats, err := h.AuthService.Me(r.Context(), contextkeys.UserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, MeResponse{User: user, Stats: stats}, http.StatusOK)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	user, err := h.AuthService.UpdateProfile(r.Context(), contextkeys.UserID(r.Context()), repository.ProfileUpdate{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Bio:         req.Bio,
		Location:    req.Location,
		Website:     req.Website,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, UserResponse{User: user}, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	form, err := parseMultipart(w, r, h.Cfg.MaxAvatarSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer form.RemoveAll()

	files, err := openParts(form.File["avatar"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer closeParts(files)
	if len(files) != 1 {
		h.writeServiceError(w, r, apperror.ErrMissingFields)
		return
	}

	user, err := h.UserService.UploadAvatar(r.Context(), contextkeys.UserID(r.Context()), files[0])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, UserResponse{User: user}, http.StatusOK)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	ctx := r.Context()
	err := h.AuthService.ChangePassword(ctx, contextkeys.UserID(ctx), contextkeys.TokenFrom(ctx), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}

// ForgotPassword answers the same way whether or not the address is known.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, err := h.AuthService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, ForgotPasswordResponse{Success: true, ResetToken: token}, http.StatusOK)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, okResponse, http.StatusOK)
}
