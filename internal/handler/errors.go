package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/contextkeys"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type successResponse struct {
	Success bool `json:"success"`
}

var okResponse = successResponse{Success: true}

func WriteError(w http.ResponseWriter, e *apperror.Error) {
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(e.RetryAfter.Seconds()))))
	}
	writeSuccess(w, ErrorResponse{Error: e.Message, Code: e.Code}, e.HTTPStatus())
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps err onto the taxonomy. Anything unexpected is
// logged here and reaches the client as a generic 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, known := apperror.From(err)
	if !known {
		h.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": contextkeys.RequestIDFrom(r.Context()),
		}).WithError(err).Error("request failed")
	}
	WriteError(w, appErr)
}

// decode reads a JSON body into dst and runs struct validation on it.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ErrInvalidRequest
	}
	if err := h.Validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError turns the failed rules into one machine code. A missing
// field wins over any format error.
func validationError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ErrInvalidRequest
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperror.ErrMissingFields
		}
	}

	switch fe := verrs[0]; fe.Tag() {
	case "username":
		return apperror.ErrInvalidUsername
	case "email":
		return apperror.ErrInvalidEmail
	case "privacy":
		return apperror.ErrInvalidPrivacy
	case "min":
		if fe.Field() == "Password" || fe.Field() == "NewPassword" {
			return apperror.ErrPasswordTooShort
		}
	}
	return apperror.ErrInvalidRequest
}
