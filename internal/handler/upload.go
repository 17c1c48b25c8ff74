package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/w8990/album/internal/apperror"
	"github.com/w8990/album/internal/service"
)

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
)

// parseMultipart caps the body at limit plus room for the other form fields.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ErrFileTooLarge
		}
		return nil, apperror.ErrInvalidRequest
	}
	return r.MultipartForm, nil
}

// openParts opens every part for reading. multipart.File is seekable, which
// the services need to sniff content and rewind before upload.
func openParts(headers []*multipart.FileHeader) ([]service.UploadFile, error) {
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeParts(files)
			return nil, apperror.ErrInvalidRequest
		}
		files = append(files, service.UploadFile{Name: fh.Filename, Size: fh.Size, Content: f})
	}
	return files, nil
}

func closeParts(files []service.UploadFile) {
	for _, f := range files {
		if c, ok := f.Content.(multipart.File); ok {
			_ = c.Close()
		}
	}
}
