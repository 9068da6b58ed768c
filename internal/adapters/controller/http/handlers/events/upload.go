package events

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/gin-gonic/gin"
)

type upload struct {
	header *multipart.FileHeader
	file   multipart.File
}

// openUpload opens the multipart file field. It returns nil when no file was sent.
func openUpload(c *gin.Context, field string, maxBytes int64) (*upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &errorz.ValidationError{Field: field, Message: "Invalid image upload"}
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, &errorz.ValidationError{Field: field, Message: fmt.Sprintf("Image must be at most %d MB", maxBytes>>20)}
	}

	file, err := header.Open()
	if err != nil {
		return nil, &errorz.ValidationError{Field: field, Message: "Invalid image upload"}
	}
	return &upload{header: header, file: file}, nil
}

func (u *upload) Upload() *dto.Upload {
	if u == nil {
		return nil
	}
	return &dto.Upload{
		FileName:    u.header.Filename,
		ContentType: u.header.Header.Get("Content-Type"),
		Size:        u.header.Size,
		Reader:      u.file,
	}
}

func (u *upload) Close() {
	_ = u.file.Close()
}
