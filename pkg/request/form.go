package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/dto"
	"github.com/gin-gonic/gin"
)

// FormFile opens an optional multipart file. It returns (nil, nil, nil) when
// the field is absent; the caller must call the returned closer otherwise.
func FormFile(c *gin.Context, field string, maxBytes int64) (*dto.UploadedFile, io.Closer, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read %s: %w", field, apperror.ErrBadRequest)
	}
	if fileHeader.Filename == "" {
		return nil, nil, nil
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, nil, apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20), apperror.ErrBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", field, apperror.ErrBadRequest)
	}

	return &dto.UploadedFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, file, nil
}

// LimitBody caps the request body size.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && maxBytes > 0 {
			// multipart framing needs headroom beyond the file itself
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+(1<<20))
		}
		c.Next()
	}
}
