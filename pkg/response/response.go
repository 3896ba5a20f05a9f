package response

import (
	"log"
	"net/http"

	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParamUUID parses a path parameter as a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.New(http.StatusBadRequest, "invalid "+name, apperror.ErrBadRequest)
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var msg string
	if appErr, ok := err.(*apperror.AppError); ok && appErr.Message != "" {
		msg = appErr.Message
	} else {
		msg = err.Error()
	}

	c.JSON(code, gin.H{"error": msg})
}

// SendFile streams a local file as an attachment or redirects to a remote one.
func SendFile(c *gin.Context, file *dto.FileDownload) {
	if file.Remote {
		c.Redirect(http.StatusFound, file.Location)
		return
	}
	c.FileAttachment(file.Location, file.FileName)
}
