package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// JSONResponse is the envelope every API reply uses.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// statusForError maps the core's sentinels onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidPIN),
		errors.Is(err, types.ErrInvalidRange),
		errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
