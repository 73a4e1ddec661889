package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/happyplaces/internal/model"
)

// Response is the JSON envelope for every reply.
type Response struct {
	Status string     `json:"status"` // "ok" or "error"
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Status: "ok", Data: data})
}

// fail maps err onto an HTTP status by its model.ErrorCode.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := &ErrorBody{Code: "INTERNAL", Message: err.Error()}

	var e *model.Error
	if errors.As(err, &e) {
		body.Code = string(e.Code)
		body.Message = e.Message
		body.Field = e.Field
		switch e.Code {
		case model.ErrCodeValidation:
			status = http.StatusBadRequest
		case model.ErrCodeNotFound:
			status = http.StatusNotFound
		case model.ErrCodeStoreUnavailable:
			status = http.StatusServiceUnavailable
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{Status: "error", Error: body})
}
