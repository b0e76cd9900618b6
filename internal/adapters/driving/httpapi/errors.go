package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// noSessionMessage is returned when a session route has no active document.
const noSessionMessage = "No active session. Please upload a document first."

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSession),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrExtractionFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing error detail.
func messageFor(err error) string {
	if errors.Is(err, domain.ErrNoSession) {
		return noSessionMessage
	}
	return err.Error()
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func errorBody(detail string) errorResponse {
	return errorResponse{Detail: detail}
}

// writeError records err on the context and writes the mapped response.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorBody(messageFor(err)))
}
