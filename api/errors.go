package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkotelnikov/flightbooking/internal/domain"
)

// writeError maps sentinel errors from the core services onto HTTP
// status codes. The services never see transport concerns, this is the
// only place the mapping lives.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientCapacity), errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInconsistency):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
