// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinels onto HTTP statuses. Matching uses
// errors.Is because the offer gate wraps order errors before returning them.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrValidation) || errors.Is(err, offer.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound) || errors.Is(err, offer.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrConflict) || errors.Is(err, offer.ErrOrderClosed):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrDistanceUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
