package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"unbenched/internal/store"
)

// fail maps store errors onto the HTTP taxonomy. Anything unrecognized is an
// internal error: the cause is logged, the client gets a generic message.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrAlreadyInvolved),
		errors.Is(err, store.ErrOwnGame),
		errors.Is(err, store.ErrGameNotOpen),
		errors.Is(err, store.ErrGameFull),
		errors.Is(err, store.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrVenueNotFound),
		errors.Is(err, store.ErrCourtMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
