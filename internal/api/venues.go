package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ListVenues(venues VenueStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := venues.ListVenues(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetVenue(venues VenueStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		v, err := venues.GetVenue(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}
