package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ListNotifications(notes NotificationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := notes.ListUnread(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func NotificationCount(notes NotificationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := notes.CountUnread(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

func MarkNotificationRead(notes NotificationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		n, err := notes.MarkRead(c.Request.Context(), id, uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}
