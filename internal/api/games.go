package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"unbenched/internal/models"
	"unbenched/internal/store"
)

const defaultSearchRadiusM = 10000

type gameRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	VenueID     uuid.UUID         `json:"venue_id" binding:"required"`
	CourtID     *uuid.UUID        `json:"court_id"`
	DateTime    time.Time         `json:"date_time" binding:"required"`
	MaxPlayers  int               `json:"max_players" binding:"required,min=1"`
	Price       float64           `json:"price" binding:"gte=0"`
	SkillLevel  models.SkillLevel `json:"skill_level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

func (r gameRequest) skill() models.SkillLevel {
	if r.SkillLevel == "" {
		return models.SkillBeginner
	}
	return r.SkillLevel
}

// ListGames serves both the plain open-games listing and the nearby search.
// With lat/lng query params the result is distance-filtered, nearest first.
func ListGames(games GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)

		if latErr == nil && lngErr == nil {
			radius := float64(defaultSearchRadiusM)
			if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil && r > 0 {
				radius = r
			}
			out, err := games.SearchNearby(c.Request.Context(), lat, lng, radius)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
			return
		}

		out, err := games.ListOpenGames(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetGame(games GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := games.GetGameDetail(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func CreateGame(games GameStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		organizerID := uid(c)
		g, err := games.CreateGame(c.Request.Context(), store.CreateGameParams{
			Title:       req.Title,
			Description: req.Description,
			VenueID:     req.VenueID,
			CourtID:     req.CourtID,
			DateTime:    req.DateTime,
			OrganizerID: organizerID,
			MaxPlayers:  req.MaxPlayers,
			Price:       req.Price,
			SkillLevel:  req.skill(),
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &organizerID, "create_game", "game_id="+g.ID.String())
		c.JSON(http.StatusCreated, g)
	}
}

func UpdateGame(games GameStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req gameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		callerID := uid(c)
		g, err := games.UpdateGame(c.Request.Context(), id, callerID, store.UpdateGameParams{
			Title:       req.Title,
			Description: req.Description,
			VenueID:     req.VenueID,
			CourtID:     req.CourtID,
			DateTime:    req.DateTime,
			MaxPlayers:  req.MaxPlayers,
			Price:       req.Price,
			SkillLevel:  req.skill(),
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &callerID, "update_game", "game_id="+id.String())
		c.JSON(http.StatusOK, g)
	}
}

func CancelGame(games GameStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		callerID := uid(c)
		g, err := games.CancelGame(c.Request.Context(), id, callerID)
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &callerID, "cancel_game", "game_id="+id.String())
		c.JSON(http.StatusOK, g)
	}
}

type joinRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// JoinGame records the caller's join request and notifies the organizer.
// A body user_id, when present, must match the session (self-join only).
func JoinGame(games GameStore, users UserStore, notes NotificationStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "id")
		if !ok {
			return
		}

		callerID := uid(c)
		var req joinRequest
		_ = c.ShouldBindJSON(&req)
		if req.UserID != nil && *req.UserID != callerID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "cannot request to join on behalf of another user"})
			return
		}

		g, err := games.RequestJoin(c.Request.Context(), gameID, callerID)
		if err != nil {
			fail(c, err)
			return
		}

		requester, err := users.GetUser(c.Request.Context(), callerID)
		if err != nil {
			fail(c, err)
			return
		}
		_, err = notes.CreateNotification(c.Request.Context(), store.CreateNotificationParams{
			RecipientID: g.OrganizerID,
			SenderID:    &callerID,
			GameID:      g.ID,
			Type:        models.NotificationJoinRequest,
			Message:     fmt.Sprintf("%s has requested to join %q.", requester.Name, g.Title),
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &callerID, "request_join", "game_id="+gameID.String())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func ApproveRequest(games GameStore, notes NotificationStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "id")
		if !ok {
			return
		}
		userID, ok := pathID(c, "userId")
		if !ok {
			return
		}

		callerID := uid(c)
		g, err := games.ApproveRequest(c.Request.Context(), gameID, userID, callerID)
		if err != nil {
			fail(c, err)
			return
		}

		_, err = notes.CreateNotification(c.Request.Context(), store.CreateNotificationParams{
			RecipientID: userID,
			SenderID:    &callerID,
			GameID:      g.ID,
			Type:        models.NotificationRequestApproved,
			Message:     fmt.Sprintf("Your request to join %q was approved.", g.Title),
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &callerID, "approve_request", "game_id="+gameID.String()+" user_id="+userID.String())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeclineRequest(games GameStore, notes NotificationStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "id")
		if !ok {
			return
		}
		userID, ok := pathID(c, "userId")
		if !ok {
			return
		}

		callerID := uid(c)
		g, err := games.DeclineRequest(c.Request.Context(), gameID, userID, callerID)
		if err != nil {
			fail(c, err)
			return
		}

		_, err = notes.CreateNotification(c.Request.Context(), store.CreateNotificationParams{
			RecipientID: userID,
			SenderID:    &callerID,
			GameID:      g.ID,
			Type:        models.NotificationRequestDeclined,
			Message:     fmt.Sprintf("Your request to join %q was declined.", g.Title),
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &callerID, "decline_request", "game_id="+gameID.String()+" user_id="+userID.String())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func OrganizerGames(games GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := games.ListOrganizerGames(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// pathID parses a uuid path param, answering 400 itself when malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
