package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"unbenched/internal/models"
	"unbenched/internal/store"
)

/* ----------- venues ----------- */

type createVenueRequest struct {
	Name       string   `json:"name" binding:"required"`
	Address    string   `json:"address" binding:"required"`
	Latitude   *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	CourtNames []string `json:"court_names"`
}

func AdminCreateVenue(venues VenueStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		v, err := venues.CreateVenue(c.Request.Context(), store.CreateVenueParams{
			Name:       req.Name,
			Address:    req.Address,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
			CourtNames: req.CourtNames,
		})
		if err != nil {
			fail(c, err)
			return
		}

		actor := uid(c)
		audit.Audit(c.Request.Context(), &actor, "admin_create_venue", "venue_id="+v.ID.String())
		c.JSON(http.StatusCreated, v)
	}
}

type updateVenueRequest struct {
	Name           string      `json:"name" binding:"required"`
	Address        string      `json:"address" binding:"required"`
	Latitude       *float64    `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude      *float64    `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	AddCourts      []string    `json:"add_courts"`
	RemoveCourtIDs []uuid.UUID `json:"remove_court_ids"`
}

func AdminUpdateVenue(venues VenueStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req updateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		v, err := venues.UpdateVenue(c.Request.Context(), id, store.UpdateVenueParams{
			Name:           req.Name,
			Address:        req.Address,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			AddCourts:      req.AddCourts,
			RemoveCourtIDs: req.RemoveCourtIDs,
		})
		if err != nil {
			fail(c, err)
			return
		}

		actor := uid(c)
		audit.Audit(c.Request.Context(), &actor, "admin_update_venue", "venue_id="+id.String())
		c.JSON(http.StatusOK, v)
	}
}

// AdminDeleteVenue deletes the venue; its courts cascade with it.
func AdminDeleteVenue(venues VenueStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := venues.DeleteVenue(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		actor := uid(c)
		audit.Audit(c.Request.Context(), &actor, "admin_delete_venue", "venue_id="+id.String())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

/* ----------- users ----------- */

func AdminListUsers(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := users.ListUsers(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

type adminCreateUserRequest struct {
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password" binding:"required,min=6"`
	Role       models.Role       `json:"role" binding:"required,oneof=user admin"`
	SkillLevel models.SkillLevel `json:"skill_level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

func AdminCreateUser(users UserStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminCreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		if req.SkillLevel == "" {
			req.SkillLevel = models.SkillBeginner
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			fail(c, err)
			return
		}

		u, err := users.CreateUser(c.Request.Context(), store.CreateUserParams{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         req.Role,
			SkillLevel:   req.SkillLevel,
		})
		if err != nil {
			fail(c, err)
			return
		}

		actor := uid(c)
		audit.Audit(c.Request.Context(), &actor, "admin_create_user", "user_id="+u.ID.String())
		c.JSON(http.StatusCreated, u)
	}
}

type adminUpdateUserRequest struct {
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email" binding:"required,email"`
	Role       models.Role       `json:"role" binding:"required,oneof=user admin"`
	SkillLevel models.SkillLevel `json:"skill_level" binding:"required,oneof=beginner intermediate advanced"`
}

func AdminUpdateUser(users UserStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req adminUpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		u, err := users.UpdateUser(c.Request.Context(), id, store.UpdateUserParams{
			Name:       req.Name,
			Email:      req.Email,
			Role:       req.Role,
			SkillLevel: req.SkillLevel,
		})
		if err != nil {
			fail(c, err)
			return
		}

		actor := uid(c)
		audit.Audit(c.Request.Context(), &actor, "admin_update_user", "user_id="+id.String())
		c.JSON(http.StatusOK, u)
	}
}

func AdminDeleteUser(users UserStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		actor := uid(c)
		if id == actor {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
			return
		}
		if err := users.DeleteUser(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		audit.Audit(c.Request.Context(), &actor, "admin_delete_user", "user_id="+id.String())
		c.Status(http.StatusNoContent)
	}
}

/* ----------- audit log ----------- */

func AdminLogs(audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := audit.ListAuditLogs(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
