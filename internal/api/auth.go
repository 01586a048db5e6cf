package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"unbenched/internal/models"
	"unbenched/internal/store"
)

type registerRequest struct {
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password" binding:"required,min=6"`
	SkillLevel models.SkillLevel `json:"skill_level" binding:"required,oneof=beginner intermediate advanced"`
}

func Register(users UserStore, audit AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
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
			Role:         models.RoleUser,
			SkillLevel:   req.SkillLevel,
		})
		if err != nil {
			fail(c, err)
			return
		}

		audit.Audit(c.Request.Context(), &u.ID, "register", "user registered")
		c.JSON(http.StatusCreated, u)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(users UserStore, secret string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		u, err := users.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			UserID: u.ID.String(),
			Role:   string(u.Role),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				Issuer:    "unbenched",
			},
		})
		s, err := tok.SignedString([]byte(secret))
		if err != nil {
			fail(c, err)
			return
		}

		c.SetCookie(cookieName, s, 86400, "/", "", secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func Me(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetUser(c.Request.Context(), uid(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
