package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"unbenched/internal/config"
)

// Stores is everything the router needs from the data layer. *store.Store
// satisfies it; tests wire in fakes.
type Stores interface {
	UserStore
	VenueStore
	GameStore
	NotificationStore
	AuditStore
}

// NewRouter wires every route against the store. Handlers see it through the
// narrow interfaces in stores.go.
func NewRouter(s Stores, cfg config.Config, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), CORS())

	secret := cfg.JWTSecret

	api := r.Group("/api")
	{
		api.POST("/auth/register", Register(s, s))
		api.POST("/auth/login", Login(s, secret, cfg.CookieSecure))
		api.POST("/auth/logout", Logout())
		api.GET("/me", Auth(secret), Me(s))

		// games
		api.GET("/games", ListGames(s))
		api.GET("/games/:id", GetGame(s))
		api.POST("/games", Auth(secret), CreateGame(s, s))
		api.PUT("/games/:id", Auth(secret), UpdateGame(s, s))
		api.DELETE("/games/:id", Auth(secret), CancelGame(s, s))
		api.POST("/games/:id/join", Auth(secret), JoinGame(s, s, s, s))
		api.PATCH("/games/:id/requests/:userId/approve", Auth(secret), ApproveRequest(s, s, s))
		api.PATCH("/games/:id/requests/:userId/decline", Auth(secret), DeclineRequest(s, s, s))
		api.GET("/organizer/games", Auth(secret), OrganizerGames(s))

		// notifications
		api.GET("/notifications", Auth(secret), ListNotifications(s))
		api.GET("/notifications/count", Auth(secret), NotificationCount(s))
		api.PATCH("/notifications/:id", Auth(secret), MarkNotificationRead(s))

		// venues (public reads)
		api.GET("/venues", ListVenues(s))
		api.GET("/venues/:id", GetVenue(s))

		admin := api.Group("/admin", Auth(secret), RequireAdmin())
		{
			admin.GET("/venues", ListVenues(s))
			admin.POST("/venues", AdminCreateVenue(s, s))
			admin.GET("/venues/:id", GetVenue(s))
			admin.PUT("/venues/:id", AdminUpdateVenue(s, s))
			admin.DELETE("/venues/:id", AdminDeleteVenue(s, s))

			admin.GET("/users", AdminListUsers(s))
			admin.POST("/users", AdminCreateUser(s, s))
			admin.PUT("/users/:id", AdminUpdateUser(s, s))
			admin.DELETE("/users/:id", AdminDeleteUser(s, s))

			admin.GET("/logs", AdminLogs(s))
		}
	}

	return r
}
