package api

import (
	"context"

	"github.com/google/uuid"

	"unbenched/internal/models"
	"unbenched/internal/store"
)

// The handlers consume the store through these interfaces so tests can swap
// in fakes. *store.Store satisfies all of them.

type UserStore interface {
	CreateUser(ctx context.Context, p store.CreateUserParams) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, p store.UpdateUserParams) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type VenueStore interface {
	CreateVenue(ctx context.Context, p store.CreateVenueParams) (*models.Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*models.Venue, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, p store.UpdateVenueParams) (*models.Venue, error)
	DeleteVenue(ctx context.Context, id uuid.UUID) error
}

type GameStore interface {
	CreateGame(ctx context.Context, p store.CreateGameParams) (*models.Game, error)
	GetGameDetail(ctx context.Context, id uuid.UUID) (*models.GameDetail, error)
	ListOpenGames(ctx context.Context) ([]models.GameSummary, error)
	SearchNearby(ctx context.Context, lat, lng, radiusM float64) ([]models.GameSummary, error)
	ListOrganizerGames(ctx context.Context, organizerID uuid.UUID) ([]models.OrganizerGame, error)
	UpdateGame(ctx context.Context, gameID, callerID uuid.UUID, p store.UpdateGameParams) (*models.Game, error)
	CancelGame(ctx context.Context, gameID, callerID uuid.UUID) (*models.Game, error)
	RequestJoin(ctx context.Context, gameID, userID uuid.UUID) (*models.Game, error)
	ApproveRequest(ctx context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error)
	DeclineRequest(ctx context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, p store.CreateNotificationParams) (*models.Notification, error)
	ListUnread(ctx context.Context, recipientID uuid.UUID) ([]models.NotificationView, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, callerID uuid.UUID) (*models.Notification, error)
}

type AuditStore interface {
	Audit(ctx context.Context, actorID *uuid.UUID, action, details string)
	ListAuditLogs(ctx context.Context) ([]models.AuditLog, error)
}
