package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

func ValidSkillLevel(s SkillLevel) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type GameStatus string

const (
	GameOpen      GameStatus = "open"
	GameClosed    GameStatus = "closed"
	GameCancelled GameStatus = "cancelled"
	GameCompleted GameStatus = "completed"
)

type NotificationType string

const (
	NotificationJoinRequest     NotificationType = "join_request"
	NotificationRequestApproved NotificationType = "request_approved"
	NotificationRequestDeclined NotificationType = "request_declined"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	SkillLevel   SkillLevel `json:"skill_level"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRef is the display shape embedded in game and notification views.
type UserRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Court struct {
	ID      uuid.UUID `json:"id"`
	VenueID uuid.UUID `json:"venue_id"`
	Name    string    `json:"name"`
}

type Venue struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Courts    []Court   `json:"courts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Game struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VenueID     uuid.UUID  `json:"venue_id"`
	CourtID     *uuid.UUID `json:"court_id,omitempty"`
	DateTime    time.Time  `json:"date_time"`
	OrganizerID uuid.UUID  `json:"organizer_id"`
	MaxPlayers  int        `json:"max_players"`
	Price       float64    `json:"price"`
	SkillLevel  SkillLevel `json:"skill_level"`
	Status      GameStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GameSummary is the listing shape: the game plus the display joins the
// list pages need (venue name/address, organizer, roster size).
type GameSummary struct {
	Game
	VenueName    string   `json:"venue_name"`
	VenueAddress string   `json:"venue_address"`
	Organizer    UserRef  `json:"organizer"`
	PlayerCount  int      `json:"player_count"`
	DistanceM    *float64 `json:"distance_m,omitempty"`
}

// OrganizerGame adds the pending requesters, which only the organizer sees.
type OrganizerGame struct {
	GameSummary
	JoinRequests []UserRef `json:"join_requests"`
}

// GameDetail is the fully assembled read model for the game page.
type GameDetail struct {
	Game
	Venue          Venue     `json:"venue"`
	Court          *Court    `json:"court,omitempty"`
	Organizer      UserRef   `json:"organizer"`
	CurrentPlayers []UserRef `json:"current_players"`
	JoinRequests   []UserRef `json:"join_requests"`
}

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	SenderID    *uuid.UUID       `json:"sender_id,omitempty"`
	GameID      uuid.UUID        `json:"game_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationView carries the display joins for the feed.
type NotificationView struct {
	Notification
	GameTitle  string  `json:"game_title"`
	SenderName *string `json:"sender_name,omitempty"`
}

type AuditLog struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
