package store

import "errors"

// Sentinel errors the api layer maps onto HTTP statuses.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAlreadyInvolved  = errors.New("already joined or requested to join this game")
	ErrOwnGame          = errors.New("organizer cannot request to join their own game")
	ErrGameNotOpen      = errors.New("game is not open")
	ErrGameFull         = errors.New("game is full")
	ErrRequestNotFound  = errors.New("user not found in join requests")
	ErrAlreadyCancelled = errors.New("game already cancelled")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrCourtMismatch    = errors.New("court does not belong to the selected venue")
)
