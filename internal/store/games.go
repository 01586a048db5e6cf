package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"unbenched/internal/models"
)

const gameColumns = "g.id, g.title, g.description, g.venue_id, g.court_id, g.date_time, g.organizer_id, g.max_players, g.price, g.skill_level, g.status, g.created_at, g.updated_at"

type CreateGameParams struct {
	Title       string
	Description string
	VenueID     uuid.UUID
	CourtID     *uuid.UUID
	DateTime    time.Time
	OrganizerID uuid.UUID
	MaxPlayers  int
	Price       float64
	SkillLevel  models.SkillLevel
}

type UpdateGameParams struct {
	Title       string
	Description string
	VenueID     uuid.UUID
	CourtID     *uuid.UUID
	DateTime    time.Time
	MaxPlayers  int
	Price       float64
	SkillLevel  models.SkillLevel
}

func (s *Store) CreateGame(ctx context.Context, p CreateGameParams) (*models.Game, error) {
	if err := s.checkLocation(ctx, p.VenueID, p.CourtID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	g := &models.Game{
		ID:          uuid.New(),
		Title:       p.Title,
		Description: p.Description,
		VenueID:     p.VenueID,
		CourtID:     p.CourtID,
		DateTime:    p.DateTime.UTC(),
		OrganizerID: p.OrganizerID,
		MaxPlayers:  p.MaxPlayers,
		Price:       p.Price,
		SkillLevel:  p.SkillLevel,
		Status:      models.GameOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.exec(ctx, psql.Insert("games").
		Columns("id", "title", "description", "venue_id", "court_id", "date_time",
			"organizer_id", "max_players", "price", "skill_level", "status", "created_at", "updated_at").
		Values(g.ID, g.Title, g.Description, g.VenueID, g.CourtID, g.DateTime,
			g.OrganizerID, g.MaxPlayers, g.Price, g.SkillLevel, g.Status, g.CreatedAt, g.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}

func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+gameColumns+" FROM games g WHERE g.id=$1", id)
	return scanGame(row)
}

// GetGameDetail assembles the full game page read model: the game plus its
// venue, court, organizer, roster and pending requests.
func (s *Store) GetGameDetail(ctx context.Context, id uuid.UUID) (*models.GameDetail, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &models.GameDetail{Game: *g}

	venue, err := s.GetVenue(ctx, g.VenueID)
	if err != nil {
		return nil, fmt.Errorf("game venue: %w", err)
	}
	d.Venue = *venue

	if g.CourtID != nil {
		for i := range venue.Courts {
			if venue.Courts[i].ID == *g.CourtID {
				d.Court = &venue.Courts[i]
				break
			}
		}
	}

	organizer, err := s.GetUser(ctx, g.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("game organizer: %w", err)
	}
	d.Organizer = models.UserRef{ID: organizer.ID, Name: organizer.Name}

	d.CurrentPlayers, err = s.memberRefs(ctx, "game_players", id)
	if err != nil {
		return nil, err
	}
	d.JoinRequests, err = s.memberRefs(ctx, "game_join_requests", id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

const openGameQuery = `
SELECT * FROM (
    SELECT ` + gameColumns + `,
           v.name AS venue_name, v.address AS venue_address,
           u.id AS org_id, u.name AS org_name,
           (SELECT count(*) FROM game_players gp WHERE gp.game_id = g.id) AS player_count
    FROM games g
    JOIN venues v ON v.id = g.venue_id
    JOIN users u ON u.id = g.organizer_id
    WHERE g.status = 'open' AND g.date_time > $1
) q
WHERE q.player_count < q.max_players`

// ListOpenGames returns joinable games: open, in the future, roster not full,
// soonest first.
func (s *Store) ListOpenGames(ctx context.Context) ([]models.GameSummary, error) {
	rows, err := s.pool.Query(ctx, openGameQuery+" ORDER BY q.date_time ASC", s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, false)
}

const nearbyGameQuery = `
SELECT * FROM (
    SELECT ` + gameColumns + `,
           v.name AS venue_name, v.address AS venue_address,
           u.id AS org_id, u.name AS org_name,
           (SELECT count(*) FROM game_players gp WHERE gp.game_id = g.id) AS player_count,
           2 * 6371000 * asin(sqrt(
               pow(sin(radians((v.latitude - $2) / 2)), 2) +
               cos(radians($2)) * cos(radians(v.latitude)) *
               pow(sin(radians((v.longitude - $3) / 2)), 2)
           )) AS distance_m
    FROM games g
    JOIN venues v ON v.id = g.venue_id
    JOIN users u ON u.id = g.organizer_id
    WHERE g.status = 'open' AND g.date_time > $1
      AND v.latitude IS NOT NULL AND v.longitude IS NOT NULL
) q
WHERE q.player_count < q.max_players AND q.distance_m <= $4
ORDER BY q.distance_m ASC
LIMIT 50`

// SearchNearby returns open games whose venue lies within radiusM meters of
// the point, nearest first. The distance cutoff runs in SQL (haversine).
func (s *Store) SearchNearby(ctx context.Context, lat, lng, radiusM float64) ([]models.GameSummary, error) {
	rows, err := s.pool.Query(ctx, nearbyGameQuery, s.clock.Now().UTC(), lat, lng, radiusM)
	if err != nil {
		return nil, fmt.Errorf("search nearby games: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, true)
}

// ListOrganizerGames returns the organizer's joinable games with their
// pending requesters, which feeds the organizer's request inbox.
func (s *Store) ListOrganizerGames(ctx context.Context, organizerID uuid.UUID) ([]models.OrganizerGame, error) {
	rows, err := s.pool.Query(ctx,
		openGameQuery+" AND q.organizer_id = $2 ORDER BY q.date_time ASC",
		s.clock.Now().UTC(), organizerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer games: %w", err)
	}
	summaries, err := scanSummaries(rows, false)
	rows.Close()
	if err != nil {
		return nil, err
	}

	out := make([]models.OrganizerGame, 0, len(summaries))
	ids := make([]uuid.UUID, 0, len(summaries))
	idx := map[uuid.UUID]int{}
	for _, sum := range summaries {
		idx[sum.ID] = len(out)
		ids = append(ids, sum.ID)
		out = append(out, models.OrganizerGame{GameSummary: sum, JoinRequests: []models.UserRef{}})
	}
	if len(ids) == 0 {
		return out, nil
	}

	reqRows, err := s.pool.Query(ctx, `
		SELECT jr.game_id, u.id, u.name
		FROM game_join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.game_id = ANY($1)
		ORDER BY u.name ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	defer reqRows.Close()
	for reqRows.Next() {
		var gameID uuid.UUID
		var ref models.UserRef
		if err := reqRows.Scan(&gameID, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan join request: %w", err)
		}
		if i, ok := idx[gameID]; ok {
			out[i].JoinRequests = append(out[i].JoinRequests, ref)
		}
	}
	return out, reqRows.Err()
}

// UpdateGame rewrites the mutable fields. Only the organizer may call it, and
// a cancelled game stays untouched.
func (s *Store) UpdateGame(ctx context.Context, gameID, callerID uuid.UUID, p UpdateGameParams) (*models.Game, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.OrganizerID != callerID {
		return nil, ErrForbidden
	}
	if g.Status == models.GameCancelled {
		return nil, ErrAlreadyCancelled
	}
	if err := s.checkLocation(ctx, p.VenueID, p.CourtID); err != nil {
		return nil, err
	}

	_, err = s.exec(ctx, psql.Update("games").
		Set("title", p.Title).
		Set("description", p.Description).
		Set("venue_id", p.VenueID).
		Set("court_id", p.CourtID).
		Set("date_time", p.DateTime.UTC()).
		Set("max_players", p.MaxPlayers).
		Set("price", p.Price).
		Set("skill_level", p.SkillLevel).
		Set("updated_at", s.clock.Now().UTC()).
		Where(sq.Eq{"id": gameID}))
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	return s.GetGame(ctx, gameID)
}

// CancelGame sets the terminal status. Cancelling twice is a conflict.
func (s *Store) CancelGame(ctx context.Context, gameID, callerID uuid.UUID) (*models.Game, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.OrganizerID != callerID {
		return nil, ErrForbidden
	}

	tag, err := s.exec(ctx, psql.Update("games").
		Set("status", models.GameCancelled).
		Set("updated_at", s.clock.Now().UTC()).
		Where(sq.Eq{"id": gameID}).
		Where(sq.NotEq{"status": models.GameCancelled}))
	if err != nil {
		return nil, fmt.Errorf("cancel game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyCancelled
	}
	return s.GetGame(ctx, gameID)
}

// RequestJoin records userID's pending request. The game row is locked for
// the duration so a request can never race an approval into both membership
// sets. Returns the game so the caller can notify the organizer.
func (s *Store) RequestJoin(ctx context.Context, gameID, userID uuid.UUID) (*models.Game, error) {
	var g *models.Game
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			"SELECT "+gameColumns+" FROM games g WHERE g.id=$1 FOR UPDATE", gameID)
		var err error
		g, err = scanGame(row)
		if err != nil {
			return err
		}
		if g.Status != models.GameOpen {
			return ErrGameNotOpen
		}
		if g.OrganizerID == userID {
			return ErrOwnGame
		}

		var involved bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM game_players WHERE game_id=$1 AND user_id=$2
				UNION ALL
				SELECT 1 FROM game_join_requests WHERE game_id=$1 AND user_id=$2
			)`, gameID, userID).Scan(&involved)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if involved {
			return ErrAlreadyInvolved
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO game_join_requests (game_id, user_id) VALUES ($1, $2)",
			gameID, userID); err != nil {
			return fmt.Errorf("insert join request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ApproveRequest moves userID from the pending set to the roster in one
// transaction, holding the game row lock so concurrent approvals cannot
// admit past max_players.
func (s *Store) ApproveRequest(ctx context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error) {
	var g *models.Game
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			"SELECT "+gameColumns+" FROM games g WHERE g.id=$1 FOR UPDATE", gameID)
		var err error
		g, err = scanGame(row)
		if err != nil {
			return err
		}
		if g.OrganizerID != callerID {
			return ErrForbidden
		}

		tag, err := tx.Exec(ctx,
			"DELETE FROM game_join_requests WHERE game_id=$1 AND user_id=$2",
			gameID, userID)
		if err != nil {
			return fmt.Errorf("remove join request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRequestNotFound
		}

		var playerCount int
		if err := tx.QueryRow(ctx,
			"SELECT count(*) FROM game_players WHERE game_id=$1", gameID).Scan(&playerCount); err != nil {
			return fmt.Errorf("count players: %w", err)
		}
		if playerCount >= g.MaxPlayers {
			return ErrGameFull
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO game_players (game_id, user_id) VALUES ($1, $2)",
			gameID, userID); err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeclineRequest removes userID's pending request.
func (s *Store) DeclineRequest(ctx context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.OrganizerID != callerID {
		return nil, ErrForbidden
	}

	tag, err := s.exec(ctx, psql.Delete("game_join_requests").
		Where(sq.Eq{"game_id": gameID, "user_id": userID}))
	if err != nil {
		return nil, fmt.Errorf("remove join request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrRequestNotFound
	}
	return g, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// checkLocation verifies the venue exists and, when a court is given, that it
// belongs to that venue. The games table does not enforce the pairing.
func (s *Store) checkLocation(ctx context.Context, venueID uuid.UUID, courtID *uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM venues WHERE id=$1)", venueID).Scan(&exists); err != nil {
		return fmt.Errorf("check venue: %w", err)
	}
	if !exists {
		return ErrVenueNotFound
	}
	if courtID == nil {
		return nil
	}
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM courts WHERE id=$1 AND venue_id=$2)",
		*courtID, venueID).Scan(&exists); err != nil {
		return fmt.Errorf("check court: %w", err)
	}
	if !exists {
		return ErrCourtMismatch
	}
	return nil
}

func (s *Store) memberRefs(ctx context.Context, table string, gameID uuid.UUID) ([]models.UserRef, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT u.id, u.name FROM "+table+" m JOIN users u ON u.id=m.user_id WHERE m.game_id=$1 ORDER BY u.name ASC",
		gameID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := []models.UserRef{}
	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.Title, &g.Description, &g.VenueID, &g.CourtID, &g.DateTime,
		&g.OrganizerID, &g.MaxPlayers, &g.Price, &g.SkillLevel, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return &g, nil
}

func scanSummaries(rows pgx.Rows, withDistance bool) ([]models.GameSummary, error) {
	out := []models.GameSummary{}
	for rows.Next() {
		var sum models.GameSummary
		dest := []any{
			&sum.ID, &sum.Title, &sum.Description, &sum.VenueID, &sum.CourtID, &sum.DateTime,
			&sum.OrganizerID, &sum.MaxPlayers, &sum.Price, &sum.SkillLevel, &sum.Status,
			&sum.CreatedAt, &sum.UpdatedAt,
			&sum.VenueName, &sum.VenueAddress,
			&sum.Organizer.ID, &sum.Organizer.Name,
			&sum.PlayerCount,
		}
		if withDistance {
			dest = append(dest, &sum.DistanceM)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan game summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
