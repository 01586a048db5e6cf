package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"unbenched/internal/models"
)

type CreateVenueParams struct {
	Name       string
	Address    string
	Latitude   *float64
	Longitude  *float64
	CourtNames []string
}

type UpdateVenueParams struct {
	Name           string
	Address        string
	Latitude       *float64
	Longitude      *float64
	AddCourts      []string
	RemoveCourtIDs []uuid.UUID
}

// CreateVenue inserts the venue and its initial courts in one transaction.
func (s *Store) CreateVenue(ctx context.Context, p CreateVenueParams) (*models.Venue, error) {
	now := s.clock.Now().UTC()
	v := &models.Venue{
		ID:        uuid.New(),
		Name:      p.Name,
		Address:   p.Address,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Courts:    []models.Court{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Insert("venues").
		Columns("id", "name", "address", "latitude", "longitude", "created_at", "updated_at").
		Values(v.ID, v.Name, v.Address, v.Latitude, v.Longitude, v.CreatedAt, v.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}

	for _, name := range p.CourtNames {
		c := models.Court{ID: uuid.New(), VenueID: v.ID, Name: name}
		sql, args, err := psql.Insert("courts").
			Columns("id", "venue_id", "name").
			Values(c.ID, c.VenueID, c.Name).
			ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("insert court: %w", err)
		}
		v.Courts = append(v.Courts, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

func (s *Store) GetVenue(ctx context.Context, id uuid.UUID) (*models.Venue, error) {
	var v models.Venue
	err := s.row(ctx, psql.
		Select("id", "name", "address", "latitude", "longitude", "created_at", "updated_at").
		From("venues").Where(sq.Eq{"id": id})).
		Scan(&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}

	v.Courts, err = s.listCourts(ctx, sq.Eq{"venue_id": id})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := s.query(ctx, psql.
		Select("id", "name", "address", "latitude", "longitude", "created_at", "updated_at").
		From("venues").OrderBy("name ASC"))
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	out := []models.Venue{}
	byID := map[uuid.UUID]int{}
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		v.Courts = []models.Court{}
		byID[v.ID] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	courts, err := s.listCourts(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range courts {
		if i, ok := byID[c.VenueID]; ok {
			out[i].Courts = append(out[i].Courts, c)
		}
	}
	return out, nil
}

func (s *Store) UpdateVenue(ctx context.Context, id uuid.UUID, p UpdateVenueParams) (*models.Venue, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Update("venues").
		Set("name", p.Name).
		Set("address", p.Address).
		Set("latitude", p.Latitude).
		Set("longitude", p.Longitude).
		Set("updated_at", s.clock.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	for _, name := range p.AddCourts {
		sql, args, err := psql.Insert("courts").
			Columns("id", "venue_id", "name").
			Values(uuid.New(), id, name).
			ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("insert court: %w", err)
		}
	}
	if len(p.RemoveCourtIDs) > 0 {
		sql, args, err := psql.Delete("courts").
			Where(sq.Eq{"id": p.RemoveCourtIDs, "venue_id": id}).
			ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return nil, fmt.Errorf("delete courts: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetVenue(ctx, id)
}

// DeleteVenue removes the venue; its courts cascade.
func (s *Store) DeleteVenue(ctx context.Context, id uuid.UUID) error {
	tag, err := s.exec(ctx, psql.Delete("venues").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) listCourts(ctx context.Context, where any) ([]models.Court, error) {
	q := psql.Select("id", "venue_id", "name").From("courts").OrderBy("name ASC")
	if where != nil {
		q = q.Where(where)
	}
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}
	defer rows.Close()

	out := []models.Court{}
	for rows.Next() {
		var c models.Court
		if err := rows.Scan(&c.ID, &c.VenueID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
