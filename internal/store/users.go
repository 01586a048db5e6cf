package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"unbenched/internal/models"
)

const uniqueViolation = "23505"

var userColumns = []string{"id", "name", "email", "password_hash", "role", "skill_level", "created_at", "updated_at"}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         models.Role
	SkillLevel   models.SkillLevel
}

type UpdateUserParams struct {
	Name       string
	Email      string
	Role       models.Role
	SkillLevel models.SkillLevel
}

func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (*models.User, error) {
	now := s.clock.Now().UTC()
	u := &models.User{
		ID:           uuid.New(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		SkillLevel:   p.SkillLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.exec(ctx, psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.SkillLevel, u.CreatedAt, u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.row(ctx, psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id})))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.row(ctx, psql.Select(userColumns...).From("users").Where(sq.Eq{"email": email})))
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, psql.Select(userColumns...).From("users").OrderBy("created_at ASC"))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.SkillLevel, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, p UpdateUserParams) (*models.User, error) {
	tag, err := s.exec(ctx, psql.Update("users").
		Set("name", p.Name).
		Set("email", p.Email).
		Set("role", p.Role).
		Set("skill_level", p.SkillLevel).
		Set("updated_at", s.clock.Now().UTC()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the user; memberships, join requests, organized games
// and received notifications go with them (schema cascade).
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.exec(ctx, psql.Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.SkillLevel, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
