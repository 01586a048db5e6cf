package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"unbenched/internal/models"
)

// Audit appends an audit row. Failures are logged, never surfaced: the audit
// trail must not take down the operation it records.
func (s *Store) Audit(ctx context.Context, actorID *uuid.UUID, action, details string) {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO audit_logs(actor_id, action, details) VALUES ($1,$2,$3)",
		actorID, action, details)
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}

func (s *Store) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.created_at, COALESCE(u.name,'(deleted)') AS actor, l.action, l.details
		FROM audit_logs l
		LEFT JOIN users u ON u.id = l.actor_id
		ORDER BY l.id DESC LIMIT 200`)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Actor, &l.Action, &l.Details); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
