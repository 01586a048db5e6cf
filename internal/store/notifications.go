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

type CreateNotificationParams struct {
	RecipientID uuid.UUID
	SenderID    *uuid.UUID
	GameID      uuid.UUID
	Type        models.NotificationType
	Message     string
}

func (s *Store) CreateNotification(ctx context.Context, p CreateNotificationParams) (*models.Notification, error) {
	n := &models.Notification{
		ID:          uuid.New(),
		RecipientID: p.RecipientID,
		SenderID:    p.SenderID,
		GameID:      p.GameID,
		Type:        p.Type,
		Message:     p.Message,
		IsRead:      false,
		CreatedAt:   s.clock.Now().UTC(),
	}

	_, err := s.exec(ctx, psql.Insert("notifications").
		Columns("id", "recipient_id", "sender_id", "game_id", "type", "message", "is_read", "created_at").
		Values(n.ID, n.RecipientID, n.SenderID, n.GameID, n.Type, n.Message, n.IsRead, n.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListUnread returns the recipient's unread notifications, newest first,
// with the game title and sender name joined in for display.
func (s *Store) ListUnread(ctx context.Context, recipientID uuid.UUID) ([]models.NotificationView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT n.id, n.recipient_id, n.sender_id, n.game_id, n.type, n.message, n.is_read, n.created_at,
		       g.title, u.name
		FROM notifications n
		JOIN games g ON g.id = n.game_id
		LEFT JOIN users u ON u.id = n.sender_id
		WHERE n.recipient_id = $1 AND n.is_read = false
		ORDER BY n.created_at DESC`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []models.NotificationView{}
	for rows.Next() {
		var v models.NotificationView
		if err := rows.Scan(&v.ID, &v.RecipientID, &v.SenderID, &v.GameID, &v.Type, &v.Message,
			&v.IsRead, &v.CreatedAt, &v.GameTitle, &v.SenderName); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := s.row(ctx, psql.Select("count(*)").From("notifications").
		Where(sq.Eq{"recipient_id": recipientID, "is_read": false})).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// MarkRead flips is_read for the recipient. Re-marking a read notification
// succeeds and leaves it read.
func (s *Store) MarkRead(ctx context.Context, id, callerID uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.row(ctx, psql.
		Select("id", "recipient_id", "sender_id", "game_id", "type", "message", "is_read", "created_at").
		From("notifications").Where(sq.Eq{"id": id})).
		Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.GameID, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if n.RecipientID != callerID {
		return nil, ErrForbidden
	}

	if !n.IsRead {
		if _, err := s.exec(ctx, psql.Update("notifications").
			Set("is_read", true).Where(sq.Eq{"id": id})); err != nil {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
		n.IsRead = true
	}
	return &n, nil
}
