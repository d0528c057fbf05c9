package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
)

type securityEventsRepo struct {
	q dbtx
}

func (r *securityEventsRepo) Append(ctx context.Context, ev domain.SecurityEvent) error {
	created := ev.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO security_events (id, type, client_id, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Type), ev.ClientID, mapOptionalString(ev.UserID), ev.Metadata, created,
	)
	return err
}

func (r *securityEventsRepo) ListRecent(ctx context.Context, limit int) ([]domain.SecurityEvent, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, type, client_id, user_id, metadata, created_at
		 FROM security_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SecurityEvent
	for rows.Next() {
		var (
			ev     domain.SecurityEvent
			evType string
			userID sql.NullString
		)
		if err := rows.Scan(&ev.ID, &evType, &ev.ClientID, &userID, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(evType)
		ev.UserID = mapNullString(userID)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *securityEventsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM security_events WHERE created_at < ?`, cutoff.UTC())
	return err
}
