package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/idx"
)

// SecurityService appends audit events for auth-relevant occurrences.
// Recording is fire-and-forget: a failed append is logged server-side and
// never aborts the caller's request flow.
type SecurityService struct {
	Store  store.Store
	Logger *slog.Logger
}

// Record appends one event. Append errors are logged and swallowed.
func (s *SecurityService) Record(
	ctx context.Context,
	evType domain.EventType,
	clientID string,
	userID *string,
	metadata map[string]any,
) {
	var meta string
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}

	ev := domain.SecurityEvent{
		ID:       idx.New().String(),
		Type:     evType,
		ClientID: clientID,
		UserID:   userID,
		Metadata: meta,
	}

	if err := s.Store.SecurityEvents().Append(ctx, ev); err != nil {
		s.Logger.Warn("failed to record security event",
			"type", string(evType),
			"client_id", clientID,
			"err", err,
		)
	}
}

// ListRecent returns the newest events for the admin audit view.
func (s *SecurityService) ListRecent(ctx context.Context, limit int) ([]domain.SecurityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Store.SecurityEvents().ListRecent(ctx, limit)
}
