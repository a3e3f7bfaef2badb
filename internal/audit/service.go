package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
)

type RepositoryAPI interface {
	Create(ctx context.Context, e *Entry) error
	Search(ctx context.Context, f Filter) ([]*Entry, error)
}

// Service appends and queries the audit trail.
//
// Record is a best-effort side effect: it runs after the primary write has
// committed, and a failure is logged but never returned, so callers can not
// roll back on it and an entry may be missing if the store is unavailable.
type Service struct {
	repo     RepositoryAPI
	logger   *slog.Logger
	maxLimit int
	now      func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &Service{repo: repo, logger: logger, maxLimit: maxLimit, now: time.Now}
}

// Record fills the actor and client address from ctx when unset.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.ActorID == 0 {
		e.ActorID = internal.ActorIDFromContext(ctx)
	}
	if e.IPAddress == "" {
		e.IPAddress = internal.ClientIPFromContext(ctx)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}

	// the write must not inherit a request deadline that is about to fire
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.repo.Create(writeCtx, &e); err != nil {
		logger.FromOr(ctx, s.logger).Error("audit write failed",
			"error", err,
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID)
	}
}

// Search returns entries newest first, capped at the configured limit.
func (s *Service) Search(ctx context.Context, f Filter) ([]*Entry, error) {
	if f.Limit <= 0 || f.Limit > s.maxLimit {
		f.Limit = s.maxLimit
	}

	entries, err := s.repo.Search(ctx, f)
	if err != nil {
		s.logger.Error("failed to search audit log", "error", err)
		return nil, internal.NewInternalError("failed to search audit log", err)
	}
	return entries, nil
}

// Changes marshals v for Entry.Changes, dropping it on failure.
func Changes(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
