package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/internal/core/ports"
	"github.com/retailhub/backoffice/pkg/idx"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that assigns ULIDs and persists events.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = idx.NewAt(event.OccurredAt).String()
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Msg("audit event recorded")
	return nil
}
