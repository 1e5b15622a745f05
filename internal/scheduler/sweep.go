package scheduler

import (
	"context"
	"time"

	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultSweepPageSize = 200

// MatchSweep periodically re-queues an evaluation for every active lead. It
// catches triggers lost while Redis was unreachable; dedup keeps it idempotent.
type MatchSweep struct {
	leads    ports.ActiveLeadPager
	enqueuer ports.TriggerEnqueuer
	log      *logger.Logger
	interval time.Duration
	pageSize int
}

func NewMatchSweep(leads ports.ActiveLeadPager, enqueuer ports.TriggerEnqueuer, log *logger.Logger, interval time.Duration) *MatchSweep {
	return &MatchSweep{
		leads:    leads,
		enqueuer: enqueuer,
		log:      log,
		interval: interval,
		pageSize: defaultSweepPageSize,
	}
}

func (s *MatchSweep) Run(ctx context.Context) {
	if s == nil || s.leads == nil || s.enqueuer == nil || s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			queued, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error("match sweep failed", "queued", queued, "error", err)
				continue
			}
			if queued > 0 {
				s.log.Info("match sweep queued evaluations", "queued", queued)
			}
		}
	}
}

// SweepOnce walks active leads in id order and returns how many triggers it queued.
func (s *MatchSweep) SweepOnce(ctx context.Context) (int, error) {
	queued := 0
	after := uuid.Nil
	for {
		ids, err := s.leads.ListActiveLeadIDs(ctx, after, s.pageSize)
		if err != nil {
			return queued, err
		}
		for _, id := range ids {
			if err := s.enqueuer.EnqueueLeadEvaluation(ctx, id); err != nil {
				return queued, err
			}
			queued++
		}
		if len(ids) < s.pageSize {
			return queued, nil
		}
		after = ids[len(ids)-1]
	}
}
