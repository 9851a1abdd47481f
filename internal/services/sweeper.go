package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"bidmarket/internal/domain"
	"bidmarket/pkg/logger"
)

// ResolutionSweeper periodically resolves listings that expired while open.
// Only the elected leader instance runs the sweep; the synchronous result
// query path stays available on every instance and converges on the same
// idempotent transition.
type ResolutionSweeper struct {
	cron       *cron.Cron
	listings   domain.ListingRepository
	resolver   *ResolverService
	election   domain.LeaderElection
	instanceID string
	interval   time.Duration
	log        logger.Logger
}

func NewResolutionSweeper(
	listings domain.ListingRepository,
	resolver *ResolverService,
	election domain.LeaderElection,
	instanceID string,
	interval time.Duration,
	log logger.Logger,
) *ResolutionSweeper {
	return &ResolutionSweeper{
		cron:       cron.New(cron.WithSeconds()),
		listings:   listings,
		resolver:   resolver,
		election:   election,
		instanceID: instanceID,
		interval:   interval,
		log:        log,
	}
}

func (s *ResolutionSweeper) Start(ctx context.Context) error {
	s.log.Info("Starting resolution sweeper", "interval", s.interval)

	if _, err := s.election.BecomeLeader(ctx, s.instanceID); err != nil {
		s.log.Warn("Leader election unavailable", "error", err)
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.Sweep(ctx, time.Now())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *ResolutionSweeper) Stop() error {
	s.log.Info("Stopping resolution sweeper")
	s.cron.Stop()
	return s.election.ReleaseLeadership(context.Background(), s.instanceID)
}

// Sweep resolves every listing expired at the given time. Failures on one
// listing do not stop the sweep; the listing stays open and is retried on
// the next run.
func (s *ResolutionSweeper) Sweep(ctx context.Context, now time.Time) {
	isLeader, err := s.election.IsLeader(ctx, s.instanceID)
	if err != nil {
		s.log.Error("Leader check failed", "error", err)
		return
	}
	if !isLeader {
		if _, err := s.election.BecomeLeader(ctx, s.instanceID); err != nil {
			s.log.Error("Failed to contend for leadership", "error", err)
		}
		return
	}

	expired, err := s.listings.ListExpiredOpen(ctx, now)
	if err != nil {
		s.log.Error("Failed to list expired listings", "error", err)
		return
	}

	for _, listing := range expired {
		outcome, err := s.resolver.Resolve(ctx, listing.ID, now)
		if err != nil {
			// A concurrent result query or cancellation may have removed it.
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			s.log.Error("Failed to resolve listing", "listing_id", listing.ID, "error", err)
			continue
		}
		s.log.Info("Swept listing", "listing_id", listing.ID, "status", outcome.Status)
	}
}
