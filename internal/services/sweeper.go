package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"petaria-auction/internal/domain"
	"petaria-auction/pkg/logger"
)

// ExpirySweeper settles due auctions in the background. Only the instance
// currently holding leadership runs the sweep, so a fleet of replicas
// settles each auction once.
type ExpirySweeper struct {
	cron       *cron.Cron
	queries    domain.AuctionQueries
	settlement *SettlementService
	leader     domain.LeaderElection
	instanceID string
	interval   string
	batchSize  int
	log        logger.Logger
}

func NewExpirySweeper(queries domain.AuctionQueries, settlement *SettlementService, leader domain.LeaderElection,
	instanceID, interval string, batchSize int, log logger.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		cron:       cron.New(),
		queries:    queries,
		settlement: settlement,
		leader:     leader,
		instanceID: instanceID,
		interval:   interval,
		batchSize:  batchSize,
		log:        log,
	}
}

func (s *ExpirySweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.interval, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Expiry sweeper started", "interval", s.interval, "batch_size", s.batchSize)
	return nil
}

func (s *ExpirySweeper) Stop() {
	s.cron.Stop()
	s.log.Info("Expiry sweeper stopped")
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	isLeader, err := s.leader.IsLeader(ctx, s.instanceID)
	if err != nil {
		s.log.Error("Failed to check leadership", "error", err)
		return
	}
	if !isLeader {
		return
	}

	ids, err := s.queries.ExpiredActiveIDs(ctx, time.Now(), s.batchSize)
	if err != nil {
		s.log.Error("Failed to list expired auctions", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	s.log.Info("Sweeping expired auctions", "count", len(ids))
	for _, id := range ids {
		if err := s.settlement.SettleExpired(ctx, id); err != nil {
			s.log.Error("Failed to settle expired auction", "auction_id", id, "error", err)
		}
	}
}
