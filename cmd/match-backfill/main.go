package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/internal/matching"
	"realty_crm_backend/platform/config"
	"realty_crm_backend/platform/db"
	"realty_crm_backend/platform/logger"
	"realty_crm_backend/platform/validator"

	"github.com/google/uuid"
)

func main() {
	batchSize := flag.Int("batch", 100, "active leads fetched per page")
	pause := flag.Duration("pause", 0, "sleep between leads to spare the database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting match backfill", "batch", *batchSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Inline evaluation: no enqueuer, so every lead is evaluated in this process.
	module := matching.NewModule(pool, cfg, events.NewInMemoryBus(log), nil, validator.New(), log)
	repo := module.Repository()
	engine := module.Engine()

	var evaluated, created, failed int
	after := uuid.Nil
	for {
		ids, err := repo.ListActiveLeadIDs(ctx, after, *batchSize)
		if err != nil {
			log.Error("failed to list active leads", "after", after, "error", err)
			return
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				log.Info("match backfill interrupted", "evaluated", evaluated, "created", created, "failed", failed)
				return
			}

			report, err := engine.EvaluateLead(ctx, id)
			evaluated++
			created += report.Created()
			if err != nil {
				failed++
				log.Error("lead evaluation failed", "leadId", id, "error", err)
			}
			if *pause > 0 {
				time.Sleep(*pause)
			}
		}

		if len(ids) < *batchSize {
			break
		}
		after = ids[len(ids)-1]
	}

	log.Info("match backfill complete", "evaluated", evaluated, "created", created, "failed", failed)
}
