package scheduler

import (
	"context"
	"fmt"

	"realty_crm_backend/internal/matching/service"
	"realty_crm_backend/platform/apperr"
	"realty_crm_backend/platform/config"
	"realty_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	evaluator service.Evaluator
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, evaluator service.Evaluator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(evaluator, log)
	w.server = server
	return w, nil
}

func newWorker(evaluator service.Evaluator, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		evaluator: evaluator,
		log:       log,
	}

	mux.HandleFunc(TaskEvaluateLead, w.handleEvaluateLead)
	mux.HandleFunc(TaskEvaluateProperty, w.handleEvaluateProperty)

	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleEvaluateLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEvaluateLeadPayload(task)
	if err != nil {
		return fmt.Errorf("parse %s payload: %v: %w", TaskEvaluateLead, err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("parse lead id: %v: %w", err, asynq.SkipRetry)
	}

	_, err = w.evaluator.EvaluateLead(ctx, leadID)
	return w.settle(TaskEvaluateLead, leadID, err)
}

func (w *Worker) handleEvaluateProperty(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEvaluatePropertyPayload(task)
	if err != nil {
		return fmt.Errorf("parse %s payload: %v: %w", TaskEvaluateProperty, err, asynq.SkipRetry)
	}

	propertyID, err := uuid.Parse(payload.PropertyID)
	if err != nil {
		return fmt.Errorf("parse property id: %v: %w", err, asynq.SkipRetry)
	}

	_, err = w.evaluator.EvaluateProperty(ctx, propertyID)
	return w.settle(TaskEvaluateProperty, propertyID, err)
}

// settle decides whether asynq should retry. A subject deleted after the
// trigger was queued has nothing left to match.
func (w *Worker) settle(task string, subjectID uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.KindNotFound) {
		w.log.Info("evaluation subject vanished", "task", task, "subject_id", subjectID.String())
		return nil
	}
	w.log.Warn("evaluation task failed", "task", task, "subject_id", subjectID.String(), "error", err)
	return err
}
