package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client      *asynq.Client
	queue       string
	dedupWindow time.Duration
}

// TriggerConfig is what the client needs to enqueue evaluation triggers.
type TriggerConfig interface {
	config.SchedulerConfig
	GetMatchTriggerDedupWindow() time.Duration
}

func NewClient(cfg TriggerConfig) (*Client, error) {
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

	return &Client{
		client:      asynq.NewClient(opt),
		queue:       queue,
		dedupWindow: cfg.GetMatchTriggerDedupWindow(),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueLeadEvaluation(ctx context.Context, leadID uuid.UUID) error {
	task, err := NewEvaluateLeadTask(EvaluateLeadPayload{LeadID: leadID.String()})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) EnqueuePropertyEvaluation(ctx context.Context, propertyID uuid.UUID) error {
	task, err := NewEvaluatePropertyTask(EvaluatePropertyPayload{PropertyID: propertyID.String()})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// enqueue coalesces identical pending triggers: a duplicate inside the dedup
// window is already queued and will observe the latest state when it runs.
func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("scheduler client not configured")
	}

	opts := []asynq.Option{asynq.Queue(c.queue)}
	if c.dedupWindow > 0 {
		opts = append(opts, asynq.Unique(c.dedupWindow))
	}

	_, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ ports.TriggerEnqueuer = (*Client)(nil)
