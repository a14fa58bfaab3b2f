package scheduler

import (
	"context"
	"time"

	"hiring_pipeline_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// pipelineMaxRetry bounds redelivery of pipeline tasks. Handlers only fail on
// storage errors; scoring failures are escalated and acknowledged.
const pipelineMaxRetry = 8

// pipelineTaskTimeout caps one pipeline step: clip downloads plus a scoring
// call, each of which also has its own shorter deadline.
const pipelineTaskTimeout = 15 * time.Minute

// Client enqueues pipeline tasks. A nil *Client reports errNoQueue.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := connOpt(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(opt, cfg.GetAsynqQueueName()), nil
}

func newClient(opt asynq.RedisConnOpt, queue string) *Client {
	return &Client{client: asynq.NewClient(opt), queue: queueName(queue)}
}

func (c *Client) ready() bool { return c != nil && c.client != nil }

func (c *Client) Close() error {
	if !c.ready() {
		return nil
	}
	return c.client.Close()
}

// EnqueueApplicant queues one pipeline step for the applicant.
func (c *Client) EnqueueApplicant(ctx context.Context, taskType string, applicantID uuid.UUID) error {
	if !c.ready() {
		return errNoQueue
	}
	task, err := NewApplicantTask(taskType, applicantID)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(pipelineMaxRetry), asynq.Timeout(pipelineTaskTimeout))
	return err
}

// Ping checks the Redis connection behind the queue.
func (c *Client) Ping(ctx context.Context) error {
	if !c.ready() {
		return errNoQueue
	}
	return c.client.Ping()
}
