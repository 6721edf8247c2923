package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type JobType string

const (
	JobTypeOrderConfirmation   JobType = "order_confirmation"
	JobTypeBookingConfirmation JobType = "booking_confirmation"
)

const MaxRetries = 5

type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	RetryCount  int             `json:"retry_count"`
	LastError   string          `json:"last_error,omitempty"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty"`

	// raw is the exact list entry the job was popped as, so it can be
	// removed from the processing list after the struct has changed.
	raw string
}

func (j *Job) Decode(v interface{}) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

func (j *Job) IsLastAttempt() bool {
	return j.RetryCount >= MaxRetries
}

// Queue is a Redis list with a processing list, a delayed sorted set and
// a dead letter list next to it.
type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	delayed    string
	failed     string
}

func NewQueue(redisURL, queueName string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(client, queueName), nil
}

func New(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		delayed:    queueName + ":delayed",
		failed:     queueName + ":failed",
	}
}

func newJob(jobType JobType, payload interface{}) (*Job, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return job, jobJSON, nil
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload interface{}) error {
	job, jobJSON, err := newJob(jobType, payload)
	if err != nil {
		return err
	}

	if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to queue: %w", err)
	}

	log.Debug().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("enqueued job")
	return nil
}

// Dequeue blocks up to timeout. A nil job with a nil error means the
// queue stayed empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	job.raw = result[1]

	if err := q.client.RPush(ctx, q.processing, result[1]).Err(); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("failed to move job to processing list")
	}

	return &job, nil
}

func (q *Queue) CompleteJob(ctx context.Context, job *Job) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %w", err)
	}

	log.Debug().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("completed job")
	return nil
}

// FailJob schedules a retry with exponential backoff starting at 15s.
// After MaxRetries the job goes to the failed list.
func (q *Queue) FailJob(ctx context.Context, job *Job, jobErr error) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("failed to remove job from processing list")
	}

	job.RetryCount++
	job.LastError = jobErr.Error()

	if job.RetryCount <= MaxRetries {
		delay := time.Duration(15*(1<<(job.RetryCount-1))) * time.Second
		retryAt := time.Now().Add(delay).UTC()
		job.NextRetryAt = &retryAt

		jobJSON, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		if err := q.client.ZAdd(ctx, q.delayed, &redis.Z{
			Score:  float64(retryAt.Unix()),
			Member: jobJSON,
		}).Err(); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Msg("failed to schedule retry, moving job to failed list")
			if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
				return fmt.Errorf("failed to push job to failed queue: %w", err)
			}
			return nil
		}

		log.Warn().
			Str("job_id", job.ID).
			Str("type", string(job.Type)).
			Int("retry", job.RetryCount).
			Dur("delay", delay).
			Msg("job scheduled for retry")
		return nil
	}

	job.NextRetryAt = nil
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %w", err)
	}

	log.Error().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Int("retries", job.RetryCount).
		Msg("job moved to failed queue")
	return nil
}

// ProcessDelayedJobs moves every delayed job that is due back to the main
// list and reports how many moved.
func (q *Queue) ProcessDelayedJobs(ctx context.Context) (int, error) {
	now := time.Now().Unix()

	jobs, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", now),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed jobs: %w", err)
	}

	moved := 0
	for _, jobJSON := range jobs {
		// ZREM first so two workers never both requeue the same entry
		removed, err := q.client.ZRem(ctx, q.delayed, jobJSON).Result()
		if err != nil {
			log.Warn().Err(err).Msg("failed to remove job from delayed set")
			continue
		}
		if removed == 0 {
			continue
		}
		if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to move delayed job to main queue")
			continue
		}
		moved++
	}

	if moved > 0 {
		log.Debug().Int("jobs", moved).Msg("moved delayed jobs to main queue")
	}
	return moved, nil
}

// Lengths reports the size of the main, processing, delayed and failed
// collections, in that order.
func (q *Queue) Lengths(ctx context.Context) (main, processing, delayed, failed int64, err error) {
	pipe := q.client.Pipeline()
	mainCmd := pipe.LLen(ctx, q.queueName)
	procCmd := pipe.LLen(ctx, q.processing)
	delayedCmd := pipe.ZCard(ctx, q.delayed)
	failedCmd := pipe.LLen(ctx, q.failed)
	if _, err = pipe.Exec(ctx); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to read queue lengths: %w", err)
	}
	return mainCmd.Val(), procCmd.Val(), delayedCmd.Val(), failedCmd.Val(), nil
}

func (q *Queue) Client() *redis.Client {
	return q.client
}

func (q *Queue) Close() error {
	return q.client.Close()
}
