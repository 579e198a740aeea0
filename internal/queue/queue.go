// Package queue is a Redis-backed at-least-once job queue with bounded
// retries and capped exponential backoff.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is the envelope stored on the queue.
type Job struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Attempt int             `json:"attempt"`
}

// Handler processes one job. Returning an error wrapped by Transient
// schedules a retry; any other error dead-letters the job immediately.
type Handler func(ctx context.Context, job Job) error

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks an error as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether an error was marked retryable.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Options tune queue behavior; zero values fall back to defaults.
type Options struct {
	Key         string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Queue owns one Redis-backed work list plus a scheduled set for retries and
// a dead-letter list for exhausted jobs.
type Queue struct {
	client       *redis.Client
	key          string
	scheduledKey string
	deadKey      string
	maxAttempts  int
	baseDelay    time.Duration
	maxDelay     time.Duration
	handlers     map[string]Handler
	clock        func() time.Time
	log          *zap.SugaredLogger
}

func New(client *redis.Client, log *zap.SugaredLogger, opts Options) *Queue {
	key := opts.Key
	if key == "" {
		key = "typetrace:jobs"
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Minute
	}
	return &Queue{
		client:       client,
		key:          key,
		scheduledKey: key + ":scheduled",
		deadKey:      key + ":dead",
		maxAttempts:  maxAttempts,
		baseDelay:    baseDelay,
		maxDelay:     maxDelay,
		handlers:     make(map[string]Handler),
		clock:        time.Now,
		log:          log,
	}
}

// Handle registers the handler for a job type. Not safe to call after Run.
func (q *Queue) Handle(jobType string, h Handler) {
	q.handlers[jobType] = h
}

// Enqueue pushes a new job and returns its ID.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: body}
	if err := q.push(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

func (q *Queue) push(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func (q *Queue) schedule(ctx context.Context, job Job, at time.Time) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	err = q.client.ZAdd(ctx, q.scheduledKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: raw,
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", job.ID, err)
	}
	return nil
}

// Run consumes jobs with the given number of workers until the context is
// canceled. A scheduler goroutine moves due retries back onto the work list.
func (q *Queue) Run(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return q.runScheduler(ctx)
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return q.runWorker(ctx)
		})
	}
	return g.Wait()
}

func (q *Queue) runWorker(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.client.BLPop(ctx, time.Second, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.log.Errorw("queue pop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.log.Errorw("discarding malformed job", "error", err)
			continue
		}
		q.dispatch(ctx, job)
	}
}

func (q *Queue) dispatch(ctx context.Context, job Job) {
	handler, ok := q.handlers[job.Type]
	if !ok {
		q.deadLetter(ctx, job, fmt.Errorf("no handler for job type %q", job.Type))
		return
	}

	err := handler(ctx, job)
	if err == nil {
		return
	}

	if IsTransient(err) && job.Attempt+1 < q.maxAttempts {
		job.Attempt++
		delay := q.backoff(job.Attempt)
		q.log.Warnw("job failed, retrying",
			"job", job.ID, "type", job.Type, "attempt", job.Attempt, "delay", delay, "error", err)
		if serr := q.schedule(ctx, job, q.clock().Add(delay)); serr != nil {
			q.log.Errorw("retry scheduling failed, job lost", "job", job.ID, "error", serr)
		}
		return
	}

	q.deadLetter(ctx, job, err)
}

func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.baseDelay << (attempt - 1)
	if delay > q.maxDelay || delay <= 0 {
		delay = q.maxDelay
	}
	return delay
}

type deadJob struct {
	Job      Job    `json:"job"`
	Error    string `json:"error"`
	FailedAt string `json:"failed_at"`
}

func (q *Queue) deadLetter(ctx context.Context, job Job, cause error) {
	q.log.Errorw("job failed permanently", "job", job.ID, "type", job.Type, "attempt", job.Attempt, "error", cause)
	raw, err := json.Marshal(deadJob{
		Job:      job,
		Error:    cause.Error(),
		FailedAt: q.clock().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := q.client.RPush(ctx, q.deadKey, raw).Err(); err != nil {
		q.log.Errorw("dead-letter push failed", "job", job.ID, "error", err)
	}
}

func (q *Queue) runScheduler(ctx context.Context) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := q.moveDue(ctx); err != nil && ctx.Err() == nil {
				q.log.Errorw("scheduler sweep failed", "error", err)
			}
		}
	}
}

// moveDue shifts every scheduled job whose due time has passed onto the work
// list. The ZRem result guards against double-moves from concurrent sweeps.
func (q *Queue) moveDue(ctx context.Context) error {
	now := strconv.FormatInt(q.clock().UnixMilli(), 10)
	members, err := q.client.ZRangeByScore(ctx, q.scheduledKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return err
	}
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.scheduledKey, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.RPush(ctx, q.key, member).Err(); err != nil {
			return err
		}
	}
	return nil
}

// DeadCount returns the number of dead-lettered jobs, for operator checks.
func (q *Queue) DeadCount(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.deadKey).Result()
}
