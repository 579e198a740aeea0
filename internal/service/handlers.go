package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/typetrace/typetrace/internal/queue"
)

// RegisterHandlers binds every job type to its service method.
func RegisterHandlers(q *queue.Queue, evaluator *Evaluator, processor *CommentProcessor,
	notifier *Notifier, intake *Intake) {

	q.Handle(JobEvaluateCommit, func(ctx context.Context, job queue.Job) error {
		var payload EvaluatePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", job.Type, err)
		}
		return evaluator.Evaluate(ctx, payload.CommitID)
	})

	q.Handle(JobProcessComment, func(ctx context.Context, job queue.Job) error {
		var ev CommentEvent
		if err := json.Unmarshal(job.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s payload: %w", job.Type, err)
		}
		return processor.Process(ctx, ev)
	})

	q.Handle(JobConsentRequest, func(ctx context.Context, job queue.Job) error {
		var payload ConsentRequestPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", job.Type, err)
		}
		return notifier.SendConsentRequest(ctx, payload)
	})

	q.Handle(JobFetchProject, func(ctx context.Context, job queue.Job) error {
		var payload FetchPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", job.Type, err)
		}
		return intake.FetchProject(ctx, payload)
	})
}
