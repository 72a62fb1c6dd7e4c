package ports

import (
	"context"
	"encoding/json"
	"time"

	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
)

// SubmissionProjection is the slice of submission state the quorum engine
// reads and transitions. The submission-service owns the full record.
type SubmissionProjection struct {
	SubmissionID    string
	AuthorID        string
	AuthorName      string
	Title           string
	Status          string
	Priority        bool
	QueuePosition   int
	EvaluationCount int
	CreatedAt       time.Time
}

type EvaluationRepository interface {
	// InsertEvaluation must enforce uniqueness on (submission_id, evaluator_id)
	// atomically; a losing concurrent duplicate fails with ErrDuplicateEvaluation.
	InsertEvaluation(ctx context.Context, evaluation entities.Evaluation) error
	HasEvaluated(ctx context.Context, submissionID string, evaluatorID string) (bool, error)
	ListEvaluationsBySubmission(ctx context.Context, submissionID string) ([]entities.Evaluation, error)
	ListEvaluationsByEvaluator(ctx context.Context, evaluatorID string) ([]entities.Evaluation, error)
}

type SubmissionGateway interface {
	GetSubmission(ctx context.Context, submissionID string) (SubmissionProjection, error)
	// ListPendingSubmissions returns pending work ordered priority desc, then
	// queue position asc. Always a live query, never a cached snapshot.
	ListPendingSubmissions(ctx context.Context) ([]SubmissionProjection, error)
	IncrementEvaluationCount(ctx context.Context, submissionID string) error
	// FinalizeSubmission conditionally transitions pending -> status, returning
	// false when the submission was already decided by a concurrent check.
	FinalizeSubmission(
		ctx context.Context,
		submissionID string,
		status string,
		finalRating float64,
		decidedAt time.Time,
	) (bool, error)
}

type MemberDirectory interface {
	// CountEvaluators returns the live number of members whose resolved rank is
	// at or above the threshold. Recomputed on every decision check.
	CountEvaluators(ctx context.Context, rankThreshold int) (int, error)
}

type NotificationEmitter interface {
	Emit(ctx context.Context, recipientID string, notifType string, message string, payload map[string]any) error
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
