package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// EmittedNotification captures fire-and-forget emissions for assertions.
type EmittedNotification struct {
	RecipientID string
	Type        string
	Message     string
	Payload     map[string]any
}

type Store struct {
	mu sync.RWMutex

	evaluations map[string]entities.Evaluation
	submissions map[string]ports.SubmissionProjection
	memberTags  map[string][]string
	outbox      map[string]outboxRecord

	emitted []EmittedNotification
}

func NewStore(seed []entities.Evaluation) *Store {
	evaluations := make(map[string]entities.Evaluation, len(seed))
	for _, evaluation := range seed {
		evaluations[evaluation.EvaluationID] = evaluation
	}
	return &Store{
		evaluations: evaluations,
		submissions: make(map[string]ports.SubmissionProjection),
		memberTags:  make(map[string][]string),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SetSubmission(submission ports.SubmissionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission.SubmissionID = strings.TrimSpace(submission.SubmissionID)
	submission.AuthorID = strings.TrimSpace(submission.AuthorID)
	if submission.Status == "" {
		submission.Status = entities.SubmissionStatusPending
	}
	s.submissions[submission.SubmissionID] = submission
}

func (s *Store) SetMember(memberID string, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberTags[strings.TrimSpace(memberID)] = append([]string(nil), tags...)
}

// Emitted returns a copy of every notification emitted so far.
func (s *Store) Emitted() []EmittedNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EmittedNotification(nil), s.emitted...)
}

func (s *Store) InsertEvaluation(_ context.Context, evaluation entities.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	submissionID := strings.TrimSpace(evaluation.SubmissionID)
	evaluatorID := strings.TrimSpace(evaluation.EvaluatorID)
	for _, existing := range s.evaluations {
		if existing.SubmissionID == submissionID &&
			strings.EqualFold(existing.EvaluatorID, evaluatorID) {
			return domainerrors.ErrDuplicateEvaluation
		}
	}
	s.evaluations[strings.TrimSpace(evaluation.EvaluationID)] = evaluation
	return nil
}

func (s *Store) HasEvaluated(_ context.Context, submissionID string, evaluatorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissionID = strings.TrimSpace(submissionID)
	evaluatorID = strings.TrimSpace(evaluatorID)
	for _, evaluation := range s.evaluations {
		if evaluation.SubmissionID == submissionID &&
			strings.EqualFold(evaluation.EvaluatorID, evaluatorID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListEvaluationsBySubmission(_ context.Context, submissionID string) ([]entities.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Evaluation, 0)
	for _, evaluation := range s.evaluations {
		if evaluation.SubmissionID == strings.TrimSpace(submissionID) {
			items = append(items, evaluation)
		}
	}
	sortEvaluationsByCreation(items)
	return items, nil
}

func (s *Store) ListEvaluationsByEvaluator(_ context.Context, evaluatorID string) ([]entities.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Evaluation, 0)
	for _, evaluation := range s.evaluations {
		if strings.EqualFold(evaluation.EvaluatorID, strings.TrimSpace(evaluatorID)) {
			items = append(items, evaluation)
		}
	}
	sortEvaluationsByCreation(items)
	return items, nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (ports.SubmissionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return ports.SubmissionProjection{}, domainerrors.ErrSubmissionNotFound
	}
	return item, nil
}

func (s *Store) ListPendingSubmissions(_ context.Context) ([]ports.SubmissionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.SubmissionProjection, 0)
	for _, submission := range s.submissions {
		if submission.Status == entities.SubmissionStatusPending {
			items = append(items, submission)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority
		}
		return items[i].QueuePosition < items[j].QueuePosition
	})
	return items, nil
}

func (s *Store) IncrementEvaluationCount(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(submissionID)
	submission, ok := s.submissions[key]
	if !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	submission.EvaluationCount++
	s.submissions[key] = submission
	return nil
}

func (s *Store) FinalizeSubmission(
	_ context.Context,
	submissionID string,
	status string,
	_ float64,
	_ time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(submissionID)
	submission, ok := s.submissions[key]
	if !ok {
		return false, domainerrors.ErrSubmissionNotFound
	}
	if submission.Status != entities.SubmissionStatusPending {
		return false, nil
	}
	submission.Status = strings.TrimSpace(status)
	s.submissions[key] = submission
	return true, nil
}

func (s *Store) CountEvaluators(_ context.Context, rankThreshold int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, tags := range s.memberTags {
		if hierarchy.Rank(tags) >= rankThreshold {
			count++
		}
	}
	return count, nil
}

func (s *Store) Emit(
	_ context.Context,
	recipientID string,
	notifType string,
	message string,
	payload map[string]any,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted = append(s.emitted, EmittedNotification{
		RecipientID: strings.TrimSpace(recipientID),
		Type:        strings.TrimSpace(notifType),
		Message:     message,
		Payload:     payload,
	})
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortEvaluationsByCreation(items []entities.Evaluation) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

var (
	_ ports.EvaluationRepository = (*Store)(nil)
	_ ports.SubmissionGateway    = (*Store)(nil)
	_ ports.MemberDirectory      = (*Store)(nil)
	_ ports.NotificationEmitter  = (*Store)(nil)
	_ ports.OutboxWriter         = (*Store)(nil)
	_ ports.OutboxRepository     = (*Store)(nil)
	_ ports.Clock                = (*Store)(nil)
	_ ports.IDGenerator          = (*Store)(nil)
)
