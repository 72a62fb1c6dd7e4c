package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertEvaluation(ctx context.Context, evaluation entities.Evaluation) error {
	row := evaluationModelFromEntity(evaluation)
	// The unique index on (submission_id, evaluator_id) arbitrates concurrent
	// duplicates; no upsert here because evaluations are immutable.
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateEvaluation
		}
		return r.logError("evaluation_repo_insert_failed", err,
			"evaluation_id", row.ID,
			"submission_id", row.SubmissionID,
			"evaluator_id", row.EvaluatorID,
		)
	}
	return nil
}

func (r *Repository) HasEvaluated(ctx context.Context, submissionID string, evaluatorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&evaluationModel{}).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Where("evaluator_id = ?", strings.TrimSpace(evaluatorID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("evaluation_repo_has_evaluated_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
			"evaluator_id", strings.TrimSpace(evaluatorID),
		)
	}
	return count > 0, nil
}

func (r *Repository) ListEvaluationsBySubmission(ctx context.Context, submissionID string) ([]entities.Evaluation, error) {
	var rows []evaluationModel
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("evaluation_repo_list_by_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return toEvaluationEntities(rows), nil
}

func (r *Repository) ListEvaluationsByEvaluator(ctx context.Context, evaluatorID string) ([]entities.Evaluation, error) {
	var rows []evaluationModel
	if err := r.db.WithContext(ctx).
		Where("evaluator_id = ?", strings.TrimSpace(evaluatorID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("evaluation_repo_list_by_evaluator_failed", err,
			"evaluator_id", strings.TrimSpace(evaluatorID),
		)
	}
	return toEvaluationEntities(rows), nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (ports.SubmissionProjection, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SubmissionProjection{}, domainerrors.ErrSubmissionNotFound
		}
		return ports.SubmissionProjection{}, r.logError("evaluation_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) ListPendingSubmissions(ctx context.Context) ([]ports.SubmissionProjection, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", entities.SubmissionStatusPending).
		Order("priority DESC, queue_position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("evaluation_repo_list_pending_failed", err)
	}
	items := make([]ports.SubmissionProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items, nil
}

func (r *Repository) IncrementEvaluationCount(ctx context.Context, submissionID string) error {
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("id = ?", strings.TrimSpace(submissionID)).
		Update("evaluation_count", gorm.Expr("evaluation_count + 1"))
	if result.Error != nil {
		return r.logError("evaluation_repo_increment_count_failed", result.Error,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) FinalizeSubmission(
	ctx context.Context,
	submissionID string,
	status string,
	finalRating float64,
	decidedAt time.Time,
) (bool, error) {
	// Conditional update arbitrates racing decision checks; losing callers see
	// zero rows affected and skip notifications.
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("id = ?", strings.TrimSpace(submissionID)).
		Where("status = ?", entities.SubmissionStatusPending).
		Updates(map[string]any{
			"status":       strings.TrimSpace(status),
			"final_rating": finalRating,
			"decided_at":   decidedAt.UTC(),
			"updated_at":   decidedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("evaluation_repo_finalize_failed", result.Error,
			"submission_id", strings.TrimSpace(submissionID),
			"status", strings.TrimSpace(status),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CountEvaluators(ctx context.Context, rankThreshold int) (int, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&memberModel{})
	// Members without a recognized tag still rank as membro, so a threshold at
	// or below the membro weight counts every member row.
	if rankThreshold > hierarchy.Weight(hierarchy.LevelMembro) {
		tags := hierarchy.TagsAtOrAbove(rankThreshold)
		if len(tags) == 0 {
			return 0, nil
		}
		query = query.Where("EXISTS (SELECT 1 FROM jsonb_array_elements_text(members.tags) AS tag WHERE tag IN ?)", tags)
	}
	err := query.Count(&count).Error
	if err != nil {
		return 0, r.logError("evaluation_repo_count_evaluators_failed", err,
			"rank_threshold", rankThreshold,
		)
	}
	return int(count), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("evaluation_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if !isUniqueViolation(create.Error) {
			return r.logError("evaluation_repo_append_outbox_insert_failed", create.Error,
				"outbox_id", row.OutboxID,
			)
		}
		var existing outboxModel
		if err := r.db.WithContext(ctx).
			Select("payload").
			Where("outbox_id = ?", row.OutboxID).
			First(&existing).Error; err != nil {
			return r.logError("evaluation_repo_append_outbox_load_existing_failed", err,
				"outbox_id", row.OutboxID,
			)
		}
		if !bytes.Equal(existing.Payload, row.Payload) {
			return domainerrors.ErrConflict
		}
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("evaluation_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("evaluation_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-gallery/evaluation-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("evaluation repository operation failed", fields...)
	return err
}

type evaluationModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	SubmissionID     string    `gorm:"column:submission_id;uniqueIndex:idx_evaluations_submission_evaluator"`
	EvaluatorID      string    `gorm:"column:evaluator_id;uniqueIndex:idx_evaluations_submission_evaluator"`
	EvaluatorName    string    `gorm:"column:evaluator_name"`
	TechnicalQuality int       `gorm:"column:technical_quality"`
	Composition      int       `gorm:"column:composition"`
	MomentAngle      int       `gorm:"column:moment_angle"`
	Editing          int       `gorm:"column:editing"`
	SpotterCriteria  int       `gorm:"column:spotter_criteria"`
	CompositeScore   float64   `gorm:"column:composite_score"`
	Comment          string    `gorm:"column:comment"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (evaluationModel) TableName() string {
	return "evaluations"
}

func evaluationModelFromEntity(evaluation entities.Evaluation) evaluationModel {
	row := evaluationModel{
		ID:               strings.TrimSpace(evaluation.EvaluationID),
		SubmissionID:     strings.TrimSpace(evaluation.SubmissionID),
		EvaluatorID:      strings.TrimSpace(evaluation.EvaluatorID),
		EvaluatorName:    strings.TrimSpace(evaluation.EvaluatorName),
		TechnicalQuality: evaluation.Criteria.TechnicalQuality,
		Composition:      evaluation.Criteria.Composition,
		MomentAngle:      evaluation.Criteria.MomentAngle,
		Editing:          evaluation.Criteria.Editing,
		SpotterCriteria:  evaluation.Criteria.SpotterCriteria,
		CompositeScore:   evaluation.CompositeScore,
		Comment:          strings.TrimSpace(evaluation.Comment),
		CreatedAt:        evaluation.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m evaluationModel) toEntity() entities.Evaluation {
	return entities.Evaluation{
		EvaluationID:  m.ID,
		SubmissionID:  m.SubmissionID,
		EvaluatorID:   m.EvaluatorID,
		EvaluatorName: m.EvaluatorName,
		Criteria: entities.Criteria{
			TechnicalQuality: m.TechnicalQuality,
			Composition:      m.Composition,
			MomentAngle:      m.MomentAngle,
			Editing:          m.Editing,
			SpotterCriteria:  m.SpotterCriteria,
		},
		CompositeScore: m.CompositeScore,
		Comment:        m.Comment,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type submissionModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	AuthorID        string     `gorm:"column:author_id"`
	AuthorName      string     `gorm:"column:author_name"`
	Title           string     `gorm:"column:title"`
	Status          string     `gorm:"column:status"`
	Priority        bool       `gorm:"column:priority"`
	QueuePosition   int        `gorm:"column:queue_position"`
	EvaluationCount int        `gorm:"column:evaluation_count"`
	FinalRating     *float64   `gorm:"column:final_rating"`
	DecidedAt       *time.Time `gorm:"column:decided_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

func (m submissionModel) toProjection() ports.SubmissionProjection {
	return ports.SubmissionProjection{
		SubmissionID:    m.ID,
		AuthorID:        m.AuthorID,
		AuthorName:      m.AuthorName,
		Title:           m.Title,
		Status:          m.Status,
		Priority:        m.Priority,
		QueuePosition:   m.QueuePosition,
		EvaluationCount: m.EvaluationCount,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type memberModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Tags []byte `gorm:"column:tags;type:jsonb"`
}

func (memberModel) TableName() string {
	return "members"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "evaluation_outbox"
}

func toEvaluationEntities(rows []evaluationModel) []entities.Evaluation {
	items := make([]entities.Evaluation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.EvaluationRepository = (*Repository)(nil)
var _ ports.SubmissionGateway = (*Repository)(nil)
var _ ports.MemberDirectory = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
