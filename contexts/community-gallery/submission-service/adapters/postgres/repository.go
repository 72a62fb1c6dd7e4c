package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/submission-service/domain/errors"
	"tarmac/contexts/community-gallery/submission-service/ports"

	"gorm.io/gorm"
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

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("submission_repo_create_failed", err,
			"submission_id", row.ID,
			"author_id", row.AuthorID,
		)
	}
	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("submission_repo_get_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSubmissionsByAuthor(ctx context.Context, authorID string) ([]entities.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", strings.TrimSpace(authorID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("submission_repo_list_by_author_failed", err,
			"author_id", strings.TrimSpace(authorID),
		)
	}
	return toSubmissionEntities(rows), nil
}

func (r *Repository) ListApprovedSubmissions(ctx context.Context, aircraftType string) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", string(entities.SubmissionStatusApproved))
	if strings.TrimSpace(aircraftType) != "" {
		tx = tx.Where("aircraft_type = ?", strings.TrimSpace(aircraftType))
	}
	var rows []submissionModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("submission_repo_list_approved_failed", err,
			"aircraft_type", strings.TrimSpace(aircraftType),
		)
	}
	return toSubmissionEntities(rows), nil
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("status = ?", string(entities.SubmissionStatusPending)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("submission_repo_count_pending_failed", err)
	}
	return int(count), nil
}

func (r *Repository) GetMember(ctx context.Context, memberID string) (entities.Member, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(memberID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, domainerrors.ErrMemberNotFound
		}
		return entities.Member{}, r.logError("submission_repo_get_member_failed", err,
			"member_id", strings.TrimSpace(memberID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ResetQuotaWindow(ctx context.Context, memberID string, windowStart time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("id = ?", strings.TrimSpace(memberID)).
		Updates(map[string]any{
			"weekly_submission_count": 0,
			"quota_window_start":      windowStart.UTC(),
		})
	if result.Error != nil {
		return r.logError("submission_repo_reset_quota_window_failed", result.Error,
			"member_id", strings.TrimSpace(memberID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) IncrementWeeklyCount(ctx context.Context, memberID string) error {
	result := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("id = ?", strings.TrimSpace(memberID)).
		Update("weekly_submission_count", gorm.Expr("weekly_submission_count + 1"))
	if result.Error != nil {
		return r.logError("submission_repo_increment_weekly_failed", result.Error,
			"member_id", strings.TrimSpace(memberID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-gallery/submission-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("submission repository operation failed", fields...)
	return err
}

type submissionModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	AuthorID        string     `gorm:"column:author_id"`
	AuthorName      string     `gorm:"column:author_name"`
	Title           string     `gorm:"column:title"`
	Description     string     `gorm:"column:description"`
	AircraftModel   string     `gorm:"column:aircraft_model"`
	AircraftType    string     `gorm:"column:aircraft_type"`
	Registration    string     `gorm:"column:registration"`
	Airline         string     `gorm:"column:airline"`
	Location        string     `gorm:"column:location"`
	PhotoDate       string     `gorm:"column:photo_date"`
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

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	row := submissionModel{
		ID:              strings.TrimSpace(submission.SubmissionID),
		AuthorID:        strings.TrimSpace(submission.AuthorID),
		AuthorName:      strings.TrimSpace(submission.AuthorName),
		Title:           strings.TrimSpace(submission.Title),
		Description:     strings.TrimSpace(submission.Description),
		AircraftModel:   strings.TrimSpace(submission.AircraftModel),
		AircraftType:    strings.TrimSpace(submission.AircraftType),
		Registration:    strings.TrimSpace(submission.Registration),
		Airline:         strings.TrimSpace(submission.Airline),
		Location:        strings.TrimSpace(submission.Location),
		PhotoDate:       strings.TrimSpace(submission.PhotoDate),
		Status:          string(submission.Status),
		Priority:        submission.Priority,
		QueuePosition:   submission.QueuePosition,
		EvaluationCount: submission.EvaluationCount,
		FinalRating:     submission.FinalRating,
		DecidedAt:       normalizeOptionalTime(submission.DecidedAt),
		CreatedAt:       submission.CreatedAt.UTC(),
		UpdatedAt:       submission.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:    m.ID,
		AuthorID:        m.AuthorID,
		AuthorName:      m.AuthorName,
		Title:           m.Title,
		Description:     m.Description,
		AircraftModel:   m.AircraftModel,
		AircraftType:    m.AircraftType,
		Registration:    m.Registration,
		Airline:         m.Airline,
		Location:        m.Location,
		PhotoDate:       m.PhotoDate,
		Status:          entities.SubmissionStatus(m.Status),
		Priority:        m.Priority,
		QueuePosition:   m.QueuePosition,
		EvaluationCount: m.EvaluationCount,
		FinalRating:     m.FinalRating,
		DecidedAt:       normalizeOptionalTime(m.DecidedAt),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type memberModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	Name                  string    `gorm:"column:name"`
	Tags                  []byte    `gorm:"column:tags;type:jsonb"`
	Approved              bool      `gorm:"column:approved"`
	SubscriptionType      string    `gorm:"column:subscription_type"`
	WeeklySubmissionCount int       `gorm:"column:weekly_submission_count"`
	QuotaWindowStart      time.Time `gorm:"column:quota_window_start"`
}

func (memberModel) TableName() string {
	return "members"
}

func (m memberModel) toEntity() entities.Member {
	var tags []string
	if len(m.Tags) > 0 {
		// Malformed rows read as tagless members rather than failing the gate.
		_ = json.Unmarshal(m.Tags, &tags)
	}
	return entities.Member{
		MemberID:              m.ID,
		Name:                  m.Name,
		Tags:                  tags,
		Approved:              m.Approved,
		SubscriptionType:      m.SubscriptionType,
		WeeklySubmissionCount: m.WeeklySubmissionCount,
		QuotaWindowStart:      m.QuotaWindowStart.UTC(),
	}
}

func toSubmissionEntities(rows []submissionModel) []entities.Submission {
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

var _ ports.SubmissionRepository = (*Repository)(nil)
var _ ports.MemberRepository = (*Repository)(nil)
