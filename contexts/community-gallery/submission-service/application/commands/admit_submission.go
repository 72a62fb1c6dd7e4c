package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "tarmac/contexts/community-gallery/submission-service/application"
	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/submission-service/domain/errors"
	"tarmac/contexts/community-gallery/submission-service/ports"
	"tarmac/internal/shared/hierarchy"
)

const (
	subscriptionUnlimited = "unlimited"
	quotaWindow           = 7 * 24 * time.Hour
)

// AdmissionPolicy carries the queue and quota limits the gate enforces.
type AdmissionPolicy struct {
	MaxPendingQueueSize   int
	PriorityLaneSize      int
	WeeklySubmissionLimit int
}

type AdmitSubmissionCommand struct {
	AuthorID      string
	AuthorName    string
	Title         string
	Description   string
	AircraftModel string
	AircraftType  string
	Registration  string
	Airline       string
	Location      string
	PhotoDate     string
}

// AdmitSubmissionUseCase gates new photos into the moderation queue. Checks
// run in a fixed order: approval, quota window reset, capacity, quota, then
// priority placement. A rejected submission never consumes quota.
type AdmitSubmissionUseCase struct {
	Submissions   ports.SubmissionRepository
	Members       ports.MemberRepository
	Notifications ports.NotificationEmitter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Policy        AdmissionPolicy
	Logger        *slog.Logger
}

func (uc AdmitSubmissionUseCase) Execute(ctx context.Context, cmd AdmitSubmissionCommand) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	authorID := strings.TrimSpace(cmd.AuthorID)

	member, err := uc.Members.GetMember(ctx, authorID)
	if err != nil {
		return entities.Submission{}, err
	}
	if !member.Approved {
		logger.Warn("submission from unapproved author rejected",
			"event", "submission_author_not_approved",
			"module", "community-gallery/submission-service",
			"layer", "application",
			"author_id", authorID,
		)
		return entities.Submission{}, domainerrors.ErrAuthorNotApproved
	}

	now := uc.Clock.Now().UTC()
	weeklyCount := member.WeeklySubmissionCount
	if member.QuotaWindowStart.IsZero() || now.Sub(member.QuotaWindowStart.UTC()) >= quotaWindow {
		weeklyCount = 0
		if err := uc.Members.ResetQuotaWindow(ctx, authorID, now); err != nil {
			// Stale persisted window only widens the next reset; admit anyway.
			logger.Warn("quota window reset failed",
				"event", "submission_quota_window_reset_failed",
				"module", "community-gallery/submission-service",
				"layer", "application",
				"author_id", authorID,
				"error", err.Error(),
			)
		}
	}

	pendingCount, err := uc.Submissions.CountPending(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	if pendingCount >= uc.Policy.MaxPendingQueueSize {
		logger.Warn("submission rejected by full queue",
			"event", "submission_queue_full",
			"module", "community-gallery/submission-service",
			"layer", "application",
			"author_id", authorID,
			"pending_count", pendingCount,
			"max_queue_size", uc.Policy.MaxPendingQueueSize,
		)
		uc.emit(ctx, authorID, "queue_full",
			"A fila de moderação está cheia no momento. Tente novamente mais tarde.",
			map[string]any{"pending_count": pendingCount},
		)
		return entities.Submission{}, domainerrors.ErrQueueFull
	}

	quotaExempt := hierarchy.HasTag(member.Tags, hierarchy.LevelColaborador) ||
		strings.EqualFold(strings.TrimSpace(member.SubscriptionType), subscriptionUnlimited)
	if !quotaExempt && weeklyCount >= uc.Policy.WeeklySubmissionLimit {
		logger.Warn("submission rejected by weekly quota",
			"event", "submission_quota_exceeded",
			"module", "community-gallery/submission-service",
			"layer", "application",
			"author_id", authorID,
			"weekly_count", weeklyCount,
			"weekly_limit", uc.Policy.WeeklySubmissionLimit,
		)
		return entities.Submission{}, domainerrors.ErrQuotaExceeded
	}

	// Priority placement depends on overall queue depth: colaborador photos
	// jump the line only while the queue is still inside the reserved slots.
	priority := hierarchy.HasTag(member.Tags, hierarchy.LevelColaborador) &&
		pendingCount < uc.Policy.PriorityLaneSize

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	submission := entities.Submission{
		SubmissionID:  submissionID,
		AuthorID:      authorID,
		AuthorName:    strings.TrimSpace(cmd.AuthorName),
		Title:         strings.TrimSpace(cmd.Title),
		Description:   strings.TrimSpace(cmd.Description),
		AircraftModel: strings.TrimSpace(cmd.AircraftModel),
		AircraftType:  strings.TrimSpace(cmd.AircraftType),
		Registration:  strings.TrimSpace(cmd.Registration),
		Airline:       strings.TrimSpace(cmd.Airline),
		Location:      strings.TrimSpace(cmd.Location),
		PhotoDate:     strings.TrimSpace(cmd.PhotoDate),
		Status:        entities.SubmissionStatusPending,
		Priority:      priority,
		QueuePosition: pendingCount + 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !submission.ValidateCreate() {
		return entities.Submission{}, domainerrors.ErrInvalidSubmissionInput
	}
	if err := uc.Submissions.CreateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	if err := uc.Members.IncrementWeeklyCount(ctx, authorID); err != nil {
		logger.Warn("weekly counter increment failed",
			"event", "submission_quota_increment_failed",
			"module", "community-gallery/submission-service",
			"layer", "application",
			"author_id", authorID,
			"error", err.Error(),
		)
	}

	logger.Info("submission admitted",
		"event", "submission_admitted",
		"module", "community-gallery/submission-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"author_id", authorID,
		"priority", submission.Priority,
		"queue_position", submission.QueuePosition,
	)

	uc.emit(ctx, authorID, "photo_sent",
		fmt.Sprintf("Sua foto '%s' entrou na fila de avaliação na posição %d.",
			submission.Title, submission.QueuePosition),
		map[string]any{
			"photo_id":       submission.SubmissionID,
			"queue_position": submission.QueuePosition,
		},
	)
	return submission, nil
}

func (uc AdmitSubmissionUseCase) emit(
	ctx context.Context,
	recipientID string,
	notifType string,
	message string,
	payload map[string]any,
) {
	if uc.Notifications == nil {
		return
	}
	if err := uc.Notifications.Emit(ctx, recipientID, notifType, message, payload); err != nil {
		application.ResolveLogger(uc.Logger).Warn("notification emit failed",
			"event", "submission_notify_failed",
			"module", "community-gallery/submission-service",
			"layer", "application",
			"recipient_id", recipientID,
			"notification_type", notifType,
			"error", err.Error(),
		)
	}
}
