package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	application "tarmac/contexts/community-gallery/evaluation-engine/application"
	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"
)

// DecisionPolicy carries the quorum thresholds. Both score and majority
// comparisons are strict: a composite of exactly the score threshold does not
// approve, and a fraction of exactly the majority threshold rejects.
type DecisionPolicy struct {
	EvaluatorRankThreshold    int
	QuorumFraction            float64
	ApprovalScoreThreshold    float64
	ApprovalMajorityThreshold float64
}

// SubmitEvaluationCommand is the write-model input for one evaluator's verdict.
type SubmitEvaluationCommand struct {
	SubmissionID  string
	EvaluatorID   string
	EvaluatorName string
	EvaluatorTags []string
	Criteria      entities.Criteria
	Comment       string
}

// SubmitEvaluationResult returns the stored evaluation plus the decision
// outcome of the synchronous quorum check that follows every accepted insert.
type SubmitEvaluationResult struct {
	Evaluation entities.Evaluation
	Decision   DecisionOutcome
}

// DecisionOutcome reports whether this call finalized the submission.
type DecisionOutcome struct {
	Finalized   bool
	Status      string
	FinalRating float64
}

// EvaluationUseCase records evaluations and runs the quorum decision check.
// The no-duplicate invariant is enforced twice: a pre-check for a clean error
// and the repository's atomic uniqueness constraint for concurrent races.
type EvaluationUseCase struct {
	Evaluations   ports.EvaluationRepository
	Submissions   ports.SubmissionGateway
	Members       ports.MemberDirectory
	Notifications ports.NotificationEmitter
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Policy        DecisionPolicy
	Logger        *slog.Logger
}

func (uc EvaluationUseCase) SubmitEvaluation(
	ctx context.Context,
	cmd SubmitEvaluationCommand,
) (SubmitEvaluationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	evaluatorID := strings.TrimSpace(cmd.EvaluatorID)
	logger.Info("evaluation processing started",
		"event", "evaluation_submit_started",
		"module", "community-gallery/evaluation-engine",
		"layer", "application",
		"submission_id", submissionID,
		"evaluator_id", evaluatorID,
	)

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return SubmitEvaluationResult{}, err
	}
	if submission.Status != entities.SubmissionStatusPending {
		return SubmitEvaluationResult{}, domainerrors.ErrSubmissionAlreadyDecided
	}
	if strings.EqualFold(strings.TrimSpace(submission.AuthorID), evaluatorID) {
		logger.Warn("self evaluation rejected",
			"event", "evaluation_self_forbidden",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"evaluator_id", evaluatorID,
		)
		return SubmitEvaluationResult{}, domainerrors.ErrSelfEvaluationForbidden
	}
	if hierarchy.Rank(cmd.EvaluatorTags) < uc.Policy.EvaluatorRankThreshold {
		logger.Warn("underranked evaluation rejected",
			"event", "evaluation_rank_forbidden",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"evaluator_id", evaluatorID,
			"evaluator_rank", hierarchy.Rank(cmd.EvaluatorTags),
		)
		return SubmitEvaluationResult{}, domainerrors.ErrEvaluatorRankRequired
	}
	if evaluated, err := uc.Evaluations.HasEvaluated(ctx, submissionID, evaluatorID); err != nil {
		return SubmitEvaluationResult{}, err
	} else if evaluated {
		return SubmitEvaluationResult{}, domainerrors.ErrDuplicateEvaluation
	}
	if !cmd.Criteria.Valid() {
		return SubmitEvaluationResult{}, domainerrors.ErrInvalidCriteria
	}

	evaluationID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitEvaluationResult{}, err
	}
	now := uc.now()
	evaluation := entities.Evaluation{
		EvaluationID:   evaluationID,
		SubmissionID:   submissionID,
		EvaluatorID:    evaluatorID,
		EvaluatorName:  strings.TrimSpace(cmd.EvaluatorName),
		Criteria:       cmd.Criteria,
		CompositeScore: cmd.Criteria.Composite(),
		Comment:        strings.TrimSpace(cmd.Comment),
		CreatedAt:      now,
	}
	if err := uc.Evaluations.InsertEvaluation(ctx, evaluation); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateEvaluation) {
			// Lost a concurrent race for the same (submission, evaluator) pair.
			return SubmitEvaluationResult{}, domainerrors.ErrDuplicateEvaluation
		}
		return SubmitEvaluationResult{}, err
	}
	if err := uc.Submissions.IncrementEvaluationCount(ctx, submissionID); err != nil {
		logger.Warn("evaluation count increment failed",
			"event", "evaluation_count_increment_failed",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"error", err.Error(),
		)
	}

	logger.Info("evaluation recorded",
		"event", "evaluation_recorded",
		"module", "community-gallery/evaluation-engine",
		"layer", "application",
		"evaluation_id", evaluation.EvaluationID,
		"submission_id", submissionID,
		"evaluator_id", evaluatorID,
		"composite_score", evaluation.CompositeScore,
	)

	outcome, err := uc.RunDecisionCheck(ctx, submissionID)
	if err != nil {
		return SubmitEvaluationResult{}, err
	}
	return SubmitEvaluationResult{Evaluation: evaluation, Decision: outcome}, nil
}

// RunDecisionCheck recomputes the quorum state for a submission and finalizes
// it when quorum and majority hold. Pool size and quorum threshold are live
// queries on every call; re-running on a decided submission is a no-op.
func (uc EvaluationUseCase) RunDecisionCheck(ctx context.Context, submissionID string) (DecisionOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID = strings.TrimSpace(submissionID)

	totalEvaluators, err := uc.Members.CountEvaluators(ctx, uc.Policy.EvaluatorRankThreshold)
	if err != nil {
		return DecisionOutcome{}, err
	}
	if totalEvaluators == 0 {
		return DecisionOutcome{}, nil
	}

	evaluations, err := uc.Evaluations.ListEvaluationsBySubmission(ctx, submissionID)
	if err != nil {
		return DecisionOutcome{}, err
	}
	minRequired := int(math.Floor(float64(totalEvaluators) * uc.Policy.QuorumFraction))
	if minRequired < 1 {
		minRequired = 1
	}
	if len(evaluations) < minRequired {
		return DecisionOutcome{}, nil
	}

	approving := 0
	total := 0.0
	for _, evaluation := range evaluations {
		if evaluation.CompositeScore > uc.Policy.ApprovalScoreThreshold {
			approving++
		}
		total += evaluation.CompositeScore
	}
	approvalFraction := float64(approving) / float64(len(evaluations))
	finalRating := entities.Round2(total / float64(len(evaluations)))

	status := entities.SubmissionStatusRejected
	if approvalFraction > uc.Policy.ApprovalMajorityThreshold {
		status = entities.SubmissionStatusApproved
	}

	now := uc.now()
	finalized, err := uc.Submissions.FinalizeSubmission(ctx, submissionID, status, finalRating, now)
	if err != nil {
		return DecisionOutcome{}, err
	}
	if !finalized {
		// A concurrent check already decided; no second notification.
		return DecisionOutcome{}, nil
	}

	logger.Info("submission decided",
		"event", "evaluation_submission_decided",
		"module", "community-gallery/evaluation-engine",
		"layer", "application",
		"submission_id", submissionID,
		"status", status,
		"final_rating", finalRating,
		"evaluation_count", len(evaluations),
		"total_evaluators", totalEvaluators,
		"min_required", minRequired,
	)

	uc.notifyDecision(ctx, submissionID, status, finalRating)
	uc.appendDecisionEvent(ctx, submissionID, status, finalRating, len(evaluations), now)

	return DecisionOutcome{Finalized: true, Status: status, FinalRating: finalRating}, nil
}

func (uc EvaluationUseCase) notifyDecision(ctx context.Context, submissionID string, status string, finalRating float64) {
	logger := application.ResolveLogger(uc.Logger)
	if uc.Notifications == nil {
		return
	}
	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		logger.Warn("decision notification lookup failed",
			"event", "evaluation_decision_notify_lookup_failed",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"error", err.Error(),
		)
		return
	}

	notifType := "photo_rejected"
	message := fmt.Sprintf(
		"Sua foto '%s' não foi aprovada desta vez. Nota final: %.1f. Você pode reenviar após ajustes.",
		submission.Title, finalRating,
	)
	if status == entities.SubmissionStatusApproved {
		notifType = "photo_approved"
		message = fmt.Sprintf(
			"Sua foto '%s' foi aprovada! Nota final: %.1f. Ela já está publicada no site.",
			submission.Title, finalRating,
		)
	}
	payload := map[string]any{
		"photo_id": submissionID,
		"rating":   finalRating,
	}
	if err := uc.Notifications.Emit(ctx, submission.AuthorID, notifType, message, payload); err != nil {
		// Notification failure never rolls back the decision.
		logger.Warn("decision notification emit failed",
			"event", "evaluation_decision_notify_failed",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"recipient_id", submission.AuthorID,
			"error", err.Error(),
		)
	}
}

func (uc EvaluationUseCase) appendDecisionEvent(
	ctx context.Context,
	submissionID string,
	status string,
	finalRating float64,
	evaluationCount int,
	occurredAt time.Time,
) {
	logger := application.ResolveLogger(uc.Logger)
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("decision event id generation failed",
			"event", "evaluation_decision_event_id_failed",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"error", err.Error(),
		)
		return
	}
	envelope, err := newDecisionEnvelope(eventID, submissionID, status, finalRating, evaluationCount, occurredAt)
	if err == nil {
		err = uc.Outbox.AppendOutbox(ctx, envelope)
	}
	if err != nil {
		logger.Warn("decision event append failed",
			"event", "evaluation_decision_event_append_failed",
			"module", "community-gallery/evaluation-engine",
			"layer", "application",
			"submission_id", submissionID,
			"error", err.Error(),
		)
	}
}

func (uc EvaluationUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
