package queries

import (
	"context"
	"strings"

	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"
)

// EvaluationQueryUseCase serves the evaluator work queue and the evaluation
// history read models.
type EvaluationQueryUseCase struct {
	Evaluations            ports.EvaluationRepository
	Submissions            ports.SubmissionGateway
	EvaluatorRankThreshold int
	HistoryRankThreshold   int
}

// PendingQueue returns the submissions the requesting evaluator can still act
// on: pending work minus their own submissions and anything they already
// evaluated, preserving the gateway's priority/position ordering.
func (uc EvaluationQueryUseCase) PendingQueue(
	ctx context.Context,
	evaluatorID string,
	evaluatorTags []string,
) ([]ports.SubmissionProjection, error) {
	evaluatorID = strings.TrimSpace(evaluatorID)
	if hierarchy.Rank(evaluatorTags) < uc.EvaluatorRankThreshold {
		return nil, domainerrors.ErrEvaluatorRankRequired
	}

	pending, err := uc.Submissions.ListPendingSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	queue := make([]ports.SubmissionProjection, 0, len(pending))
	for _, submission := range pending {
		if strings.EqualFold(strings.TrimSpace(submission.AuthorID), evaluatorID) {
			continue
		}
		evaluated, err := uc.Evaluations.HasEvaluated(ctx, submission.SubmissionID, evaluatorID)
		if err != nil {
			return nil, err
		}
		if evaluated {
			continue
		}
		queue = append(queue, submission)
	}
	return queue, nil
}

// SubmissionHistory returns every evaluation recorded for a submission.
// Restricted to senior staff so evaluator verdicts stay confidential.
func (uc EvaluationQueryUseCase) SubmissionHistory(
	ctx context.Context,
	submissionID string,
	requesterTags []string,
) ([]entities.Evaluation, error) {
	if hierarchy.Rank(requesterTags) < uc.HistoryRankThreshold {
		return nil, domainerrors.ErrHistoryAccessRestricted
	}
	submissionID = strings.TrimSpace(submissionID)
	if _, err := uc.Submissions.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	return uc.Evaluations.ListEvaluationsBySubmission(ctx, submissionID)
}

// EvaluatorHistory returns an evaluator's own evaluations plus scoring stats.
// Members may read their own history; anyone else's requires senior staff rank.
func (uc EvaluationQueryUseCase) EvaluatorHistory(
	ctx context.Context,
	evaluatorID string,
	requesterID string,
	requesterTags []string,
) ([]entities.Evaluation, entities.EvaluatorStats, error) {
	evaluatorID = strings.TrimSpace(evaluatorID)
	requesterID = strings.TrimSpace(requesterID)
	if !strings.EqualFold(evaluatorID, requesterID) &&
		hierarchy.Rank(requesterTags) < uc.HistoryRankThreshold {
		return nil, entities.EvaluatorStats{}, domainerrors.ErrHistoryAccessRestricted
	}

	evaluations, err := uc.Evaluations.ListEvaluationsByEvaluator(ctx, evaluatorID)
	if err != nil {
		return nil, entities.EvaluatorStats{}, err
	}

	stats := entities.EvaluatorStats{
		TotalEvaluations:  len(evaluations),
		ScoreDistribution: make(map[int]int),
	}
	total := 0.0
	for _, evaluation := range evaluations {
		total += evaluation.CompositeScore
		bucket := int(evaluation.CompositeScore)
		stats.ScoreDistribution[bucket]++
	}
	if len(evaluations) > 0 {
		stats.AverageScore = entities.Round2(total / float64(len(evaluations)))
	}
	return evaluations, stats, nil
}
