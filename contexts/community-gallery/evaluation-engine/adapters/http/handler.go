package httpadapter

import (
	"context"
	"log/slog"
	"strconv"

	"tarmac/contexts/community-gallery/evaluation-engine/application/commands"
	"tarmac/contexts/community-gallery/evaluation-engine/application/queries"
	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	httptransport "tarmac/contexts/community-gallery/evaluation-engine/transport/http"
)

type Handler struct {
	Evaluations commands.EvaluationUseCase
	Queries     queries.EvaluationQueryUseCase
	Logger      *slog.Logger
}

func (h Handler) SubmitEvaluationHandler(
	ctx context.Context,
	photoID string,
	evaluatorID string,
	evaluatorName string,
	evaluatorTags []string,
	req httptransport.SubmitEvaluationRequest,
) (httptransport.SubmitEvaluationResponse, error) {
	result, err := h.Evaluations.SubmitEvaluation(ctx, commands.SubmitEvaluationCommand{
		SubmissionID:  photoID,
		EvaluatorID:   evaluatorID,
		EvaluatorName: evaluatorName,
		EvaluatorTags: evaluatorTags,
		Criteria: entities.Criteria{
			TechnicalQuality: req.TechnicalQuality,
			Composition:      req.Composition,
			MomentAngle:      req.MomentAngle,
			Editing:          req.Editing,
			SpotterCriteria:  req.SpotterCriteria,
		},
		Comment: req.Comment,
	})
	if err != nil {
		return httptransport.SubmitEvaluationResponse{}, err
	}
	return httptransport.SubmitEvaluationResponse{
		Evaluation:  mapEvaluation(result.Evaluation),
		Decided:     result.Decision.Finalized,
		Status:      result.Decision.Status,
		FinalRating: result.Decision.FinalRating,
	}, nil
}

func (h Handler) PendingQueueHandler(
	ctx context.Context,
	evaluatorID string,
	evaluatorTags []string,
) (httptransport.QueueResponse, error) {
	pending, err := h.Queries.PendingQueue(ctx, evaluatorID, evaluatorTags)
	if err != nil {
		return httptransport.QueueResponse{}, err
	}
	items := make([]httptransport.QueueItem, 0, len(pending))
	for _, submission := range pending {
		items = append(items, httptransport.QueueItem{
			PhotoID:         submission.SubmissionID,
			AuthorID:        submission.AuthorID,
			AuthorName:      submission.AuthorName,
			Title:           submission.Title,
			Priority:        submission.Priority,
			QueuePosition:   submission.QueuePosition,
			EvaluationCount: submission.EvaluationCount,
			CreatedAt:       submission.CreatedAt,
		})
	}
	return httptransport.QueueResponse{Items: items}, nil
}

func (h Handler) SubmissionHistoryHandler(
	ctx context.Context,
	photoID string,
	requesterTags []string,
) (httptransport.SubmissionHistoryResponse, error) {
	evaluations, err := h.Queries.SubmissionHistory(ctx, photoID, requesterTags)
	if err != nil {
		return httptransport.SubmissionHistoryResponse{}, err
	}
	return httptransport.SubmissionHistoryResponse{
		PhotoID: photoID,
		Items:   mapEvaluations(evaluations),
	}, nil
}

func (h Handler) EvaluatorHistoryHandler(
	ctx context.Context,
	evaluatorID string,
	requesterID string,
	requesterTags []string,
) (httptransport.EvaluatorHistoryResponse, error) {
	evaluations, stats, err := h.Queries.EvaluatorHistory(ctx, evaluatorID, requesterID, requesterTags)
	if err != nil {
		return httptransport.EvaluatorHistoryResponse{}, err
	}
	distribution := make(map[string]int, len(stats.ScoreDistribution))
	for bucket, count := range stats.ScoreDistribution {
		distribution[strconv.Itoa(bucket)] = count
	}
	return httptransport.EvaluatorHistoryResponse{
		EvaluatorID: evaluatorID,
		Items:       mapEvaluations(evaluations),
		Stats: httptransport.EvaluatorStatsResponse{
			TotalEvaluations:  stats.TotalEvaluations,
			AverageScore:      stats.AverageScore,
			ScoreDistribution: distribution,
		},
	}, nil
}

func mapEvaluation(evaluation entities.Evaluation) httptransport.EvaluationResponse {
	return httptransport.EvaluationResponse{
		EvaluationID:     evaluation.EvaluationID,
		PhotoID:          evaluation.SubmissionID,
		EvaluatorID:      evaluation.EvaluatorID,
		EvaluatorName:    evaluation.EvaluatorName,
		TechnicalQuality: evaluation.Criteria.TechnicalQuality,
		Composition:      evaluation.Criteria.Composition,
		MomentAngle:      evaluation.Criteria.MomentAngle,
		Editing:          evaluation.Criteria.Editing,
		SpotterCriteria:  evaluation.Criteria.SpotterCriteria,
		CompositeScore:   evaluation.CompositeScore,
		Comment:          evaluation.Comment,
		CreatedAt:        evaluation.CreatedAt,
	}
}

func mapEvaluations(evaluations []entities.Evaluation) []httptransport.EvaluationResponse {
	items := make([]httptransport.EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		items = append(items, mapEvaluation(evaluation))
	}
	return items
}
