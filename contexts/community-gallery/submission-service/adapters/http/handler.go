package httpadapter

import (
	"context"
	"log/slog"

	"tarmac/contexts/community-gallery/submission-service/application/commands"
	"tarmac/contexts/community-gallery/submission-service/application/queries"
	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	httptransport "tarmac/contexts/community-gallery/submission-service/transport/http"
)

type Handler struct {
	Admissions commands.AdmitSubmissionUseCase
	Queries    queries.SubmissionQueryUseCase
	Logger     *slog.Logger
}

func (h Handler) AdmitSubmissionHandler(
	ctx context.Context,
	authorID string,
	authorName string,
	req httptransport.AdmitSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Admissions.Execute(ctx, commands.AdmitSubmissionCommand{
		AuthorID:      authorID,
		AuthorName:    authorName,
		Title:         req.Title,
		Description:   req.Description,
		AircraftModel: req.AircraftModel,
		AircraftType:  req.AircraftType,
		Registration:  req.Registration,
		Airline:       req.Airline,
		Location:      req.Location,
		PhotoDate:     req.PhotoDate,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) QueueStatusHandler(ctx context.Context) (httptransport.QueueStatusResponse, error) {
	status, err := h.Queries.QueueStatus(ctx)
	if err != nil {
		return httptransport.QueueStatusResponse{}, err
	}
	return httptransport.QueueStatusResponse{
		CurrentPendingCount: status.CurrentPendingCount,
		MaxQueueSize:        status.MaxQueueSize,
		IsFull:              status.IsFull,
		PrioritySlotsUsed:   status.PrioritySlotsUsed,
		PriorityLaneSize:    status.PriorityLaneSize,
	}, nil
}

func (h Handler) MySubmissionsHandler(ctx context.Context, authorID string) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.Queries.MySubmissions(ctx, authorID)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	return httptransport.SubmissionListResponse{Items: mapSubmissions(submissions)}, nil
}

func (h Handler) ApprovedGalleryHandler(ctx context.Context, aircraftType string) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.Queries.ApprovedGallery(ctx, aircraftType)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	return httptransport.SubmissionListResponse{Items: mapSubmissions(submissions)}, nil
}

func mapSubmission(submission entities.Submission) httptransport.SubmissionResponse {
	return httptransport.SubmissionResponse{
		PhotoID:         submission.SubmissionID,
		AuthorID:        submission.AuthorID,
		AuthorName:      submission.AuthorName,
		Title:           submission.Title,
		Description:     submission.Description,
		AircraftModel:   submission.AircraftModel,
		AircraftType:    submission.AircraftType,
		Registration:    submission.Registration,
		Airline:         submission.Airline,
		Location:        submission.Location,
		PhotoDate:       submission.PhotoDate,
		Status:          string(submission.Status),
		Priority:        submission.Priority,
		QueuePosition:   submission.QueuePosition,
		EvaluationCount: submission.EvaluationCount,
		FinalRating:     submission.FinalRating,
		DecidedAt:       submission.DecidedAt,
		CreatedAt:       submission.CreatedAt,
	}
}

func mapSubmissions(submissions []entities.Submission) []httptransport.SubmissionResponse {
	items := make([]httptransport.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, mapSubmission(submission))
	}
	return items
}
