package queries

import (
	"context"
	"strings"

	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	"tarmac/contexts/community-gallery/submission-service/ports"
)

type SubmissionQueryUseCase struct {
	Submissions      ports.SubmissionRepository
	MaxQueueSize     int
	PriorityLaneSize int
}

// QueueStatus returns live pending-queue occupancy. Counts are recomputed on
// every call.
func (uc SubmissionQueryUseCase) QueueStatus(ctx context.Context) (entities.QueueStatus, error) {
	pending, err := uc.Submissions.CountPending(ctx)
	if err != nil {
		return entities.QueueStatus{}, err
	}
	prioritySlots := pending
	if prioritySlots > uc.PriorityLaneSize {
		prioritySlots = uc.PriorityLaneSize
	}
	return entities.QueueStatus{
		CurrentPendingCount: pending,
		MaxQueueSize:        uc.MaxQueueSize,
		IsFull:              pending >= uc.MaxQueueSize,
		PrioritySlotsUsed:   prioritySlots,
		PriorityLaneSize:    uc.PriorityLaneSize,
	}, nil
}

func (uc SubmissionQueryUseCase) MySubmissions(ctx context.Context, authorID string) ([]entities.Submission, error) {
	return uc.Submissions.ListSubmissionsByAuthor(ctx, strings.TrimSpace(authorID))
}

func (uc SubmissionQueryUseCase) ApprovedGallery(ctx context.Context, aircraftType string) ([]entities.Submission, error) {
	return uc.Submissions.ListApprovedSubmissions(ctx, strings.TrimSpace(aircraftType))
}
