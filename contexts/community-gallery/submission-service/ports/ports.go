package ports

import (
	"context"
	"time"

	"tarmac/contexts/community-gallery/submission-service/domain/entities"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	ListSubmissionsByAuthor(ctx context.Context, authorID string) ([]entities.Submission, error)
	// ListApprovedSubmissions returns the public gallery feed, newest first.
	// An empty aircraftType means no filter.
	ListApprovedSubmissions(ctx context.Context, aircraftType string) ([]entities.Submission, error)
	// CountPending is always a live count, never a cached occupancy snapshot.
	CountPending(ctx context.Context) (int, error)
}

type MemberRepository interface {
	GetMember(ctx context.Context, memberID string) (entities.Member, error)
	// ResetQuotaWindow zeroes the weekly counter and restamps the window start.
	ResetQuotaWindow(ctx context.Context, memberID string, windowStart time.Time) error
	IncrementWeeklyCount(ctx context.Context, memberID string) error
}

type NotificationEmitter interface {
	Emit(ctx context.Context, recipientID string, notifType string, message string, payload map[string]any) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
