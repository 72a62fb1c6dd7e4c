package errors

import "errors"

var (
	ErrInvalidSubmissionInput = errors.New("submission requires an author and a title")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrMemberNotFound         = errors.New("member not found")
	ErrAuthorNotApproved      = errors.New("author is not an approved member")
	ErrQueueFull              = errors.New("moderation queue is at capacity")
	ErrQuotaExceeded          = errors.New("weekly submission quota exceeded")
)
