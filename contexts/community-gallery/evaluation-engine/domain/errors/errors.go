package errors

import "errors"

var (
	ErrInvalidCriteria          = errors.New("evaluation criteria must be integers between 0 and 5")
	ErrSubmissionNotFound       = errors.New("submission not found")
	ErrSubmissionAlreadyDecided = errors.New("submission is already decided")
	ErrSelfEvaluationForbidden  = errors.New("evaluating your own submission is forbidden")
	ErrEvaluatorRankRequired    = errors.New("evaluator rank is required")
	ErrDuplicateEvaluation      = errors.New("submission already evaluated by this member")
	ErrEvaluationNotFound       = errors.New("evaluation not found")
	ErrHistoryAccessRestricted  = errors.New("evaluation history access is restricted")
	ErrConflict                 = errors.New("evaluation conflict")
)
