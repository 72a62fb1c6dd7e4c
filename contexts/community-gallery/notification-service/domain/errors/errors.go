package errors

import "errors"

var (
	ErrInvalidRequest       = errors.New("notification request is invalid")
	ErrNotificationNotFound = errors.New("notification not found")
)
