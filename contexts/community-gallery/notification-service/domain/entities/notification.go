package entities

import "time"

const (
	TypePhotoSent     = "photo_sent"
	TypePhotoApproved = "photo_approved"
	TypePhotoRejected = "photo_rejected"
	TypeQueueFull     = "queue_full"
)

type Notification struct {
	NotificationID string
	RecipientID    string
	Type           string
	Message        string
	Payload        map[string]any
	Read           bool
	CreatedAt      time.Time
}
