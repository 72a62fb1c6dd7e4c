package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type NotificationResponse struct {
	NotificationID string         `json:"notification_id"`
	Type           string         `json:"type"`
	Message        string         `json:"message"`
	Payload        map[string]any `json:"payload,omitempty"`
	Read           bool           `json:"read"`
	CreatedAt      time.Time      `json:"created_at"`
}

type NotificationListResponse struct {
	Items []NotificationResponse `json:"items"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MarkAllReadResponse struct {
	UpdatedCount int `json:"updated_count"`
}
