package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AdmitSubmissionRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	AircraftModel string `json:"aircraft_model,omitempty"`
	AircraftType  string `json:"aircraft_type,omitempty"`
	Registration  string `json:"registration,omitempty"`
	Airline       string `json:"airline,omitempty"`
	Location      string `json:"location,omitempty"`
	PhotoDate     string `json:"photo_date,omitempty"`
}

type SubmissionResponse struct {
	PhotoID         string     `json:"photo_id"`
	AuthorID        string     `json:"author_id"`
	AuthorName      string     `json:"author_name,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	AircraftModel   string     `json:"aircraft_model,omitempty"`
	AircraftType    string     `json:"aircraft_type,omitempty"`
	Registration    string     `json:"registration,omitempty"`
	Airline         string     `json:"airline,omitempty"`
	Location        string     `json:"location,omitempty"`
	PhotoDate       string     `json:"photo_date,omitempty"`
	Status          string     `json:"status"`
	Priority        bool       `json:"priority"`
	QueuePosition   int        `json:"queue_position"`
	EvaluationCount int        `json:"evaluation_count"`
	FinalRating     *float64   `json:"final_rating,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
}

type QueueStatusResponse struct {
	CurrentPendingCount int  `json:"current_pending_count"`
	MaxQueueSize        int  `json:"max_queue_size"`
	IsFull              bool `json:"is_full"`
	PrioritySlotsUsed   int  `json:"priority_slots_used"`
	PriorityLaneSize    int  `json:"priority_lane_size"`
}
