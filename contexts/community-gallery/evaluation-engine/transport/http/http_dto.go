package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitEvaluationRequest struct {
	TechnicalQuality int    `json:"technical_quality"`
	Composition      int    `json:"composition"`
	MomentAngle      int    `json:"moment_angle"`
	Editing          int    `json:"editing"`
	SpotterCriteria  int    `json:"spotter_criteria"`
	Comment          string `json:"comment,omitempty"`
}

type EvaluationResponse struct {
	EvaluationID     string    `json:"evaluation_id"`
	PhotoID          string    `json:"photo_id"`
	EvaluatorID      string    `json:"evaluator_id"`
	EvaluatorName    string    `json:"evaluator_name,omitempty"`
	TechnicalQuality int       `json:"technical_quality"`
	Composition      int       `json:"composition"`
	MomentAngle      int       `json:"moment_angle"`
	Editing          int       `json:"editing"`
	SpotterCriteria  int       `json:"spotter_criteria"`
	CompositeScore   float64   `json:"composite_score"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type SubmitEvaluationResponse struct {
	Evaluation  EvaluationResponse `json:"evaluation"`
	Decided     bool               `json:"decided"`
	Status      string             `json:"status,omitempty"`
	FinalRating float64            `json:"final_rating,omitempty"`
}

type QueueItem struct {
	PhotoID         string    `json:"photo_id"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	Title           string    `json:"title"`
	Priority        bool      `json:"priority"`
	QueuePosition   int       `json:"queue_position"`
	EvaluationCount int       `json:"evaluation_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type QueueResponse struct {
	Items []QueueItem `json:"items"`
}

type SubmissionHistoryResponse struct {
	PhotoID string               `json:"photo_id"`
	Items   []EvaluationResponse `json:"items"`
}

type EvaluatorStatsResponse struct {
	TotalEvaluations  int            `json:"total_evaluations"`
	AverageScore      float64        `json:"average_score"`
	ScoreDistribution map[string]int `json:"score_distribution"`
}

type EvaluatorHistoryResponse struct {
	EvaluatorID string                 `json:"evaluator_id"`
	Items       []EvaluationResponse   `json:"items"`
	Stats       EvaluatorStatsResponse `json:"stats"`
}
