package entities

import (
	"math"
	"time"
)

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Criteria are the five weighted scoring axes every evaluation carries.
// Each score is an integer in [0,5].
type Criteria struct {
	TechnicalQuality int `json:"technical_quality"`
	Composition      int `json:"composition"`
	MomentAngle      int `json:"moment_angle"`
	Editing          int `json:"editing"`
	SpotterCriteria  int `json:"spotter_criteria"`
}

func (c Criteria) scores() [5]int {
	return [5]int{c.TechnicalQuality, c.Composition, c.MomentAngle, c.Editing, c.SpotterCriteria}
}

// Valid reports whether every criterion sits in the allowed [0,5] range.
func (c Criteria) Valid() bool {
	for _, score := range c.scores() {
		if score < 0 || score > 5 {
			return false
		}
	}
	return true
}

// Composite is the mean of the five criterion scores, rounded to two decimals.
func (c Criteria) Composite() float64 {
	total := 0
	for _, score := range c.scores() {
		total += score
	}
	return Round2(float64(total) / 5)
}

// Evaluation is one evaluator's immutable verdict on one submission.
// At most one exists per (submission, evaluator) pair.
type Evaluation struct {
	EvaluationID   string
	SubmissionID   string
	EvaluatorID    string
	EvaluatorName  string
	Criteria       Criteria
	CompositeScore float64
	Comment        string
	CreatedAt      time.Time
}

// EvaluatorStats summarizes an evaluator's scoring behavior for anomaly review.
type EvaluatorStats struct {
	TotalEvaluations  int
	AverageScore      float64
	ScoreDistribution map[int]int
}

// Round2 rounds to two decimal places, the precision every stored score uses.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
