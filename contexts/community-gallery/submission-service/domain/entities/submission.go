package entities

import (
	"strings"
	"time"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is one photo waiting for, or past, community moderation.
type Submission struct {
	SubmissionID    string
	AuthorID        string
	AuthorName      string
	Title           string
	Description     string
	AircraftModel   string
	AircraftType    string
	Registration    string
	Airline         string
	Location        string
	PhotoDate       string
	Status          SubmissionStatus
	Priority        bool
	QueuePosition   int
	EvaluationCount int
	FinalRating     *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DecidedAt       *time.Time
}

func (s Submission) ValidateCreate() bool {
	return strings.TrimSpace(s.AuthorID) != "" &&
		strings.TrimSpace(s.Title) != ""
}

// Member is the submission-side view of a community member: the fields the
// admission gate needs and the quota counters this module owns.
type Member struct {
	MemberID              string
	Name                  string
	Tags                  []string
	Approved              bool
	SubscriptionType      string
	WeeklySubmissionCount int
	QuotaWindowStart      time.Time
}

// QueueStatus is the live occupancy snapshot of the pending queue.
type QueueStatus struct {
	CurrentPendingCount int
	MaxQueueSize        int
	IsFull              bool
	PrioritySlotsUsed   int
	PriorityLaneSize    int
}
