package commands

import (
	"encoding/json"
	"time"

	"tarmac/contexts/community-gallery/evaluation-engine/ports"
)

func newDecisionEnvelope(
	eventID string,
	submissionID string,
	status string,
	finalRating float64,
	evaluationCount int,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	// Decision events are partitioned by submission for stable ordering on
	// submission-scoped consumers.
	payload, err := json.Marshal(map[string]any{
		"submission_id":    submissionID,
		"status":           status,
		"final_rating":     finalRating,
		"evaluation_count": evaluationCount,
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "submission." + status,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "evaluation-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "submission_id",
		PartitionKey:     submissionID,
		Data:             payload,
	}, nil
}
