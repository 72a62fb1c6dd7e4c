package evaluationengine

import (
	"context"
	"errors"
	"testing"

	"tarmac/contexts/community-gallery/evaluation-engine/adapters/memory"
	"tarmac/contexts/community-gallery/evaluation-engine/application/commands"
	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"
)

var (
	evaluatorTags = []string{"avaliador"}
	gestaoTags    = []string{"gestao"}
	memberTags    = []string{"membro"}
)

func newTestModule(t *testing.T) Module {
	t.Helper()
	return NewInMemoryModule(nil, nil)
}

func seedPendingPhoto(store *memory.Store, photoID string, authorID string) {
	store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: photoID,
		AuthorID:     authorID,
		AuthorName:   "Author " + authorID,
		Title:        "Arrival " + photoID,
		Status:       entities.SubmissionStatusPending,
	})
}

func seedEvaluators(store *memory.Store, ids ...string) {
	for _, id := range ids {
		store.SetMember(id, evaluatorTags)
	}
}

func submitScores(
	t *testing.T,
	module Module,
	photoID string,
	evaluatorID string,
	score int,
) commands.SubmitEvaluationResult {
	t.Helper()
	result, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  photoID,
		EvaluatorID:   evaluatorID,
		EvaluatorName: "Evaluator " + evaluatorID,
		EvaluatorTags: evaluatorTags,
		Criteria: entities.Criteria{
			TechnicalQuality: score,
			Composition:      score,
			MomentAngle:      score,
			Editing:          score,
			SpotterCriteria:  score,
		},
	})
	if err != nil {
		t.Fatalf("submit evaluation by %s: %v", evaluatorID, err)
	}
	return result
}

func TestSubmitEvaluationRecordsCompositeScore(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")

	result, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-1",
		EvaluatorTags: evaluatorTags,
		Criteria: entities.Criteria{
			TechnicalQuality: 4,
			Composition:      3,
			MomentAngle:      5,
			Editing:          4,
			SpotterCriteria:  4,
		},
	})
	if err != nil {
		t.Fatalf("submit evaluation: %v", err)
	}
	if result.Evaluation.CompositeScore != 4.0 {
		t.Fatalf("expected composite 4.0, got %v", result.Evaluation.CompositeScore)
	}
	if result.Decision.Finalized {
		t.Fatalf("one evaluation out of four evaluators must not finalize")
	}
}

func TestSubmitEvaluationRejectsOutOfRangeCriteria(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1")

	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-1",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 6, Composition: 3, MomentAngle: 3, Editing: 3, SpotterCriteria: 3},
	})
	if !errors.Is(err, domainerrors.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestSubmitEvaluationForbidsSelfEvaluation(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "eval-1")
	seedEvaluators(module.Store, "eval-1")

	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-1",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 4, Composition: 4, MomentAngle: 4, Editing: 4, SpotterCriteria: 4},
	})
	if !errors.Is(err, domainerrors.ErrSelfEvaluationForbidden) {
		t.Fatalf("expected ErrSelfEvaluationForbidden, got %v", err)
	}
}

func TestSubmitEvaluationRequiresEvaluatorRank(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1")

	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "member-1",
		EvaluatorTags: memberTags,
		Criteria:      entities.Criteria{TechnicalQuality: 4, Composition: 4, MomentAngle: 4, Editing: 4, SpotterCriteria: 4},
	})
	if !errors.Is(err, domainerrors.ErrEvaluatorRankRequired) {
		t.Fatalf("expected ErrEvaluatorRankRequired, got %v", err)
	}
}

func TestSubmitEvaluationRejectsDuplicate(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")

	submitScores(t, module, "photo-1", "eval-1", 4)
	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-1",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 2, Composition: 2, MomentAngle: 2, Editing: 2, SpotterCriteria: 2},
	})
	if !errors.Is(err, domainerrors.ErrDuplicateEvaluation) {
		t.Fatalf("expected ErrDuplicateEvaluation, got %v", err)
	}
}

func TestSubmitEvaluationRejectsUnknownSubmission(t *testing.T) {
	module := newTestModule(t)
	seedEvaluators(module.Store, "eval-1")

	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "missing",
		EvaluatorID:   "eval-1",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 4, Composition: 4, MomentAngle: 4, Editing: 4, SpotterCriteria: 4},
	})
	if !errors.Is(err, domainerrors.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestQuorumOfFourEvaluatorsNeedsTwoEvaluations(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")

	first := submitScores(t, module, "photo-1", "eval-1", 4)
	if first.Decision.Finalized {
		t.Fatalf("one of two required evaluations must not finalize")
	}
	second := submitScores(t, module, "photo-1", "eval-2", 4)
	if !second.Decision.Finalized {
		t.Fatalf("second evaluation must reach quorum with four evaluators")
	}
	if second.Decision.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", second.Decision.Status)
	}
}

func TestDecisionRejectsWhenMajorityNotStrict(t *testing.T) {
	// Composites 4.0 and 2.0: one of two above 3.0 is exactly half, which is
	// not a strict majority. Final rating is the mean, 3.0.
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")

	submitScores(t, module, "photo-1", "eval-1", 4)
	result := submitScores(t, module, "photo-1", "eval-2", 2)
	if !result.Decision.Finalized {
		t.Fatalf("quorum reached, expected a decision")
	}
	if result.Decision.Status != entities.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Decision.Status)
	}
	if result.Decision.FinalRating != 3.0 {
		t.Fatalf("expected final rating 3.0, got %v", result.Decision.FinalRating)
	}
}

func TestDecisionApprovesOnStrictMajority(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")

	submitScores(t, module, "photo-1", "eval-1", 4)
	result, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-2",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 4, Composition: 4, MomentAngle: 3, Editing: 3, SpotterCriteria: 4},
	})
	if err != nil {
		t.Fatalf("submit evaluation: %v", err)
	}
	// Composites 4.0 and 3.6: both strictly above 3.0, mean 3.8.
	if result.Decision.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", result.Decision.Status)
	}
	if result.Decision.FinalRating != 3.8 {
		t.Fatalf("expected final rating 3.8, got %v", result.Decision.FinalRating)
	}
}

func TestSingleEvaluatorCompositeAtThresholdRejects(t *testing.T) {
	// With one evaluator in the pool quorum is one, and a composite of exactly
	// 3.0 is not strictly above the approval threshold.
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1")

	result := submitScores(t, module, "photo-1", "eval-1", 3)
	if !result.Decision.Finalized {
		t.Fatalf("single-evaluator pool must decide on the first evaluation")
	}
	if result.Decision.Status != entities.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Decision.Status)
	}
}

func TestDecisionCheckIsIdempotent(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1")

	submitScores(t, module, "photo-1", "eval-1", 4)
	outcome, err := module.Handler.Evaluations.RunDecisionCheck(context.Background(), "photo-1")
	if err != nil {
		t.Fatalf("rerun decision check: %v", err)
	}
	if outcome.Finalized {
		t.Fatalf("second decision check on a decided submission must be a no-op")
	}

	emitted := module.Store.Emitted()
	decisionNotifications := 0
	for _, notification := range emitted {
		if notification.Type == "photo_approved" || notification.Type == "photo_rejected" {
			decisionNotifications++
		}
	}
	if decisionNotifications != 1 {
		t.Fatalf("expected exactly one decision notification, got %d", decisionNotifications)
	}
}

func TestSubmitEvaluationOnDecidedSubmissionFails(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2")

	submitScores(t, module, "photo-1", "eval-1", 4)
	_, err := module.Handler.Evaluations.SubmitEvaluation(context.Background(), commands.SubmitEvaluationCommand{
		SubmissionID:  "photo-1",
		EvaluatorID:   "eval-2",
		EvaluatorTags: evaluatorTags,
		Criteria:      entities.Criteria{TechnicalQuality: 4, Composition: 4, MomentAngle: 4, Editing: 4, SpotterCriteria: 4},
	})
	if !errors.Is(err, domainerrors.ErrSubmissionAlreadyDecided) {
		t.Fatalf("expected ErrSubmissionAlreadyDecided, got %v", err)
	}
}

func TestDecisionEmitsNotificationAndOutboxEvent(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1")

	submitScores(t, module, "photo-1", "eval-1", 4)

	emitted := module.Store.Emitted()
	if len(emitted) != 1 {
		t.Fatalf("expected one notification, got %d", len(emitted))
	}
	if emitted[0].RecipientID != "author-1" || emitted[0].Type != "photo_approved" {
		t.Fatalf("unexpected notification %+v", emitted[0])
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(pending))
	}
	if pending[0].EventType != "submission.approved" {
		t.Fatalf("expected submission.approved event, got %s", pending[0].EventType)
	}
}

func TestPendingQueueExcludesOwnAndEvaluated(t *testing.T) {
	module := newTestModule(t)
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: "photo-own", AuthorID: "eval-1", Title: "own", Status: entities.SubmissionStatusPending,
		QueuePosition: 1,
	})
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: "photo-open", AuthorID: "author-2", Title: "open", Status: entities.SubmissionStatusPending,
		QueuePosition: 2,
	})
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: "photo-done", AuthorID: "author-3", Title: "done", Status: entities.SubmissionStatusPending,
		QueuePosition: 3,
	})
	submitScores(t, module, "photo-done", "eval-1", 4)

	queue, err := module.Handler.Queries.PendingQueue(context.Background(), "eval-1", evaluatorTags)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	if len(queue) != 1 || queue[0].SubmissionID != "photo-open" {
		t.Fatalf("expected only photo-open in the queue, got %+v", queue)
	}
}

func TestPendingQueueOrdersPriorityFirst(t *testing.T) {
	module := newTestModule(t)
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: "photo-a", AuthorID: "author-1", Status: entities.SubmissionStatusPending,
		QueuePosition: 1,
	})
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID: "photo-b", AuthorID: "author-2", Status: entities.SubmissionStatusPending,
		Priority: true, QueuePosition: 5,
	})

	queue, err := module.Handler.Queries.PendingQueue(context.Background(), "eval-1", evaluatorTags)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	if len(queue) != 2 || queue[0].SubmissionID != "photo-b" {
		t.Fatalf("expected priority submission first, got %+v", queue)
	}
}

func TestPendingQueueRequiresEvaluatorRank(t *testing.T) {
	module := newTestModule(t)
	_, err := module.Handler.Queries.PendingQueue(context.Background(), "member-1", memberTags)
	if !errors.Is(err, domainerrors.ErrEvaluatorRankRequired) {
		t.Fatalf("expected ErrEvaluatorRankRequired, got %v", err)
	}
}

func TestSubmissionHistoryRestrictedToSeniorStaff(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedEvaluators(module.Store, "eval-1", "eval-2")
	submitScores(t, module, "photo-1", "eval-1", 4)

	if _, err := module.Handler.Queries.SubmissionHistory(context.Background(), "photo-1", evaluatorTags); !errors.Is(err, domainerrors.ErrHistoryAccessRestricted) {
		t.Fatalf("expected ErrHistoryAccessRestricted for evaluator rank, got %v", err)
	}
	history, err := module.Handler.Queries.SubmissionHistory(context.Background(), "photo-1", gestaoTags)
	if err != nil {
		t.Fatalf("submission history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one evaluation in history, got %d", len(history))
	}
}

func TestEvaluatorHistorySelfAccessAndStats(t *testing.T) {
	module := newTestModule(t)
	seedEvaluators(module.Store, "eval-1", "eval-2", "eval-3", "eval-4")
	seedPendingPhoto(module.Store, "photo-1", "author-1")
	seedPendingPhoto(module.Store, "photo-2", "author-2")
	submitScores(t, module, "photo-1", "eval-1", 4)
	submitScores(t, module, "photo-2", "eval-1", 2)

	if _, _, err := module.Handler.Queries.EvaluatorHistory(context.Background(), "eval-1", "eval-2", evaluatorTags); !errors.Is(err, domainerrors.ErrHistoryAccessRestricted) {
		t.Fatalf("expected ErrHistoryAccessRestricted for another evaluator, got %v", err)
	}

	history, stats, err := module.Handler.Queries.EvaluatorHistory(context.Background(), "eval-1", "eval-1", evaluatorTags)
	if err != nil {
		t.Fatalf("evaluator history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two evaluations, got %d", len(history))
	}
	if stats.TotalEvaluations != 2 || stats.AverageScore != 3.0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ScoreDistribution[4] != 1 || stats.ScoreDistribution[2] != 1 {
		t.Fatalf("unexpected distribution %+v", stats.ScoreDistribution)
	}
}

func TestCountEvaluatorsTreatsTaglessMembersAsMembro(t *testing.T) {
	module := newTestModule(t)
	module.Store.SetMember("member-plain", nil)
	module.Store.SetMember("eval-1", evaluatorTags)

	count, err := module.Store.CountEvaluators(context.Background(), hierarchy.Weight(hierarchy.LevelMembro))
	if err != nil {
		t.Fatalf("count evaluators: %v", err)
	}
	if count != 2 {
		t.Fatalf("a membro-level threshold must count tagless members, got %d", count)
	}

	count, err = module.Store.CountEvaluators(context.Background(), hierarchy.Weight(hierarchy.LevelAvaliador))
	if err != nil {
		t.Fatalf("count evaluators: %v", err)
	}
	if count != 1 {
		t.Fatalf("only the tagged evaluator ranks at avaliador, got %d", count)
	}
}

func TestZeroEvaluatorPoolDefersDecision(t *testing.T) {
	module := newTestModule(t)
	seedPendingPhoto(module.Store, "photo-1", "author-1")

	outcome, err := module.Handler.Evaluations.RunDecisionCheck(context.Background(), "photo-1")
	if err != nil {
		t.Fatalf("decision check: %v", err)
	}
	if outcome.Finalized {
		t.Fatalf("empty evaluator pool must defer the decision")
	}
}
