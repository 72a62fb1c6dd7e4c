package evaluationengine

import (
	"log/slog"

	httpadapter "tarmac/contexts/community-gallery/evaluation-engine/adapters/http"
	"tarmac/contexts/community-gallery/evaluation-engine/adapters/memory"
	"tarmac/contexts/community-gallery/evaluation-engine/application/commands"
	"tarmac/contexts/community-gallery/evaluation-engine/application/queries"
	"tarmac/contexts/community-gallery/evaluation-engine/domain/entities"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/shared/hierarchy"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Evaluations   ports.EvaluationRepository
	Submissions   ports.SubmissionGateway
	Members       ports.MemberDirectory
	Notifications ports.NotificationEmitter
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Policy        commands.DecisionPolicy
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	policy := deps.Policy
	if policy.EvaluatorRankThreshold == 0 {
		policy.EvaluatorRankThreshold = hierarchy.Weight(hierarchy.LevelAvaliador)
	}
	if policy.QuorumFraction == 0 {
		policy.QuorumFraction = 0.5
	}
	if policy.ApprovalScoreThreshold == 0 {
		policy.ApprovalScoreThreshold = 3.0
	}
	if policy.ApprovalMajorityThreshold == 0 {
		policy.ApprovalMajorityThreshold = 0.5
	}
	evaluationUseCase := commands.EvaluationUseCase{
		Evaluations:   deps.Evaluations,
		Submissions:   deps.Submissions,
		Members:       deps.Members,
		Notifications: deps.Notifications,
		Outbox:        deps.Outbox,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Policy:        policy,
		Logger:        deps.Logger,
	}
	queryUseCase := queries.EvaluationQueryUseCase{
		Evaluations:            deps.Evaluations,
		Submissions:            deps.Submissions,
		EvaluatorRankThreshold: policy.EvaluatorRankThreshold,
		HistoryRankThreshold:   hierarchy.Weight(hierarchy.LevelGestao),
	}
	return Module{
		Handler: httpadapter.Handler{
			Evaluations: evaluationUseCase,
			Queries:     queryUseCase,
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Evaluation, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Evaluations:   store,
		Submissions:   store,
		Members:       store,
		Notifications: store,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
