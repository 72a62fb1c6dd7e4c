package submissionservice

import (
	"log/slog"

	httpadapter "tarmac/contexts/community-gallery/submission-service/adapters/http"
	"tarmac/contexts/community-gallery/submission-service/adapters/memory"
	"tarmac/contexts/community-gallery/submission-service/application/commands"
	"tarmac/contexts/community-gallery/submission-service/application/queries"
	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	"tarmac/contexts/community-gallery/submission-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Submissions   ports.SubmissionRepository
	Members       ports.MemberRepository
	Notifications ports.NotificationEmitter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Policy        commands.AdmissionPolicy
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	policy := deps.Policy
	if policy.MaxPendingQueueSize == 0 {
		policy.MaxPendingQueueSize = 50
	}
	if policy.PriorityLaneSize == 0 {
		policy.PriorityLaneSize = 10
	}
	if policy.WeeklySubmissionLimit == 0 {
		policy.WeeklySubmissionLimit = 5
	}
	admitUseCase := commands.AdmitSubmissionUseCase{
		Submissions:   deps.Submissions,
		Members:       deps.Members,
		Notifications: deps.Notifications,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Policy:        policy,
		Logger:        deps.Logger,
	}
	queryUseCase := queries.SubmissionQueryUseCase{
		Submissions:      deps.Submissions,
		MaxQueueSize:     policy.MaxPendingQueueSize,
		PriorityLaneSize: policy.PriorityLaneSize,
	}
	return Module{
		Handler: httpadapter.Handler{
			Admissions: admitUseCase,
			Queries:    queryUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Submission, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Submissions:   store,
		Members:       store,
		Notifications: store,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
