package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tarmac/contexts/community-gallery/submission-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/submission-service/domain/errors"
	"tarmac/contexts/community-gallery/submission-service/ports"

	"github.com/google/uuid"
)

// EmittedNotification captures fire-and-forget emissions for assertions.
type EmittedNotification struct {
	RecipientID string
	Type        string
	Message     string
	Payload     map[string]any
}

type Store struct {
	mu sync.RWMutex

	submissions map[string]entities.Submission
	members     map[string]entities.Member

	emitted []EmittedNotification
	now     time.Time
}

func NewStore(seed []entities.Submission) *Store {
	submissions := make(map[string]entities.Submission, len(seed))
	for _, submission := range seed {
		submissions[submission.SubmissionID] = submission
	}
	return &Store{
		submissions: submissions,
		members:     make(map[string]entities.Member),
	}
}

func (s *Store) SetMember(member entities.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member.MemberID = strings.TrimSpace(member.MemberID)
	s.members[member.MemberID] = member
}

func (s *Store) SetSubmission(submission entities.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
}

// SetNow pins the clock for quota-window tests; zero restores wall time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Emitted returns a copy of every notification emitted so far.
func (s *Store) Emitted() []EmittedNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EmittedNotification(nil), s.emitted...)
}

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) ListSubmissionsByAuthor(_ context.Context, authorID string) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Submission, 0)
	for _, submission := range s.submissions {
		if strings.EqualFold(submission.AuthorID, strings.TrimSpace(authorID)) {
			items = append(items, submission)
		}
	}
	sortSubmissionsNewestFirst(items)
	return items, nil
}

func (s *Store) ListApprovedSubmissions(_ context.Context, aircraftType string) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	aircraftType = strings.TrimSpace(aircraftType)
	items := make([]entities.Submission, 0)
	for _, submission := range s.submissions {
		if submission.Status != entities.SubmissionStatusApproved {
			continue
		}
		if aircraftType != "" && !strings.EqualFold(submission.AircraftType, aircraftType) {
			continue
		}
		items = append(items, submission)
	}
	sortSubmissionsNewestFirst(items)
	return items, nil
}

func (s *Store) CountPending(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, submission := range s.submissions {
		if submission.Status == entities.SubmissionStatusPending {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetMember(_ context.Context, memberID string) (entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[strings.TrimSpace(memberID)]
	if !ok {
		return entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return member, nil
}

func (s *Store) ResetQuotaWindow(_ context.Context, memberID string, windowStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(memberID)
	member, ok := s.members[key]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.WeeklySubmissionCount = 0
	member.QuotaWindowStart = windowStart.UTC()
	s.members[key] = member
	return nil
}

func (s *Store) IncrementWeeklyCount(_ context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(memberID)
	member, ok := s.members[key]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.WeeklySubmissionCount++
	s.members[key] = member
	return nil
}

func (s *Store) Emit(
	_ context.Context,
	recipientID string,
	notifType string,
	message string,
	payload map[string]any,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted = append(s.emitted, EmittedNotification{
		RecipientID: strings.TrimSpace(recipientID),
		Type:        strings.TrimSpace(notifType),
		Message:     message,
		Payload:     payload,
	})
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.now.IsZero() {
		return s.now
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortSubmissionsNewestFirst(items []entities.Submission) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var (
	_ ports.SubmissionRepository = (*Store)(nil)
	_ ports.MemberRepository     = (*Store)(nil)
	_ ports.NotificationEmitter  = (*Store)(nil)
	_ ports.Clock                = (*Store)(nil)
	_ ports.IDGenerator          = (*Store)(nil)
)
