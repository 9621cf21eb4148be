package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/sessions"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/google/uuid"
)

type examService struct {
	banks     repositories.BankRepository
	history   repositories.HistoryRepository
	store     sessions.Store
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator

	locks       sessionLocks
	now         func() time.Time
	newShuffler func() exam.Shuffler
}

func NewExamService(
	banks repositories.BankRepository,
	history repositories.HistoryRepository,
	store sessions.Store,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ExamService {
	return &examService{
		banks:       banks,
		history:     history,
		store:       store,
		publisher:   publisher,
		logger:      NewServiceLogger(logger, LogConfig{Service: "exam-studio", Component: "exam"}),
		validator:   validator,
		now:         time.Now,
		newShuffler: exam.NewShuffler,
	}
}

// Start validates the range, prepares the questions and opens a session.
// Nothing is stored when validation fails.
func (s *examService) Start(ctx context.Context, req *StartExamRequest) (view *SessionView, err error) {
	op := s.logger.WithOperation(ctx, "start_exam")
	defer func() { op.LogResult(req.BankID, "exam_session", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	bank, err := s.banks.GetByID(ctx, req.BankID)
	if err != nil {
		return nil, translateNotFound(err, ErrBankNotFound)
	}
	if len(bank.Questions) == 0 {
		return nil, ErrEmptyBank
	}
	if err = s.validator.ValidateRange(req.Start, req.End, len(bank.Questions)); err != nil {
		return nil, err
	}

	questions, err := exam.Prepare(bank.Questions, req.Start, req.End, s.newShuffler())
	if err != nil {
		return nil, err
	}
	session, err := exam.NewSession(uuid.NewString(), bank, questions, s.now())
	if err != nil {
		return nil, err
	}
	session.OwnerID = UserID(ctx)
	if err = s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start exam: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.EventExamStarted, events.ExamStartedEvent{
		SessionID:     session.ID,
		BankID:        bank.ID,
		BankName:      bank.Name,
		QuestionCount: len(questions),
		RangeStart:    req.Start,
		RangeEnd:      req.End,
		UserID:        UserID(ctx),
	}))

	return buildSessionView(session), nil
}

func (s *examService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return buildSessionView(session), nil
}

// Abandon discards an in-progress session without saving anything.
func (s *examService) Abandon(ctx context.Context, sessionID string) (err error) {
	op := s.logger.WithOperation(ctx, "abandon_exam")
	defer func() { op.LogResult(sessionID, "exam_session", err) }()

	unlock := s.locks.acquire(sessionID)
	defer unlock()

	if _, err = s.load(ctx, sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *examService) SelectOption(ctx context.Context, sessionID string, req *SelectOptionRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(session *exam.Session) error {
		return session.SelectOption(req.Label)
	})
}

func (s *examService) SetDropdownValue(ctx context.Context, sessionID string, req *SetDropdownRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(session *exam.Session) error {
		return session.SetDropdownValue(req.Index, req.Value)
	})
}

func (s *examService) SelectDragItem(ctx context.Context, sessionID string, req *SelectDragItemRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(session *exam.Session) error {
		return session.SelectDragItem(req.Label)
	})
}

func (s *examService) ClickDropZone(ctx context.Context, sessionID string, req *DropZoneRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(session *exam.Session) error {
		return session.ClickDropZone(req.Index)
	})
}

func (s *examService) ToggleFlag(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.mutate(ctx, sessionID, (*exam.Session).ToggleFlag)
}

func (s *examService) Reveal(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.mutate(ctx, sessionID, (*exam.Session).Reveal)
}

func (s *examService) Navigate(ctx context.Context, sessionID string, req *NavigateRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Direction == "" && req.Index == nil {
		return nil, validationFailure("direction", "either direction or index is required", nil)
	}
	return s.mutate(ctx, sessionID, func(session *exam.Session) error {
		switch {
		case req.Direction == DirectionNext:
			return session.Next()
		case req.Direction == DirectionPrev:
			return session.Prev()
		default:
			return session.GoTo(*req.Index)
		}
	})
}

// Submit scores the session and appends the result to history. The session is
// evicted only after the history accepted the record, so a failed write leaves
// it in progress and submittable again.
func (s *examService) Submit(ctx context.Context, sessionID string) (resp *SubmitResponse, err error) {
	op := s.logger.WithOperation(ctx, "submit_exam")
	defer func() { op.LogResult(sessionID, "exam_session", err) }()

	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unanswered := session.UnansweredCount()
	result, summary, err := session.Submit(uuid.NewString(), s.now())
	if err != nil {
		return nil, sessionRuleError(sessionID, err)
	}

	if err = s.history.Append(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save exam result: %w", err)
	}
	if delErr := s.store.Delete(ctx, sessionID); delErr != nil {
		s.logger.Warn(ctx, "Failed to evict submitted session", "session_id", sessionID, "error", delErr)
	}

	s.publish(ctx, events.NewEvent(events.EventExamSubmitted, events.ExamSubmittedEvent{
		SessionID:    sessionID,
		ResultID:     result.ID,
		BankID:       result.BankID,
		Score:        result.Score,
		EarnedPoints: summary.EarnedPoints,
		TotalPoints:  summary.TotalPoints,
		TimeTaken:    result.TimeTaken,
		Unanswered:   unanswered,
		UserID:       UserID(ctx),
	}))

	return &SubmitResponse{
		Result:  result,
		Summary: summary,
		Review:  exam.Review(session.Questions, session.Answers, session.Revealed, session.Flagged),
	}, nil
}

// mutate applies one interaction to a freshly loaded copy of the session and
// stores it. A failed interaction or store write leaves the stored session as it was.
func (s *examService) mutate(ctx context.Context, sessionID string, fn func(*exam.Session) error) (*SessionView, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, sessionRuleError(sessionID, err)
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return buildSessionView(session), nil
}

// load reads a session the caller may act on. Sessions of other users are
// reported as missing.
func (s *examService) load(ctx context.Context, sessionID string) (*exam.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	if !canAccess(ctx, session.OwnerID) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// sessionLocks serialises interactions on one session within this process.
// An entry lives only while some caller holds or waits for it.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

type sessionLock struct {
	mu      sync.Mutex
	holders int
}

func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[string]*sessionLock)
	}
	entry, ok := l.entries[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.entries[sessionID] = entry
	}
	entry.holders++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.holders--
		if entry.holders == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (s *examService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func buildSessionView(session *exam.Session) *SessionView {
	current := session.Current()
	revealed := session.IsRevealed(current.ID)

	question := current.Clone()
	if !revealed {
		question.CorrectAnswers = []string{}
		question.Explanation = ""
	}

	view := &SessionView{
		ID:               session.ID,
		BankID:           session.BankID,
		BankName:         session.BankName,
		Status:           session.Status,
		CurrentIndex:     session.CurrentIndex,
		Question:         &question,
		Answer:           session.Answers.Get(current.ID),
		SelectedDragItem: session.SelectedDragItem,
		Revealed:         revealed,
		Progress:         session.Progress(),
		Questions:        make([]QuestionState, len(session.Questions)),
		Answers:          session.Answers,
		StartedAt:        session.StartedAt.UTC().Format(exam.ISOTimestamp),
	}
	if current.Type == models.QuestionMultiple {
		view.MaxSelections = exam.MaxSelections(current)
	}
	for i := range session.Questions {
		q := &session.Questions[i]
		view.Questions[i] = QuestionState{
			ID:       q.ID,
			Answered: !exam.IsUnanswered(q, session.Answers.Get(q.ID)),
			Flagged:  session.IsFlagged(q.ID),
			Locked:   session.IsRevealed(q.ID),
		}
	}
	return view
}
