package exam

import (
	"fmt"
	"slices"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Session drives one attempt at a prepared question list.
//
// Every interaction targets the current question. Interactions on a question
// whose answer was revealed are silently ignored. Once finished, every method
// returns ErrSessionFinished.
type Session struct {
	ID               string             `json:"id"`
	BankID           string             `json:"bankId"`
	BankName         string             `json:"bankName"`
	OwnerID          string             `json:"ownerId,omitempty"`
	Questions        []models.Question  `json:"questions"`
	Answers          models.AnswerSheet `json:"answers"`
	CurrentIndex     int                `json:"currentIndex"`
	Flagged          []string           `json:"flagged"`
	Revealed         []string           `json:"revealed"`
	SelectedDragItem string             `json:"selectedDragItem,omitempty"`
	StartedAt        time.Time          `json:"startedAt"`
	Status           Status             `json:"status"`
}

// NewSession starts a session over already prepared questions.
func NewSession(id string, bank *models.QuestionBank, questions []models.Question, now time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		ID:        id,
		BankID:    bank.ID,
		BankName:  bank.Name,
		Questions: questions,
		Answers:   models.AnswerSheet{},
		Flagged:   []string{},
		Revealed:  []string{},
		StartedAt: now,
		Status:    StatusInProgress,
	}, nil
}

func (s *Session) Finished() bool {
	return s.Status == StatusFinished
}

// Current returns the question at the current index.
func (s *Session) Current() *models.Question {
	return &s.Questions[s.CurrentIndex]
}

func (s *Session) IsRevealed(questionID string) bool {
	return slices.Contains(s.Revealed, questionID)
}

func (s *Session) IsFlagged(questionID string) bool {
	return slices.Contains(s.Flagged, questionID)
}

// SelectOption answers a single or multiple question. For single questions the
// label replaces the answer. For multiple questions it toggles, and adding is
// refused once the selection reaches MaxSelections.
func (s *Session) SelectOption(label string) error {
	q, locked, err := s.editable()
	if err != nil || locked {
		return err
	}
	if q.Type.IsPositional() {
		return fmt.Errorf("%w: select option on %s", ErrWrongQuestionType, q.Type)
	}
	if !q.HasOption(label) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, label)
	}

	current := s.Answers.Get(q.ID)
	if q.Type == models.QuestionSingle {
		s.Answers[q.ID] = []string{label}
		return nil
	}

	if idx := slices.Index(current, label); idx >= 0 {
		s.Answers[q.ID] = slices.Delete(slices.Clone(current), idx, idx+1)
		return nil
	}
	if len(current) >= MaxSelections(q) {
		return nil
	}
	s.Answers[q.ID] = append(slices.Clone(current), label)
	return nil
}

// MaxSelections is the selection ceiling of a multiple question: the number of
// correct answers, or every option when no correct answer is defined.
func MaxSelections(q *models.Question) int {
	if len(q.CorrectAnswers) > 0 {
		return len(q.CorrectAnswers)
	}
	return len(q.Options)
}

// SetDropdownValue writes value into dropdown slot index. The answer list is
// padded with empty entries so it stays aligned with the dropdowns.
func (s *Session) SetDropdownValue(index int, value string) error {
	q, locked, err := s.editable()
	if err != nil || locked {
		return err
	}
	if q.Type != models.QuestionDropdown {
		return fmt.Errorf("%w: set dropdown on %s", ErrWrongQuestionType, q.Type)
	}
	if index < 0 || index >= len(q.Dropdowns) {
		return fmt.Errorf("%w: dropdown %d of %d", ErrIndexOutOfRange, index, len(q.Dropdowns))
	}
	if value != "" && !slices.Contains(q.Dropdowns[index].Options, value) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}

	answer := models.Padded(s.Answers.Get(q.ID), index+1)
	answer[index] = value
	s.Answers[q.ID] = answer
	return nil
}

// SelectDragItem picks a draggable option for the next drop zone click.
// Picking the already selected item drops the selection.
func (s *Session) SelectDragItem(label string) error {
	q, locked, err := s.editable()
	if err != nil || locked {
		return err
	}
	if q.Type != models.QuestionDragDrop {
		return fmt.Errorf("%w: select drag item on %s", ErrWrongQuestionType, q.Type)
	}
	if !q.HasOption(label) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, label)
	}
	if s.SelectedDragItem == label {
		s.SelectedDragItem = ""
		return nil
	}
	s.SelectedDragItem = label
	return nil
}

// ClickDropZone places the selected drag item into zone index, overwriting the
// zone, and clears the selection. Without a selection the zone is emptied.
func (s *Session) ClickDropZone(index int) error {
	q, locked, err := s.editable()
	if err != nil || locked {
		return err
	}
	if q.Type != models.QuestionDragDrop {
		return fmt.Errorf("%w: drop zone on %s", ErrWrongQuestionType, q.Type)
	}
	if index < 0 || index >= len(q.DropZones) {
		return fmt.Errorf("%w: zone %d of %d", ErrIndexOutOfRange, index, len(q.DropZones))
	}

	answer := models.Padded(s.Answers.Get(q.ID), len(q.DropZones))
	answer[index] = s.SelectedDragItem
	s.SelectedDragItem = ""
	s.Answers[q.ID] = answer
	return nil
}

// ToggleFlag bookmarks or un-bookmarks the current question.
func (s *Session) ToggleFlag() error {
	if s.Finished() {
		return ErrSessionFinished
	}
	id := s.Current().ID
	if idx := slices.Index(s.Flagged, id); idx >= 0 {
		s.Flagged = slices.Delete(s.Flagged, idx, idx+1)
		return nil
	}
	s.Flagged = append(s.Flagged, id)
	return nil
}

// Reveal shows the current question's answer and locks it for the rest of the
// session. Revealing twice changes nothing.
func (s *Session) Reveal() error {
	if s.Finished() {
		return ErrSessionFinished
	}
	id := s.Current().ID
	if !s.IsRevealed(id) {
		s.Revealed = append(s.Revealed, id)
	}
	s.SelectedDragItem = ""
	return nil
}

func (s *Session) Next() error {
	return s.GoTo(s.CurrentIndex + 1)
}

func (s *Session) Prev() error {
	return s.GoTo(s.CurrentIndex - 1)
}

// GoTo moves to index, clamped to the question list. A pending drag selection
// never survives a move.
func (s *Session) GoTo(index int) error {
	if s.Finished() {
		return ErrSessionFinished
	}
	index = max(0, min(index, len(s.Questions)-1))
	if index != s.CurrentIndex {
		s.SelectedDragItem = ""
	}
	s.CurrentIndex = index
	return nil
}

// CanAdvance is the soft "Next" gate: the current question has some answer.
func (s *Session) CanAdvance() bool {
	q := s.Current()
	return HasSelection(q, s.Answers.Get(q.ID))
}

// HasSelection reports whether answer holds anything for q. Positional answers
// need at least one filled slot.
func HasSelection(q *models.Question, answer []string) bool {
	if !q.Type.IsPositional() {
		return len(answer) > 0
	}
	return slices.ContainsFunc(answer, func(v string) bool { return v != "" })
}

// IsUnanswered reports whether q still needs input: positional questions need
// every slot filled, the others need any selection.
func IsUnanswered(q *models.Question, answer []string) bool {
	if q.Type.IsPositional() {
		return len(answer) < q.SlotCount() || slices.Contains(answer, "")
	}
	return len(answer) == 0
}

// UnansweredCount counts the questions IsUnanswered holds for.
func (s *Session) UnansweredCount() int {
	count := 0
	for i := range s.Questions {
		if IsUnanswered(&s.Questions[i], s.Answers.Get(s.Questions[i].ID)) {
			count++
		}
	}
	return count
}

// Submit scores the session, finishes it and builds the result record.
func (s *Session) Submit(resultID string, now time.Time) (*models.ExamResult, Summary, error) {
	if s.Finished() {
		return nil, Summary{}, ErrSessionFinished
	}
	summary := Score(s.Questions, s.Answers)
	result := BuildResult(s, summary, resultID, now)
	s.Status = StatusFinished
	s.SelectedDragItem = ""
	return result, summary, nil
}

// editable returns the current question and whether it is locked by a reveal.
func (s *Session) editable() (*models.Question, bool, error) {
	if s.Finished() {
		return nil, false, ErrSessionFinished
	}
	q := s.Current()
	return q, s.IsRevealed(q.ID), nil
}
