package events

import (
	"time"

	"github.com/google/uuid"
)

// EventSource identifies this service in every event envelope.
const EventSource = "exam-studio"

const eventVersion = "1.0"

type EventType string

const (
	EventExamStarted    EventType = "exam.started"
	EventExamSubmitted  EventType = "exam.submitted"
	EventBankImported   EventType = "bank.imported"
	EventHistoryDeleted EventType = "history.deleted"
)

// Event is the envelope shared by every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type ExamStartedEvent struct {
	SessionID     string `json:"session_id"`
	BankID        string `json:"bank_id"`
	BankName      string `json:"bank_name"`
	QuestionCount int    `json:"question_count"`
	RangeStart    int    `json:"range_start"`
	RangeEnd      int    `json:"range_end"`
	UserID        string `json:"user_id,omitempty"`
}

type ExamSubmittedEvent struct {
	SessionID    string `json:"session_id"`
	ResultID     string `json:"result_id"`
	BankID       string `json:"bank_id"`
	Score        int    `json:"score"`
	EarnedPoints int    `json:"earned_points"`
	TotalPoints  int    `json:"total_points"`
	TimeTaken    int    `json:"time_taken"`
	Unanswered   int    `json:"unanswered"`
	UserID       string `json:"user_id,omitempty"`
}

type BankImportedEvent struct {
	BankID        string `json:"bank_id"`
	BankName      string `json:"bank_name"`
	Format        string `json:"format"`
	QuestionCount int    `json:"question_count"`
	WarningCount  int    `json:"warning_count"`
}

type HistoryDeletedEvent struct {
	ResultID string `json:"result_id"`
	BankID   string `json:"bank_id"`
}
