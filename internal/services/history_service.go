package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type historyService struct {
	history   repositories.HistoryRepository
	publisher events.EventPublisher
	logger    *ServiceLogger
}

func NewHistoryService(history repositories.HistoryRepository, publisher events.EventPublisher, logger *slog.Logger) HistoryService {
	return &historyService{
		history:   history,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exam-studio", Component: "history"}),
	}
}

// List returns results most recent first.
func (s *historyService) List(ctx context.Context, filters repositories.HistoryFilters) (*HistoryListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultHistoryLimit
	}
	if filters.Limit > maxHistoryLimit {
		filters.Limit = maxHistoryLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.OwnerID = UserID(ctx)

	results, total, err := s.history.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if results == nil {
		results = []*models.ExamResult{}
	}
	return &HistoryListResponse{
		Results: results,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *historyService) Get(ctx context.Context, id string) (*models.ExamResult, error) {
	return s.load(ctx, id)
}

func (s *historyService) Delete(ctx context.Context, id string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_result")
	defer func() { op.LogResult(id, "exam_result", err) }()

	result, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err = s.history.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrResultNotFound)
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventHistoryDeleted, events.HistoryDeletedEvent{
			ResultID: id,
			BankID:   result.BankID,
		})
		if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
			s.logger.Warn(ctx, "Failed to publish event", "event_type", event.Type, "error", pubErr)
		}
	}
	return nil
}

// load reads a result the caller may see. Results of other users are reported
// as missing.
func (s *historyService) load(ctx context.Context, id string) (*models.ExamResult, error) {
	result, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrResultNotFound)
	}
	if !canAccess(ctx, result.OwnerID) {
		return nil, ErrResultNotFound
	}
	return result, nil
}
