package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
)

// HistoryMemory holds exam results most recent first.
type HistoryMemory struct {
	mu      sync.RWMutex
	results []*models.ExamResult
}

func NewHistoryMemory() repositories.HistoryRepository {
	return &HistoryMemory{}
}

func (m *HistoryMemory) Append(ctx context.Context, result *models.ExamResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = slices.Insert(m.results, 0, cloneResult(result))
	return nil
}

func (m *HistoryMemory) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.ExamResult, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*models.ExamResult, 0, len(m.results))
	for _, r := range m.results {
		if filters.BankID != "" && r.BankID != filters.BankID {
			continue
		}
		if filters.OwnerID != "" && r.OwnerID != filters.OwnerID {
			continue
		}
		matched = append(matched, r)
	}

	start, end := repositories.Paginate(len(matched), filters.Limit, filters.Offset)
	out := make([]*models.ExamResult, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, cloneResult(r))
	}
	return out, int64(len(matched)), nil
}

func (m *HistoryMemory) GetByID(ctx context.Context, id string) (*models.ExamResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.results {
		if r.ID == id {
			return cloneResult(r), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *HistoryMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.results, func(r *models.ExamResult) bool { return r.ID == id })
	if idx < 0 {
		return repositories.ErrNotFound
	}
	m.results = slices.Delete(m.results, idx, idx+1)
	return nil
}

func cloneResult(r *models.ExamResult) *models.ExamResult {
	out := *r
	out.UserAnswers = r.UserAnswers.Clone()
	out.RevealedAnswers = slices.Clone(r.RevealedAnswers)
	out.FlaggedQuestions = slices.Clone(r.FlaggedQuestions)
	return &out
}
