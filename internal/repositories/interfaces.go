package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// ErrNotFound is returned by every repository when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

// HistoryFilters narrows a history listing. OwnerID is set by the service from
// the authenticated user, never from the query string.
type HistoryFilters struct {
	BankID  string `json:"bank_id" form:"bank_id"`
	OwnerID string `json:"-" form:"-"`
	Limit   int    `json:"limit" form:"limit"`
	Offset  int    `json:"offset" form:"offset"`
}

// BankRepository persists question banks. Bank and question ids survive every
// round trip.
type BankRepository interface {
	// LoadAll returns every bank with its questions, in creation order.
	LoadAll(ctx context.Context) ([]*models.QuestionBank, error)
	// ReplaceAll overwrites the whole bank list. Calling it twice with the same
	// banks leaves the same state.
	ReplaceAll(ctx context.Context, banks []*models.QuestionBank) error

	List(ctx context.Context) ([]models.BankSummary, error)
	GetByID(ctx context.Context, id string) (*models.QuestionBank, error)
	// Save upserts a bank together with its full question list.
	Save(ctx context.Context, bank *models.QuestionBank) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository is the append-only store of exam results.
type HistoryRepository interface {
	Append(ctx context.Context, result *models.ExamResult) error
	// List returns results most recent first.
	List(ctx context.Context, filters HistoryFilters) ([]*models.ExamResult, int64, error)
	GetByID(ctx context.Context, id string) (*models.ExamResult, error)
	Delete(ctx context.Context, id string) error
}

// Paginate applies offset and limit to n items and returns the slice bounds.
// A non-positive limit means no limit.
func Paginate(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
