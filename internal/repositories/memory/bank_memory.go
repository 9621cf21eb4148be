package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
)

// BankMemory keeps banks in process. Values are deep-copied on the way in and
// out so callers never share question slices with the store.
type BankMemory struct {
	mu    sync.RWMutex
	order []string
	banks map[string]*models.QuestionBank
}

func NewBankMemory() repositories.BankRepository {
	return &BankMemory{banks: make(map[string]*models.QuestionBank)}
}

func (m *BankMemory) LoadAll(ctx context.Context) ([]*models.QuestionBank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.QuestionBank, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneBank(m.banks[id]))
	}
	return out, nil
}

func (m *BankMemory) ReplaceAll(ctx context.Context, banks []*models.QuestionBank) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = m.order[:0]
	m.banks = make(map[string]*models.QuestionBank, len(banks))
	for _, bank := range banks {
		if _, dup := m.banks[bank.ID]; !dup {
			m.order = append(m.order, bank.ID)
		}
		m.banks[bank.ID] = cloneBank(bank)
	}
	return nil
}

func (m *BankMemory) List(ctx context.Context) ([]models.BankSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.BankSummary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.banks[id].Summary())
	}
	return out, nil
}

func (m *BankMemory) GetByID(ctx context.Context, id string) (*models.QuestionBank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bank, ok := m.banks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneBank(bank), nil
}

func (m *BankMemory) Save(ctx context.Context, bank *models.QuestionBank) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.banks[bank.ID]; ok {
		bank.CreatedAt = existing.CreatedAt
	} else {
		m.order = append(m.order, bank.ID)
		if bank.CreatedAt.IsZero() {
			bank.CreatedAt = now
		}
	}
	bank.UpdatedAt = now
	m.banks[bank.ID] = cloneBank(bank)
	return nil
}

func (m *BankMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.banks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.banks, id)
	for i, bankID := range m.order {
		if bankID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneBank(bank *models.QuestionBank) *models.QuestionBank {
	out := *bank
	out.Questions = models.CloneQuestions(bank.Questions)
	return &out
}
