package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/cache"
	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-studio/internal/sessions"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBankRepository is a mock implementation of BankRepository
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) LoadAll(ctx context.Context) ([]*models.QuestionBank, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.QuestionBank), args.Error(1)
}

func (m *MockBankRepository) ReplaceAll(ctx context.Context, banks []*models.QuestionBank) error {
	args := m.Called(ctx, banks)
	return args.Error(0)
}

func (m *MockBankRepository) List(ctx context.Context) ([]models.BankSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BankSummary), args.Error(1)
}

func (m *MockBankRepository) GetByID(ctx context.Context, id string) (*models.QuestionBank, error) {
	args := m.Called(ctx, id)
	bank, _ := args.Get(0).(*models.QuestionBank)
	return bank, args.Error(1)
}

func (m *MockBankRepository) Save(ctx context.Context, bank *models.QuestionBank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockBankRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, result *models.ExamResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.ExamResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryRepository) GetByID(ctx context.Context, id string) (*models.ExamResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*models.ExamResult)
	return result, args.Error(1)
}

func (m *MockHistoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExtractor is a mock implementation of ai.Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ParseText(ctx context.Context, text string) ([]models.Question, error) {
	args := m.Called(ctx, text)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *MockExtractor) ParseImage(ctx context.Context, base64Data, mimeType string) ([]models.Question, error) {
	args := m.Called(ctx, base64Data, mimeType)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *MockExtractor) GenerateFromTopic(ctx context.Context, topic string, count int) ([]models.Question, error) {
	args := m.Called(ctx, topic, count)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

// identityShuffler leaves option order untouched.
type identityShuffler struct{}

func (identityShuffler) Shuffle(n int, swap func(i, j int)) {}

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleQ(id, correct string) models.Question {
	return models.Question{
		ID:   id,
		Text: "Question " + id,
		Type: models.QuestionSingle,
		Options: []models.Option{
			{Label: "A", Text: "alpha"},
			{Label: "B", Text: "beta"},
			{Label: "C", Text: "gamma"},
		},
		CorrectAnswers: []string{correct},
		Explanation:    "because",
	}
}

func dropdownQ(id string, correct ...string) models.Question {
	q := models.Question{
		ID:             id,
		Text:           "Pick {{dropdown}} and {{dropdown}}",
		Type:           models.QuestionDropdown,
		Options:        []models.Option{},
		CorrectAnswers: correct,
	}
	for range correct {
		q.Dropdowns = append(q.Dropdowns, models.DropdownItem{Options: []string{"X", "Y", "Z"}})
	}
	return q
}

type examFixture struct {
	service   *examService
	banks     repositories.BankRepository
	history   repositories.HistoryRepository
	store     sessions.Store
	publisher *events.MockEventPublisher
	clock     *time.Time
}

func newExamFixture(t *testing.T, questions ...models.Question) *examFixture {
	t.Helper()

	banks := memory.NewBankMemory()
	require.NoError(t, banks.Save(context.Background(), &models.QuestionBank{
		ID:        "bank-1",
		Name:      "Go basics",
		Questions: questions,
	}))

	f := &examFixture{
		banks:     banks,
		history:   memory.NewHistoryMemory(),
		store:     sessions.NewStore(cache.NewMemoryCache(), time.Hour),
		publisher: events.NewMockEventPublisher(testLogger()),
	}
	now := testNow
	f.clock = &now

	svc := NewExamService(f.banks, f.history, f.store, f.publisher, testLogger(), validator.New()).(*examService)
	svc.now = func() time.Time { return *f.clock }
	svc.newShuffler = func() exam.Shuffler { return identityShuffler{} }
	f.service = svc
	return f
}

func (f *examFixture) start(t *testing.T, start, end int) *SessionView {
	t.Helper()
	view, err := f.service.Start(context.Background(), &StartExamRequest{BankID: "bank-1", Start: start, End: end})
	require.NoError(t, err)
	return view
}
