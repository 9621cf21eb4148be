package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBankService() (BankService, repositories.BankRepository) {
	repo := memory.NewBankMemory()
	return NewBankService(repo, testLogger(), validator.New()), repo
}

func TestBankService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		request     *CreateBankRequest
		wantName    string
		expectError bool
	}{
		{name: "trims the name", request: &CreateBankRequest{Name: "  Networking  "}, wantName: "Networking"},
		{name: "blank name", request: &CreateBankRequest{Name: "   "}, expectError: true},
		{name: "name too long", request: &CreateBankRequest{Name: strings.Repeat("x", 201)}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newBankService()

			bank, err := svc.Create(ctx, tt.request)

			if tt.expectError {
				assert.True(t, IsValidation(err))
				assert.Nil(t, bank)
				summaries, _ := repo.List(ctx)
				assert.Empty(t, summaries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, bank.Name)
			assert.NotEmpty(t, bank.ID)
			assert.NotNil(t, bank.Questions)
		})
	}
}

func TestBankService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBankService()

	bank, err := svc.Create(ctx, &CreateBankRequest{Name: "Old"})
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, bank.ID, &RenameBankRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)

	_, err = svc.Rename(ctx, "missing", &RenameBankRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrBankNotFound)

	require.NoError(t, svc.Delete(ctx, bank.ID))
	_, err = svc.Get(ctx, bank.ID)
	assert.ErrorIs(t, err, ErrBankNotFound)
}

func TestBankService_SaveQuestion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBankService()
	bank, err := svc.Create(ctx, &CreateBankRequest{Name: "Bank"})
	require.NoError(t, err)

	t.Run("appends a new question with a fresh id", func(t *testing.T) {
		q := singleQ("", "A")
		saved, err := svc.SaveQuestion(ctx, bank.ID, &q)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		got, err := svc.Get(ctx, bank.ID)
		require.NoError(t, err)
		require.Len(t, got.Questions, 1)
		assert.Equal(t, saved.ID, got.Questions[0].ID)
	})

	t.Run("replaces by id", func(t *testing.T) {
		q := singleQ("fixed", "A")
		_, err := svc.SaveQuestion(ctx, bank.ID, &q)
		require.NoError(t, err)

		q.Text = "Edited"
		_, err = svc.SaveQuestion(ctx, bank.ID, &q)
		require.NoError(t, err)

		got, err := svc.Get(ctx, bank.ID)
		require.NoError(t, err)
		idx := got.QuestionIndex("fixed")
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, "Edited", got.Questions[idx].Text)
		assert.Len(t, got.Questions, 2)
	})

	t.Run("rejects structurally invalid questions", func(t *testing.T) {
		q := singleQ("bad", "Z")
		_, err := svc.SaveQuestion(ctx, bank.ID, &q)
		assert.True(t, IsValidation(err))

		got, err := svc.Get(ctx, bank.ID)
		require.NoError(t, err)
		assert.Equal(t, -1, got.QuestionIndex("bad"))
	})

	t.Run("delete question", func(t *testing.T) {
		require.NoError(t, svc.DeleteQuestion(ctx, bank.ID, "fixed"))
		assert.ErrorIs(t, svc.DeleteQuestion(ctx, bank.ID, "fixed"), ErrQuestionNotFound)
	})
}

func TestBankService_AddQuestions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBankService()
	bank, err := svc.Create(ctx, &CreateBankRequest{Name: "Bank"})
	require.NoError(t, err)

	first := singleQ("q1", "A")
	_, err = svc.SaveQuestion(ctx, bank.ID, &first)
	require.NoError(t, err)

	broken := models.Question{ID: "q2", Text: "No options", Type: models.QuestionSingle}
	resp, err := svc.AddQuestions(ctx, bank.ID, []models.Question{singleQ("q1", "B"), broken})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Added)
	assert.NotEmpty(t, resp.Warnings)
	require.Len(t, resp.Bank.Questions, 3)
	assert.NotEqual(t, "q1", resp.Bank.Questions[1].ID, "colliding ids are replaced")
	assert.Equal(t, "q2", resp.Bank.Questions[2].ID)
	assert.NotNil(t, resp.Bank.Questions[2].Options)
	assert.NotNil(t, resp.Bank.Questions[2].CorrectAnswers)

	_, err = svc.AddQuestions(ctx, bank.ID, nil)
	assert.True(t, IsValidation(err))
}

func TestBankService_ReplaceAll(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate ids are rejected before writing", func(t *testing.T) {
		repo := &MockBankRepository{}
		svc := NewBankService(repo, testLogger(), validator.New())

		err := svc.ReplaceAll(ctx, []*models.QuestionBank{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}})

		assert.True(t, IsValidation(err))
		repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		repo := &MockBankRepository{}
		repo.On("ReplaceAll", mock.Anything, mock.Anything).Return(errors.New("boom"))
		svc := NewBankService(repo, testLogger(), validator.New())

		err := svc.ReplaceAll(ctx, []*models.QuestionBank{{Name: "A"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		repo.AssertExpectations(t)
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc, repo := newBankService()
		banks := func() []*models.QuestionBank {
			return []*models.QuestionBank{{ID: "b1", Name: "One", Questions: []models.Question{singleQ("q1", "A")}}}
		}

		require.NoError(t, svc.ReplaceAll(ctx, banks()))
		first, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.NoError(t, svc.ReplaceAll(ctx, banks()))
		second, err := repo.LoadAll(ctx)
		require.NoError(t, err)

		require.Len(t, second, 1)
		assert.Equal(t, first[0].Questions, second[0].Questions)
		assert.Equal(t, first[0].Name, second[0].Name)
	})
}
