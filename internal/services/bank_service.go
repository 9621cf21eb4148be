package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/google/uuid"
)

type bankService struct {
	banks     repositories.BankRepository
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewBankService(banks repositories.BankRepository, logger *slog.Logger, validator *validator.Validator) BankService {
	return &bankService{
		banks:     banks,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exam-studio", Component: "bank"}),
		validator: validator,
	}
}

func (s *bankService) List(ctx context.Context) ([]models.BankSummary, error) {
	summaries, err := s.banks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return summaries, nil
}

func (s *bankService) LoadAll(ctx context.Context) ([]*models.QuestionBank, error) {
	banks, err := s.banks.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load banks: %w", err)
	}
	return banks, nil
}

func (s *bankService) Get(ctx context.Context, id string) (*models.QuestionBank, error) {
	bank, err := s.banks.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrBankNotFound)
	}
	return bank, nil
}

func (s *bankService) Create(ctx context.Context, req *CreateBankRequest) (bank *models.QuestionBank, err error) {
	op := s.logger.WithOperation(ctx, "create_bank")
	defer func() { op.LogResult(bankID(bank), "question_bank", err) }()

	name, err := s.validator.ValidateBankName(req.Name)
	if err != nil {
		return nil, err
	}

	bank = &models.QuestionBank{
		ID:        uuid.NewString(),
		Name:      name,
		Questions: []models.Question{},
	}
	if err = s.banks.Save(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to create bank: %w", err)
	}
	return bank, nil
}

func (s *bankService) Rename(ctx context.Context, id string, req *RenameBankRequest) (bank *models.QuestionBank, err error) {
	op := s.logger.WithOperation(ctx, "rename_bank")
	defer func() { op.LogResult(id, "question_bank", err) }()

	name, err := s.validator.ValidateBankName(req.Name)
	if err != nil {
		return nil, err
	}

	bank, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bank.Name = name
	if err = s.banks.Save(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to rename bank: %w", err)
	}
	return bank, nil
}

func (s *bankService) Delete(ctx context.Context, id string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_bank")
	defer func() { op.LogResult(id, "question_bank", err) }()

	if err = s.banks.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrBankNotFound)
	}
	return nil
}

// ReplaceAll overwrites every bank. Names are validated and questions are
// normalized, but question structure problems are tolerated.
func (s *bankService) ReplaceAll(ctx context.Context, banks []*models.QuestionBank) (err error) {
	op := s.logger.WithOperation(ctx, "replace_all_banks")
	defer func() { op.LogResult("", "question_bank", err) }()

	seen := make(map[string]bool, len(banks))
	for i, bank := range banks {
		name, nameErr := s.validator.ValidateBankName(bank.Name)
		if nameErr != nil {
			return validationFailure(fmt.Sprintf("banks[%d].name", i), "must be between 1 and 200 characters after trimming", bank.Name)
		}
		bank.Name = name
		if strings.TrimSpace(bank.ID) == "" {
			bank.ID = uuid.NewString()
		}
		if seen[bank.ID] {
			return validationFailure(fmt.Sprintf("banks[%d].id", i), "must be unique", bank.ID)
		}
		seen[bank.ID] = true
		bank.Questions = prepareQuestions(bank.Questions)
	}

	if err = s.banks.ReplaceAll(ctx, banks); err != nil {
		return fmt.Errorf("failed to replace banks: %w", err)
	}
	return nil
}

// SaveQuestion upserts a question by id, appending it when new. Manual edits
// must be structurally valid.
func (s *bankService) SaveQuestion(ctx context.Context, bankID string, question *models.Question) (saved *models.Question, err error) {
	op := s.logger.WithOperation(ctx, "save_question")
	defer func() { op.LogResult(question.ID, "question", err) }()

	question.Normalize()
	if errs := s.validator.Question().ValidateQuestion(question); len(errs) > 0 {
		return nil, errs
	}

	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(question.ID) == "" {
		question.ID = uuid.NewString()
	}
	if idx := bank.QuestionIndex(question.ID); idx >= 0 {
		bank.Questions[idx] = *question
	} else {
		bank.Questions = append(bank.Questions, *question)
	}

	if err = s.banks.Save(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}
	return question, nil
}

func (s *bankService) DeleteQuestion(ctx context.Context, bankID, questionID string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_question")
	defer func() { op.LogResult(questionID, "question", err) }()

	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return err
	}
	idx := bank.QuestionIndex(questionID)
	if idx < 0 {
		return ErrQuestionNotFound
	}
	bank.Questions = append(bank.Questions[:idx], bank.Questions[idx+1:]...)

	if err = s.banks.Save(ctx, bank); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// AddQuestions appends a parsed batch. Structural problems are reported as
// warnings and the questions are kept.
func (s *bankService) AddQuestions(ctx context.Context, bankID string, questions []models.Question) (resp *AddQuestionsResponse, err error) {
	op := s.logger.WithOperation(ctx, "add_questions")
	defer func() { op.LogResult(bankID, "question_bank", err) }()

	if len(questions) == 0 {
		return nil, validationFailure("questions", "must contain at least 1 question", 0)
	}

	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	added := prepareQuestions(questions)
	taken := make(map[string]bool, len(bank.Questions))
	for _, q := range bank.Questions {
		taken[q.ID] = true
	}
	for i := range added {
		if taken[added[i].ID] {
			added[i].ID = uuid.NewString()
		}
		taken[added[i].ID] = true
	}

	warnings := s.validator.Question().ValidateBatch(added)
	s.logger.LogValidationWarnings(ctx, "add_questions", warnings)

	bank.Questions = append(bank.Questions, added...)
	if err = s.banks.Save(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}

	return &AddQuestionsResponse{Bank: bank, Added: len(added), Warnings: warnings.Messages()}, nil
}

// prepareQuestions normalizes a tolerated payload: empty lists instead of
// missing ones and a unique id for every question.
func prepareQuestions(questions []models.Question) []models.Question {
	out := models.CloneQuestions(questions)
	seen := make(map[string]bool, len(out))
	for i := range out {
		out[i].Normalize()
		if strings.TrimSpace(out[i].ID) == "" || seen[out[i].ID] {
			out[i].ID = uuid.NewString()
		}
		seen[out[i].ID] = true
	}
	return out
}

func bankID(bank *models.QuestionBank) string {
	if bank == nil {
		return ""
	}
	return bank.ID
}
