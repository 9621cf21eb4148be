package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamResultRecord is the table row of an exam result.
type ExamResultRecord struct {
	ID               string                                 `gorm:"primaryKey;size:36"`
	BankID           string                                 `gorm:"size:36;index"`
	BankName         string                                 `gorm:"size:200"`
	OwnerID          string                                 `gorm:"size:128;index"`
	Date             string                                 `gorm:"size:32;not null"`
	Score            int                                    `gorm:"not null"`
	TimeTaken        int                                    `gorm:"not null"`
	TotalQuestions   int                                    `gorm:"not null"`
	CorrectCount     int                                    `gorm:"not null"`
	IncorrectCount   int                                    `gorm:"not null"`
	UserAnswers      datatypes.JSONType[models.AnswerSheet] `gorm:"type:jsonb"`
	RevealedAnswers  datatypes.JSONSlice[string]            `gorm:"type:jsonb"`
	FlaggedQuestions datatypes.JSONSlice[string]            `gorm:"type:jsonb"`
	CreatedAt        time.Time                              `gorm:"index"`
}

func (ExamResultRecord) TableName() string {
	return "exam_results"
}

func newExamResultRecord(r *models.ExamResult) *ExamResultRecord {
	return &ExamResultRecord{
		ID:               r.ID,
		BankID:           r.BankID,
		BankName:         r.BankName,
		OwnerID:          r.OwnerID,
		Date:             r.Date,
		Score:            r.Score,
		TimeTaken:        r.TimeTaken,
		TotalQuestions:   r.TotalQuestions,
		CorrectCount:     r.CorrectCount,
		IncorrectCount:   r.IncorrectCount,
		UserAnswers:      datatypes.NewJSONType(r.UserAnswers),
		RevealedAnswers:  datatypes.JSONSlice[string](r.RevealedAnswers),
		FlaggedQuestions: datatypes.JSONSlice[string](r.FlaggedQuestions),
	}
}

func (rec *ExamResultRecord) toModel() *models.ExamResult {
	answers := rec.UserAnswers.Data()
	if answers == nil {
		answers = models.AnswerSheet{}
	}
	return &models.ExamResult{
		ID:               rec.ID,
		BankID:           rec.BankID,
		BankName:         rec.BankName,
		OwnerID:          rec.OwnerID,
		Date:             rec.Date,
		Score:            rec.Score,
		TimeTaken:        rec.TimeTaken,
		TotalQuestions:   rec.TotalQuestions,
		CorrectCount:     rec.CorrectCount,
		IncorrectCount:   rec.IncorrectCount,
		UserAnswers:      answers,
		RevealedAnswers:  append([]string{}, rec.RevealedAnswers...),
		FlaggedQuestions: append([]string{}, rec.FlaggedQuestions...),
	}
}

type HistoryPostgreSQL struct {
	db *gorm.DB
}

func NewHistoryPostgreSQL(db *gorm.DB) repositories.HistoryRepository {
	return &HistoryPostgreSQL{db: db}
}

func (h *HistoryPostgreSQL) Append(ctx context.Context, result *models.ExamResult) error {
	if err := h.db.WithContext(ctx).Create(newExamResultRecord(result)).Error; err != nil {
		return fmt.Errorf("failed to append exam result: %w", err)
	}
	return nil
}

func (h *HistoryPostgreSQL) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.ExamResult, int64, error) {
	query := h.db.WithContext(ctx).Model(&ExamResultRecord{})
	if filters.BankID != "" {
		query = query.Where("bank_id = ?", filters.BankID)
	}
	if filters.OwnerID != "" {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exam results: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var records []ExamResultRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exam results: %w", err)
	}

	results := make([]*models.ExamResult, len(records))
	for i := range records {
		results[i] = records[i].toModel()
	}
	return results, total, nil
}

func (h *HistoryPostgreSQL) GetByID(ctx context.Context, id string) (*models.ExamResult, error) {
	var record ExamResultRecord
	err := h.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}
	return record.toModel(), nil
}

func (h *HistoryPostgreSQL) Delete(ctx context.Context, id string) error {
	result := h.db.WithContext(ctx).Where("id = ?", id).Delete(&ExamResultRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete exam result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Models lists the tables AutoMigrate must create.
func Models() []interface{} {
	return []interface{}{&models.QuestionBank{}, &models.Question{}, &ExamResultRecord{}}
}
