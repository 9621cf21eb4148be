package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const questionBatchSize = 200

type BankPostgreSQL struct {
	db *gorm.DB
}

func NewBankPostgreSQL(db *gorm.DB) repositories.BankRepository {
	return &BankPostgreSQL{db: db}
}

// LoadAll retrieves every bank with its questions in stored order
func (b *BankPostgreSQL) LoadAll(ctx context.Context) ([]*models.QuestionBank, error) {
	var banks []*models.QuestionBank
	err := b.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Order("created_at ASC").
		Find(&banks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load banks: %w", err)
	}
	return banks, nil
}

// ReplaceAll swaps the complete bank list inside one transaction
func (b *BankPostgreSQL) ReplaceAll(ctx context.Context, banks []*models.QuestionBank) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.QuestionBank{}).Error; err != nil {
			return fmt.Errorf("failed to clear banks: %w", err)
		}
		for _, bank := range banks {
			if err := b.saveBank(tx, bank); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns bank summaries with question counts computed in SQL
func (b *BankPostgreSQL) List(ctx context.Context) ([]models.BankSummary, error) {
	var summaries []models.BankSummary
	err := b.db.WithContext(ctx).
		Table("question_banks AS b").
		Select("b.id, b.name, COUNT(q.id) AS question_count").
		Joins("LEFT JOIN questions q ON q.bank_id = b.id").
		Group("b.id, b.name, b.created_at").
		Order("b.created_at ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return summaries, nil
}

func (b *BankPostgreSQL) GetByID(ctx context.Context, id string) (*models.QuestionBank, error) {
	var bank models.QuestionBank
	err := b.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("id = ?", id).
		First(&bank).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return &bank, nil
}

// Save upserts the bank row and rewrites its question rows
func (b *BankPostgreSQL) Save(ctx context.Context, bank *models.QuestionBank) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bank_id = ?", bank.ID).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear bank questions: %w", err)
		}
		return b.saveBank(tx, bank)
	})
}

func (b *BankPostgreSQL) Delete(ctx context.Context, id string) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bank_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete bank questions: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.QuestionBank{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete bank: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}

func (b *BankPostgreSQL) saveBank(tx *gorm.DB, bank *models.QuestionBank) error {
	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(bank).Error
	if err != nil {
		return fmt.Errorf("failed to save bank %s: %w", bank.ID, err)
	}

	if len(bank.Questions) == 0 {
		return nil
	}
	rows := make([]models.Question, len(bank.Questions))
	for i, q := range bank.Questions {
		q.BankID = bank.ID
		q.Position = i
		q.Normalize()
		rows[i] = q
	}
	if err := tx.CreateInBatches(rows, questionBatchSize).Error; err != nil {
		return fmt.Errorf("failed to save questions of bank %s: %w", bank.ID, err)
	}
	return nil
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
