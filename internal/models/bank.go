package models

import "time"

type QuestionBank struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Name      string     `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Questions []Question `json:"questions" gorm:"foreignKey:BankID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (QuestionBank) TableName() string {
	return "question_banks"
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (b *QuestionBank) QuestionIndex(id string) int {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// BankSummary is the list view of a bank.
type BankSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"`
}

func (b *QuestionBank) Summary() BankSummary {
	return BankSummary{ID: b.ID, Name: b.Name, QuestionCount: len(b.Questions)}
}
