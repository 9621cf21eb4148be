package models

import (
	"slices"
	"strings"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionDropdown QuestionType = "dropdown"
	QuestionDragDrop QuestionType = "drag_drop"
)

// DropdownPlaceholder marks an inline dropdown position inside a dropdown question's text.
const DropdownPlaceholder = "{{dropdown}}"

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{QuestionSingle, QuestionMultiple, QuestionDropdown, QuestionDragDrop}

func (t QuestionType) IsValid() bool {
	for _, valid := range QuestionTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// IsPositional reports whether answers of this type are index-aligned lists
// (dropdown values or drop zone placements) rather than sets of option labels.
func (t QuestionType) IsPositional() bool {
	return t == QuestionDropdown || t == QuestionDragDrop
}

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type DropdownItem struct {
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

type DropZone struct {
	Label string `json:"label,omitempty"`
}

// Question is a tagged union over QuestionType. Dropdowns is only meaningful for
// dropdown questions and DropZones only for drag_drop questions.
type Question struct {
	BankID   string `json:"-" gorm:"primaryKey;size:36"`
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	Position int    `json:"-" gorm:"not null;default:0"`

	Text           string         `json:"text" gorm:"type:text;not null"`
	Type           QuestionType   `json:"type" gorm:"size:20;not null" validate:"required,question_type"`
	ImageURL       string         `json:"imageUrl,omitempty" gorm:"type:text"`
	Options        []Option       `json:"options" gorm:"type:jsonb;serializer:json"`
	Dropdowns      []DropdownItem `json:"dropdowns,omitempty" gorm:"type:jsonb;serializer:json"`
	DropZones      []DropZone     `json:"dropZones,omitempty" gorm:"type:jsonb;serializer:json"`
	CorrectAnswers []string       `json:"correctAnswers" gorm:"type:jsonb;serializer:json"`
	Explanation    string         `json:"explanation,omitempty" gorm:"type:text"`
}

func (Question) TableName() string {
	return "questions"
}

// SlotCount is the number of positional slots (dropdowns or drop zones) of the question.
// It is zero for single and multiple questions.
func (q *Question) SlotCount() int {
	switch q.Type {
	case QuestionDropdown:
		return len(q.Dropdowns)
	case QuestionDragDrop:
		return len(q.DropZones)
	default:
		return 0
	}
}

// HasOption reports whether label names one of the question's options.
func (q *Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// PlaceholderCount counts the inline dropdown markers in the question text.
func (q *Question) PlaceholderCount() int {
	return strings.Count(q.Text, DropdownPlaceholder)
}

// Normalize replaces missing lists with empty ones so a partially filled payload
// behaves like a question without correct answers instead of failing.
func (q *Question) Normalize() {
	if q.Options == nil {
		q.Options = []Option{}
	}
	if q.CorrectAnswers == nil {
		q.CorrectAnswers = []string{}
	}
	if q.Dropdowns == nil {
		q.Dropdowns = []DropdownItem{}
	}
	for i := range q.Dropdowns {
		if q.Dropdowns[i].Options == nil {
			q.Dropdowns[i].Options = []string{}
		}
	}
	if q.DropZones == nil {
		q.DropZones = []DropZone{}
	}
}

// ChangeType switches the question to newType, resetting the data that only makes
// sense for the previous type.
func (q *Question) ChangeType(newType QuestionType) {
	if q.Type == newType {
		return
	}
	switch newType {
	case QuestionDropdown:
		if len(q.Dropdowns) == 0 {
			q.Dropdowns = []DropdownItem{}
			q.CorrectAnswers = []string{}
		}
	case QuestionDragDrop:
		if len(q.DropZones) == 0 {
			q.DropZones = []DropZone{}
			q.CorrectAnswers = []string{}
		}
		if q.Options == nil {
			q.Options = []Option{}
		}
	default:
		if q.Type.IsPositional() {
			q.CorrectAnswers = []string{}
		}
	}
	q.Type = newType
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Options = slices.Clone(q.Options)
	out.CorrectAnswers = slices.Clone(q.CorrectAnswers)
	out.DropZones = slices.Clone(q.DropZones)
	if q.Dropdowns != nil {
		out.Dropdowns = make([]DropdownItem, len(q.Dropdowns))
		for i, d := range q.Dropdowns {
			out.Dropdowns[i] = DropdownItem{Label: d.Label, Options: slices.Clone(d.Options)}
		}
	}
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}
