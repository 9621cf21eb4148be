package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// QuestionValidator checks the structural invariants of a question that struct
// tags cannot express.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion returns every violation found on q; nil means the question is clean.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) ValidationErrors {
	var errs ValidationErrors
	add := func(field, rule, message string, value interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: message, Value: value, Rule: rule})
	}

	if strings.TrimSpace(q.Text) == "" {
		add("text", "required", "is required", q.Text)
	}
	if !q.Type.IsValid() {
		add("type", "question_type", "must be a valid question type (single, multiple, dropdown, drag_drop)", q.Type)
		return errs
	}

	labels := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		field := fmt.Sprintf("options[%d].label", i)
		switch {
		case strings.TrimSpace(opt.Label) == "":
			add(field, "required", "is required", opt.Label)
		case labels[opt.Label]:
			add(field, "unique", "must be unique within the question", opt.Label)
		}
		labels[opt.Label] = true
	}

	switch q.Type {
	case models.QuestionSingle:
		if len(q.Options) == 0 {
			add("options", "min", "must have at least 1 option", len(q.Options))
		}
		if len(q.CorrectAnswers) != 1 {
			add("correctAnswers", "len", "must hold exactly 1 answer", len(q.CorrectAnswers))
		}
		v.checkLabels(q.CorrectAnswers, labels, add)

	case models.QuestionMultiple:
		if len(q.Options) == 0 {
			add("options", "min", "must have at least 1 option", len(q.Options))
		}
		if len(q.CorrectAnswers) == 0 {
			add("correctAnswers", "min", "must hold at least 1 answer", 0)
		}
		v.checkLabels(q.CorrectAnswers, labels, add)

	case models.QuestionDropdown:
		if len(q.Dropdowns) == 0 {
			add("dropdowns", "min", "must have at least 1 dropdown", 0)
		}
		if len(q.CorrectAnswers) != len(q.Dropdowns) {
			add("correctAnswers", "len", fmt.Sprintf("must hold one answer per dropdown (%d)", len(q.Dropdowns)), len(q.CorrectAnswers))
		}
		for i, d := range q.Dropdowns {
			if len(d.Options) == 0 {
				add(fmt.Sprintf("dropdowns[%d].options", i), "min", "must have at least 1 option", 0)
				continue
			}
			if i < len(q.CorrectAnswers) && !slices.Contains(d.Options, q.CorrectAnswers[i]) {
				add(fmt.Sprintf("correctAnswers[%d]", i), "oneof", "must be one of the dropdown's options", q.CorrectAnswers[i])
			}
		}
		if n := q.PlaceholderCount(); n > 0 && n != len(q.Dropdowns) {
			add("text", "placeholders", fmt.Sprintf("has %d %s placeholders for %d dropdowns", n, models.DropdownPlaceholder, len(q.Dropdowns)), n)
		}

	case models.QuestionDragDrop:
		if len(q.DropZones) == 0 {
			add("dropZones", "min", "must have at least 1 drop zone", 0)
		}
		if len(q.CorrectAnswers) != len(q.DropZones) {
			add("correctAnswers", "len", fmt.Sprintf("must hold one label per drop zone (%d)", len(q.DropZones)), len(q.CorrectAnswers))
		}
		v.checkLabels(q.CorrectAnswers, labels, add)
	}

	return errs
}

// ValidateBatch validates every question and prefixes fields with their position.
func (v *QuestionValidator) ValidateBatch(questions []models.Question) ValidationErrors {
	var errs ValidationErrors
	for i := range questions {
		for _, e := range v.ValidateQuestion(&questions[i]) {
			e.Field = fmt.Sprintf("questions[%d].%s", i, e.Field)
			errs = append(errs, e)
		}
	}
	return errs
}

func (v *QuestionValidator) checkLabels(answers []string, labels map[string]bool, add func(field, rule, message string, value interface{})) {
	for i, label := range answers {
		if !labels[label] {
			add(fmt.Sprintf("correctAnswers[%d]", i), "option_label", "must reference an option label", label)
		}
	}
}
