package ai

import (
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/google/uuid"
)

type rawDropdown struct {
	Label         string   `json:"label"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// rawQuestion is a question as the model returns it. Every field is optional.
type rawQuestion struct {
	ID             string            `json:"id"`
	Text           string            `json:"text"`
	Type           string            `json:"type"`
	Options        []models.Option   `json:"options"`
	Dropdowns      []rawDropdown     `json:"dropdowns"`
	DropZones      []models.DropZone `json:"dropZones"`
	CorrectAnswers []string          `json:"correctAnswers"`
	Explanation    string            `json:"explanation"`
}

// normalize turns model output into well-formed questions: missing lists
// become empty, ids are fresh and unique, and dropdown answers fall back to
// the per-dropdown correctAnswer.
func normalize(raw []rawQuestion) []models.Question {
	seen := make(map[string]bool, len(raw))
	out := make([]models.Question, 0, len(raw))

	for _, r := range raw {
		q := models.Question{
			ID:             strings.TrimSpace(r.ID),
			Text:           r.Text,
			Type:           normalizeType(r.Type),
			Options:        r.Options,
			DropZones:      r.DropZones,
			CorrectAnswers: r.CorrectAnswers,
			Explanation:    r.Explanation,
		}
		if q.ID == "" || seen[q.ID] {
			q.ID = uuid.NewString()
		}
		seen[q.ID] = true

		if len(r.Dropdowns) > 0 {
			q.Dropdowns = make([]models.DropdownItem, len(r.Dropdowns))
			derived := make([]string, len(r.Dropdowns))
			for i, d := range r.Dropdowns {
				q.Dropdowns[i] = models.DropdownItem{Label: d.Label, Options: d.Options}
				derived[i] = d.CorrectAnswer
			}
			if q.Type == models.QuestionDropdown && len(q.CorrectAnswers) == 0 {
				q.CorrectAnswers = derived
			}
		}

		q.Normalize()
		out = append(out, q)
	}
	return out
}

func normalizeType(t string) models.QuestionType {
	qt := models.QuestionType(strings.ToLower(strings.TrimSpace(t)))
	switch {
	case qt.IsValid():
		return qt
	case qt == "drag-drop" || qt == "dragdrop":
		return models.QuestionDragDrop
	default:
		return models.QuestionSingle
	}
}
