package exam

import (
	"testing"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/stretchr/testify/assert"
)

func singleQuestion(id string, correct ...string) models.Question {
	return models.Question{
		ID:   id,
		Type: models.QuestionSingle,
		Text: "Pick one",
		Options: []models.Option{
			{Label: "A", Text: "alpha"},
			{Label: "B", Text: "beta"},
			{Label: "C", Text: "gamma"},
		},
		CorrectAnswers: correct,
	}
}

func multipleQuestion(id string, correct ...string) models.Question {
	return models.Question{
		ID:   id,
		Type: models.QuestionMultiple,
		Text: "Pick many",
		Options: []models.Option{
			{Label: "A", Text: "alpha"},
			{Label: "B", Text: "beta"},
			{Label: "C", Text: "gamma"},
			{Label: "D", Text: "delta"},
		},
		CorrectAnswers: correct,
	}
}

func dropdownQuestion(id string) models.Question {
	return models.Question{
		ID:   id,
		Type: models.QuestionDropdown,
		Text: "Go is {{dropdown}} and {{dropdown}}",
		Dropdowns: []models.DropdownItem{
			{Label: "first", Options: []string{"fast", "slow"}},
			{Label: "second", Options: []string{"typed", "untyped"}},
		},
		CorrectAnswers: []string{"fast", "typed"},
	}
}

func dragDropQuestion(id string) models.Question {
	return models.Question{
		ID:   id,
		Type: models.QuestionDragDrop,
		Text: "Order the layers",
		Options: []models.Option{
			{Label: "A", Text: "handler"},
			{Label: "B", Text: "service"},
			{Label: "C", Text: "repository"},
		},
		DropZones:      []models.DropZone{{Label: "1"}, {Label: "2"}, {Label: "3"}},
		CorrectAnswers: []string{"A", "B", "C"},
	}
}

func TestScoreQuestion(t *testing.T) {
	single := singleQuestion("q1", "B")
	multiple := multipleQuestion("q2", "A", "C")
	dropdown := dropdownQuestion("q3")
	drag := dragDropQuestion("q4")

	tests := []struct {
		name     string
		question models.Question
		answer   []string
		expected QuestionScore
	}{
		{"single correct", single, []string{"B"}, QuestionScore{Earned: 1, Total: 1}},
		{"single wrong", single, []string{"A"}, QuestionScore{Earned: 0, Total: 1}},
		{"single empty", single, []string{}, QuestionScore{Earned: 0, Total: 1}},
		{"single extra label", single, []string{"B", "A"}, QuestionScore{Earned: 0, Total: 1}},
		{"multiple all correct", multiple, []string{"A", "C"}, QuestionScore{Earned: 2, Total: 2}},
		{"multiple partial", multiple, []string{"A"}, QuestionScore{Earned: 1, Total: 2}},
		{"multiple wrong pick costs nothing", multiple, []string{"A", "B"}, QuestionScore{Earned: 1, Total: 2}},
		{"multiple duplicates count once", multiple, []string{"A", "A"}, QuestionScore{Earned: 1, Total: 2}},
		{"dropdown half", dropdown, []string{"fast", "untyped"}, QuestionScore{Earned: 1, Total: 2}},
		{"dropdown short answer", dropdown, []string{"fast"}, QuestionScore{Earned: 1, Total: 2}},
		{"dropdown unset slot", dropdown, []string{"", "typed"}, QuestionScore{Earned: 1, Total: 2}},
		{"drag one of three", drag, []string{"A", "C", "B"}, QuestionScore{Earned: 1, Total: 3}},
		{"drag empty", drag, []string{"", "", ""}, QuestionScore{Earned: 0, Total: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreQuestion(&tt.question, tt.answer)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScoreQuestion_EmptyCorrectNeverMatches(t *testing.T) {
	q := dropdownQuestion("q1")
	q.CorrectAnswers = []string{"", ""}

	got := ScoreQuestion(&q, []string{"", ""})
	assert.Equal(t, 0, got.Earned)
	assert.Equal(t, 2, got.Total)
}

func TestScore(t *testing.T) {
	t.Run("one of three single questions", func(t *testing.T) {
		questions := []models.Question{
			singleQuestion("q1", "A"),
			singleQuestion("q2", "B"),
			singleQuestion("q3", "C"),
		}
		answers := models.AnswerSheet{"q1": {"A"}, "q2": {"C"}}

		summary := Score(questions, answers)
		assert.Equal(t, Summary{EarnedPoints: 1, TotalPoints: 3, Score: 33}, summary)
	})

	t.Run("dropdown half right", func(t *testing.T) {
		questions := []models.Question{dropdownQuestion("q1")}
		answers := models.AnswerSheet{"q1": {"fast", "untyped"}}

		assert.Equal(t, 50, Score(questions, answers).Score)
	})

	t.Run("drag one of three", func(t *testing.T) {
		questions := []models.Question{dragDropQuestion("q1")}
		answers := models.AnswerSheet{"q1": {"A", "C", "B"}}

		assert.Equal(t, 33, Score(questions, answers).Score)
	})

	t.Run("no points available", func(t *testing.T) {
		q := multipleQuestion("q1")
		summary := Score([]models.Question{q}, models.AnswerSheet{"q1": {"A"}})
		assert.Equal(t, 0, summary.TotalPoints)
		assert.Equal(t, 0, summary.Score)
	})
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(5, 5))
	assert.Equal(t, 50, Percentage(1, 2))
}
