package exam

import (
	"slices"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// QuestionReview is the read-only, scored view of one question after submission.
type QuestionReview struct {
	Index          int                 `json:"index"`
	QuestionID     string              `json:"questionId"`
	Type           models.QuestionType `json:"type"`
	Text           string              `json:"text"`
	UserAnswer     []string            `json:"userAnswer"`
	CorrectAnswers []string            `json:"correctAnswers"`
	Earned         int                 `json:"earned"`
	Total          int                 `json:"total"`
	Perfect        bool                `json:"perfect"`
	Revealed       bool                `json:"revealed"`
	Flagged        bool                `json:"flagged"`
	Explanation    string              `json:"explanation,omitempty"`
}

// Review scores every question with the same rules Submit uses.
func Review(questions []models.Question, answers models.AnswerSheet, revealed, flagged []string) []QuestionReview {
	out := make([]QuestionReview, len(questions))
	for i := range questions {
		q := &questions[i]
		answer := answers.Get(q.ID)
		score := ScoreQuestion(q, answer)
		out[i] = QuestionReview{
			Index:          i,
			QuestionID:     q.ID,
			Type:           q.Type,
			Text:           q.Text,
			UserAnswer:     append([]string{}, answer...),
			CorrectAnswers: append([]string{}, q.CorrectAnswers...),
			Earned:         score.Earned,
			Total:          score.Total,
			Perfect:        score.Perfect(),
			Revealed:       slices.Contains(revealed, q.ID),
			Flagged:        slices.Contains(flagged, q.ID),
			Explanation:    q.Explanation,
		}
	}
	return out
}

// Progress summarises an in-progress session for the navigator.
type Progress struct {
	Total      int  `json:"total"`
	Answered   int  `json:"answered"`
	Unanswered int  `json:"unanswered"`
	Flagged    int  `json:"flagged"`
	Revealed   int  `json:"revealed"`
	CanAdvance bool `json:"canAdvance"`
}

func (s *Session) Progress() Progress {
	unanswered := s.UnansweredCount()
	return Progress{
		Total:      len(s.Questions),
		Answered:   len(s.Questions) - unanswered,
		Unanswered: unanswered,
		Flagged:    len(s.Flagged),
		Revealed:   len(s.Revealed),
		CanAdvance: s.CanAdvance(),
	}
}
