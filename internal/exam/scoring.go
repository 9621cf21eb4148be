package exam

import (
	"math"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// QuestionScore is the point contribution of one question.
type QuestionScore struct {
	Earned int `json:"earned"`
	Total  int `json:"total"`
}

// Perfect reports whether every available point was earned. Questions worth no
// points are never perfect.
func (s QuestionScore) Perfect() bool {
	return s.Total > 0 && s.Earned == s.Total
}

// Summary is the outcome of scoring a whole question set.
type Summary struct {
	EarnedPoints int `json:"earnedPoints"`
	TotalPoints  int `json:"totalPoints"`
	Score        int `json:"score"`
}

// ScoreQuestion computes the points a single answer earns.
//
//	single    1 point, all or nothing, answer set must equal the correct set
//	multiple  1 point per correct answer, wrong picks cost nothing
//	dropdown  1 point per dropdown whose value matches positionally
//	drag_drop 1 point per drop zone holding the expected option label
func ScoreQuestion(q *models.Question, answer []string) QuestionScore {
	switch q.Type {
	case models.QuestionMultiple:
		return scoreMultiple(q.CorrectAnswers, answer)
	case models.QuestionDropdown:
		return scorePositional(len(q.Dropdowns), q.CorrectAnswers, answer)
	case models.QuestionDragDrop:
		return scorePositional(len(q.DropZones), q.CorrectAnswers, answer)
	default:
		return scoreSingle(q.CorrectAnswers, answer)
	}
}

// Score sums the per-question contributions over the whole set.
func Score(questions []models.Question, answers models.AnswerSheet) Summary {
	var summary Summary
	for i := range questions {
		qs := ScoreQuestion(&questions[i], answers.Get(questions[i].ID))
		summary.EarnedPoints += qs.Earned
		summary.TotalPoints += qs.Total
	}
	summary.Score = Percentage(summary.EarnedPoints, summary.TotalPoints)
	return summary
}

// Percentage rounds earned/total to a whole percent; zero total yields zero.
func Percentage(earned, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(total) * 100))
}

func scoreSingle(correct, answer []string) QuestionScore {
	score := QuestionScore{Total: 1}
	if len(answer) > 0 && sameSet(answer, correct) {
		score.Earned = 1
	}
	return score
}

func scoreMultiple(correct, answer []string) QuestionScore {
	correctSet := toSet(correct)
	score := QuestionScore{Total: len(correct)}
	for label := range toSet(answer) {
		if _, ok := correctSet[label]; ok {
			score.Earned++
		}
	}
	if score.Earned > score.Total {
		score.Earned = score.Total
	}
	return score
}

func scorePositional(slots int, correct, answer []string) QuestionScore {
	score := QuestionScore{Total: slots}
	for i := 0; i < slots; i++ {
		if i >= len(answer) || i >= len(correct) {
			continue
		}
		if answer[i] != "" && answer[i] == correct[i] {
			score.Earned++
		}
	}
	return score
}

// sameSet compares two label lists as sets that must also agree in length.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) != len(setB) {
		return false
	}
	for k := range setA {
		if _, ok := setB[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
