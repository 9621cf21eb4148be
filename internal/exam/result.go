package exam

import (
	"math"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/models"
)

// ISOTimestamp is the millisecond UTC layout used for result dates and export dates.
const ISOTimestamp = "2006-01-02T15:04:05.000Z"

// BuildResult packages a scored session into its persisted record. Points are
// stored in the question-count fields.
func BuildResult(s *Session, summary Summary, id string, now time.Time) *models.ExamResult {
	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return &models.ExamResult{
		ID:               id,
		BankID:           s.BankID,
		BankName:         s.BankName,
		OwnerID:          s.OwnerID,
		Date:             now.UTC().Format(ISOTimestamp),
		Score:            summary.Score,
		TimeTaken:        int(math.Round(elapsed.Seconds())),
		TotalQuestions:   summary.TotalPoints,
		CorrectCount:     summary.EarnedPoints,
		IncorrectCount:   summary.TotalPoints - summary.EarnedPoints,
		UserAnswers:      s.Answers.Clone(),
		RevealedAnswers:  append([]string{}, s.Revealed...),
		FlaggedQuestions: append([]string{}, s.Flagged...),
	}
}
