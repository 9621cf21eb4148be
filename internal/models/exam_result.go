package models

// ExamResult is the immutable record of one submitted exam session.
//
// TotalQuestions, CorrectCount and IncorrectCount hold points, not question
// counts: partial-credit question types make per-question counting ambiguous.
type ExamResult struct {
	ID               string      `json:"id"`
	BankID           string      `json:"bankId"`
	BankName         string      `json:"bankName"`
	OwnerID          string      `json:"ownerId,omitempty"`
	Date             string      `json:"date"`
	Score            int         `json:"score"`
	TimeTaken        int         `json:"timeTaken"`
	TotalQuestions   int         `json:"totalQuestions"`
	CorrectCount     int         `json:"correctCount"`
	IncorrectCount   int         `json:"incorrectCount"`
	UserAnswers      AnswerSheet `json:"userAnswers"`
	RevealedAnswers  []string    `json:"revealedAnswers"`
	FlaggedQuestions []string    `json:"flaggedQuestions"`
}
