package exam

import "errors"

var (
	ErrSessionFinished   = errors.New("exam session already finished")
	ErrWrongQuestionType = errors.New("interaction not supported by the current question type")
	ErrIndexOutOfRange   = errors.New("slot index out of range")
	ErrUnknownOption     = errors.New("option label not part of the question")
	ErrInvalidRange      = errors.New("invalid question range")
	ErrNoQuestions       = errors.New("exam has no questions")
)
