package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-studio/internal/errors"
	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/extract"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/sessions"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	ErrBankNotFound     = errors.New("question bank not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotFound  = errors.New("exam session not found or expired")
	ErrResultNotFound   = errors.New("exam result not found")

	ErrEmptyBank        = errors.New("question bank has no questions")
	ErrInvalidImport    = errors.New("invalid import document")
	ErrExtractionFailed = errors.New("failed to extract questions")
	ErrUnsupportedFile  = extract.ErrUnsupportedFile
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	cause   error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

// ExtractionError carries the user facing message of a failed AI call.
type ExtractionError struct {
	Operation string
	Message   string
	cause     error
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.cause}
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// validationFailure wraps a single field failure as ValidationErrors.
func validationFailure(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// sessionRuleError maps exam engine errors onto business rule violations.
func sessionRuleError(sessionID string, err error) error {
	rule := "exam_session"
	switch {
	case errors.Is(err, exam.ErrSessionFinished):
		rule = "session_finished"
	case errors.Is(err, exam.ErrWrongQuestionType):
		rule = "question_type"
	case errors.Is(err, exam.ErrIndexOutOfRange):
		rule = "slot_index"
	case errors.Is(err, exam.ErrUnknownOption):
		rule = "option"
	default:
		return err
	}
	return &BusinessRuleError{
		Rule:    rule,
		Message: err.Error(),
		Context: map[string]interface{}{"session_id": sessionID},
		cause:   err,
	}
}

// translateNotFound replaces repository level not-found errors with target.
func translateNotFound(err, target error) error {
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, sessions.ErrNotFound) {
		return target
	}
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBankNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidImport) ||
		errors.Is(err, ErrUnsupportedFile) || errors.Is(err, ErrEmptyBank) ||
		errors.Is(err, exam.ErrInvalidRange) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict reports an interaction with a session that already finished.
func IsConflict(err error) bool {
	return errors.Is(err, exam.ErrSessionFinished)
}

func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtractionFailed)
}
