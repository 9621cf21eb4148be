package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxBankNameLength bounds a trimmed bank name.
const MaxBankNameLength = 200

// Validator combines struct tag validation with question structure checks.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct tag validation and reports failures as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// ValidateRange checks a 1-based inclusive question range against a bank size.
func (v *Validator) ValidateRange(start, end, size int) error {
	var errs ValidationErrors
	if start < 1 {
		errs = append(errs, ValidationError{Field: "start", Message: "must be at least 1", Value: start, Rule: "min"})
	}
	if end > size {
		errs = append(errs, ValidationError{Field: "end", Message: fmt.Sprintf("must be at most %d", size), Value: end, Rule: "max"})
	}
	if end < start {
		errs = append(errs, ValidationError{Field: "end", Message: "must not be less than start", Value: end, Rule: "gtefield"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBankName trims name and checks it is usable as a bank name.
func (v *Validator) ValidateBankName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > MaxBankNameLength {
		return "", ValidationErrors{{
			Field:   "name",
			Message: fmt.Sprintf("must be between 1 and %d characters after trimming", MaxBankNameLength),
			Value:   name,
			Rule:    "bank_name",
		}}
	}
	return trimmed, nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("bank_name", validateBankName)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Report json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateBankName(fl validator.FieldLevel) bool {
	trimmed := strings.TrimSpace(fl.Field().String())
	return trimmed != "" && len([]rune(trimmed)) <= MaxBankNameLength
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
