package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/ai"
	"github.com/SAP-F-2025/exam-studio/internal/extract"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
)

const (
	SourceText  = "text"
	SourceImage = "image"
	SourcePDF   = "pdf"
	SourceTopic = "topic"
)

type extractionService struct {
	extractor ai.Extractor
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewExtractionService(extractor ai.Extractor, logger *slog.Logger, validator *validator.Validator) ExtractionService {
	return &extractionService{
		extractor: extractor,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exam-studio", Component: "extraction"}),
		validator: validator,
	}
}

func (s *extractionService) ParseText(ctx context.Context, req *ParseTextRequest) (resp *ExtractionResponse, err error) {
	op := s.logger.WithOperation(ctx, "parse_text")
	defer func() { op.LogResult("", "questions", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions, err := s.extractor.ParseText(ctx, req.Text)
	if err != nil {
		return nil, extractionFailure("parse_text", "Failed to parse questions from the text. Please check the content and try again.", err)
	}
	return s.respond(ctx, SourceText, questions), nil
}

// ParseFile sniffs the upload. Images go to the model as base64, PDFs are
// reduced to their text first.
func (s *extractionService) ParseFile(ctx context.Context, filename string, data []byte) (resp *ExtractionResponse, err error) {
	op := s.logger.WithOperation(ctx, "parse_file")
	defer func() { op.LogResult(filename, "upload", err) }()

	detection, err := extract.Detect(data)
	if err != nil {
		return nil, validationFailure("file", err.Error(), filename)
	}

	switch detection.Kind {
	case extract.KindImage:
		questions, err := s.extractor.ParseImage(ctx, extract.ToBase64(data), detection.MimeType)
		if err != nil {
			return nil, extractionFailure("parse_image", "Failed to parse questions from the image. Please try a clearer image.", err)
		}
		return s.respond(ctx, SourceImage, questions), nil

	case extract.KindPDF:
		text, err := extract.PDFText(data)
		if err != nil {
			if errors.Is(err, extract.ErrNoText) {
				return nil, validationFailure("file", err.Error(), filename)
			}
			return nil, extractionFailure("read_pdf", "Failed to read the PDF file.", err)
		}
		questions, err := s.extractor.ParseText(ctx, text)
		if err != nil {
			return nil, extractionFailure("parse_pdf", "Failed to parse questions from the PDF. Please check the content and try again.", err)
		}
		return s.respond(ctx, SourcePDF, questions), nil

	default:
		s.logger.Info(ctx, "Rejected upload", "filename", filename, "mime_type", detection.MimeType)
		return nil, ErrUnsupportedFile
	}
}

func (s *extractionService) GenerateFromTopic(ctx context.Context, req *GenerateQuestionsRequest) (resp *ExtractionResponse, err error) {
	op := s.logger.WithOperation(ctx, "generate_questions")
	defer func() { op.LogResult(req.Topic, "questions", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions, err := s.extractor.GenerateFromTopic(ctx, strings.TrimSpace(req.Topic), req.Count)
	if err != nil {
		return nil, extractionFailure("generate_questions", "Failed to generate questions. Please try again.", err)
	}
	return s.respond(ctx, SourceTopic, questions), nil
}

// respond normalizes the model output. Structural problems are logged and
// returned as warnings so the caller can fix them in the editor.
func (s *extractionService) respond(ctx context.Context, source string, questions []models.Question) *ExtractionResponse {
	prepared := prepareQuestions(questions)
	warnings := s.validator.Question().ValidateBatch(prepared)
	s.logger.LogValidationWarnings(ctx, "extract_"+source, warnings)

	return &ExtractionResponse{
		Source:    source,
		Questions: prepared,
		Warnings:  warnings.Messages(),
	}
}

func extractionFailure(operation, message string, cause error) error {
	if errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(cause, ai.ErrMissingAPIKey) {
		message = "The AI service is not configured."
	}
	return &ExtractionError{Operation: operation, Message: message, cause: cause}
}
