package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	questionsSheet = "Questions"
	historySheet   = "History"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// excel refuses longer cell values
	maxCellChars = 32767
)

var questionHeaders = []string{
	"ID", "Type", "Question Text", "Options", "Dropdowns", "Drop Zones", "Correct Answers", "Explanation", "Image URL",
}

var historyHeaders = []string{
	"Date", "Bank", "Score (%)", "Correct Points", "Incorrect Points", "Total Points",
	"Time Taken (seconds)", "Revealed", "Flagged",
}

type importExportService struct {
	banks     repositories.BankRepository
	history   repositories.HistoryRepository
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewImportExportService(
	banks repositories.BankRepository,
	history repositories.HistoryRepository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ImportExportService {
	return &importExportService{
		banks:     banks,
		history:   history,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exam-studio", Component: "import_export"}),
		validator: validator,
		now:       time.Now,
	}
}

// ===== JSON =====

func (s *importExportService) ExportBank(ctx context.Context, bankID string) (*models.BankExport, error) {
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, translateNotFound(err, ErrBankNotFound)
	}
	return &models.BankExport{
		BankName:   bank.Name,
		ExportDate: s.now().UTC().Format(exam.ISOTimestamp),
		Questions:  models.CloneQuestions(bank.Questions),
	}, nil
}

// ImportBank always creates a new bank. Question ids of the document are kept;
// structural problems of the questions are reported as warnings.
func (s *importExportService) ImportBank(ctx context.Context, data []byte) (resp *ImportBankResponse, err error) {
	op := s.logger.WithOperation(ctx, "import_bank")
	defer func() {
		id := ""
		if resp != nil {
			id = resp.Bank.ID
		}
		op.LogResult(id, "question_bank", err)
	}()

	var doc struct {
		BankName  *string            `json:"bankName"`
		Questions *[]models.Question `json:"questions"`
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if doc.BankName == nil || strings.TrimSpace(*doc.BankName) == "" {
		return nil, fmt.Errorf("%w: bankName must be a non-empty string", ErrInvalidImport)
	}
	if doc.Questions == nil {
		return nil, fmt.Errorf("%w: questions must be a list", ErrInvalidImport)
	}

	name, err := s.validator.ValidateBankName(importedName(*doc.BankName))
	if err != nil {
		return nil, err
	}

	bank := &models.QuestionBank{
		ID:        uuid.NewString(),
		Name:      name,
		Questions: prepareQuestions(*doc.Questions),
	}
	warnings := s.validator.Question().ValidateBatch(bank.Questions)
	s.logger.LogValidationWarnings(ctx, "import_bank", warnings)

	if err = s.banks.Save(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to import bank: %w", err)
	}

	s.publishImported(ctx, bank, "json", len(warnings))
	return &ImportBankResponse{Bank: bank, Warnings: warnings.Messages()}, nil
}

// importedName suffixes the source name, shortening it so the result still
// fits the bank name limit.
func importedName(name string) string {
	base := []rune(strings.TrimSpace(name))
	limit := validator.MaxBankNameLength - len([]rune(models.ImportedNameSuffix))
	if len(base) > limit {
		base = []rune(strings.TrimSpace(string(base[:limit])))
	}
	return string(base) + models.ImportedNameSuffix
}

// ===== SPREADSHEETS =====

func (s *importExportService) ExportBankXLSX(ctx context.Context, bankID string) (*FileResponse, error) {
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, translateNotFound(err, ErrBankNotFound)
	}

	rows := make([][]interface{}, 0, len(bank.Questions))
	for i := range bank.Questions {
		rows = append(rows, questionToRow(&bank.Questions[i]))
	}

	data, err := writeWorkbook(questionsSheet, questionHeaders, rows)
	if err != nil {
		return nil, err
	}
	return &FileResponse{
		Filename:    exportFilename(bank.Name, "xlsx"),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

// ImportQuestionsXLSX appends the rows of a Questions sheet to an existing
// bank. Rows that do not describe a valid question are skipped and reported.
func (s *importExportService) ImportQuestionsXLSX(ctx context.Context, bankID string, data []byte) (summary *models.ImportSummary, err error) {
	op := s.logger.WithOperation(ctx, "import_questions_xlsx")
	defer func() { op.LogResult(bankID, "question_bank", err) }()

	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, translateNotFound(err, ErrBankNotFound)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: Excel file has no sheets", ErrInvalidImport)
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if name == questionsSheet {
			sheetName = name
			break
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, validationFailure("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"type", "question text"} {
		if _, exists := headerMap[col]; !exists {
			return nil, validationFailure("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary = &models.ImportSummary{
		TotalRows: len(rows) - 1,
		Errors:    []models.ImportValidationError{},
	}

	taken := make(map[string]bool, len(bank.Questions))
	for _, q := range bank.Questions {
		taken[q.ID] = true
	}

	var added []models.Question
	for rowIndex, row := range rows[1:] {
		summary.ProcessedRows++
		rowNum := rowIndex + 2

		question, rowErrors := s.parseQuestionRow(row, headerMap, rowNum)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
			continue
		}
		if question.ID == "" || taken[question.ID] {
			question.ID = uuid.NewString()
		}
		taken[question.ID] = true
		added = append(added, *question)
		summary.SuccessCount++
	}

	if len(added) > 0 {
		bank.Questions = append(bank.Questions, added...)
		if err = s.banks.Save(ctx, bank); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
		s.publishImported(ctx, bank, "xlsx", summary.ErrorCount)
	}
	summary.Questions = added

	s.logger.Info(ctx, "Excel import completed",
		"bank_id", bank.ID,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

func (s *importExportService) ExportHistoryXLSX(ctx context.Context) (*FileResponse, error) {
	results, _, err := s.history.List(ctx, repositories.HistoryFilters{OwnerID: UserID(ctx)})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, []interface{}{
			r.Date,
			r.BankName,
			r.Score,
			r.CorrectCount,
			r.IncorrectCount,
			r.TotalQuestions,
			r.TimeTaken,
			len(r.RevealedAnswers),
			len(r.FlaggedQuestions),
		})
	}

	data, err := writeWorkbook(historySheet, historyHeaders, rows)
	if err != nil {
		return nil, err
	}
	return &FileResponse{
		Filename:    fmt.Sprintf("exam-history-%s.xlsx", s.now().UTC().Format("2006-01-02")),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

func (s *importExportService) publishImported(ctx context.Context, bank *models.QuestionBank, format string, warnings int) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.EventBankImported, events.BankImportedEvent{
		BankID:        bank.ID,
		BankName:      bank.Name,
		Format:        format,
		QuestionCount: len(bank.Questions),
		WarningCount:  warnings,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// ===== HELPER FUNCTIONS =====

func writeWorkbook(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// questionToRow lays out one question per row. List cells hold one entry per
// line: options as "A. text", dropdowns as "label: first | second".
func questionToRow(q *models.Question) []interface{} {
	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		options[i] = opt.Label + ". " + opt.Text
	}
	dropdowns := make([]string, len(q.Dropdowns))
	for i, d := range q.Dropdowns {
		dropdowns[i] = d.Label + ": " + strings.Join(d.Options, " | ")
	}
	zones := make([]string, len(q.DropZones))
	for i, z := range q.DropZones {
		zones[i] = z.Label
	}

	image := q.ImageURL
	if len(image) > maxCellChars {
		image = ""
	}

	return []interface{}{
		q.ID,
		string(q.Type),
		q.Text,
		strings.Join(options, "\n"),
		strings.Join(dropdowns, "\n"),
		strings.Join(zones, "\n"),
		strings.Join(q.CorrectAnswers, "\n"),
		q.Explanation,
		image,
	}
}

func (s *importExportService) parseQuestionRow(row []string, headerMap map[string]int, rowNum int) (*models.Question, []models.ImportValidationError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	question := &models.Question{
		ID:          getColumn("id"),
		Type:        models.QuestionType(strings.ToLower(getColumn("type"))),
		Text:        getColumn("question text"),
		Explanation: getColumn("explanation"),
		ImageURL:    getColumn("image url"),
	}

	for i, line := range splitLines(getColumn("options")) {
		label, text, found := strings.Cut(line, ". ")
		if !found {
			label, text = exam.OptionLabel(i), line
		}
		question.Options = append(question.Options, models.Option{
			Label: strings.TrimSpace(label),
			Text:  strings.TrimSpace(text),
		})
	}
	for _, line := range splitLines(getColumn("dropdowns")) {
		label, values, found := strings.Cut(line, ": ")
		if !found {
			label, values = "", line
		}
		item := models.DropdownItem{Label: strings.TrimSpace(label), Options: []string{}}
		for _, v := range strings.Split(values, "|") {
			if v = strings.TrimSpace(v); v != "" {
				item.Options = append(item.Options, v)
			}
		}
		question.Dropdowns = append(question.Dropdowns, item)
	}
	for _, line := range splitLines(getColumn("drop zones")) {
		question.DropZones = append(question.DropZones, models.DropZone{Label: line})
	}
	question.CorrectAnswers = splitLines(getColumn("correct answers"))
	question.Normalize()

	var errs []models.ImportValidationError
	for _, ve := range s.validator.Question().ValidateQuestion(question) {
		value := ""
		if ve.Value != nil {
			value = fmt.Sprint(ve.Value)
		}
		errs = append(errs, models.ImportValidationError{
			Row:     rowNum,
			Column:  ve.Field,
			Message: ve.Message,
			Value:   value,
			Code:    ve.Rule,
		})
	}
	return question, errs
}

func splitLines(cell string) []string {
	var out []string
	for _, line := range strings.Split(cell, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func exportFilename(name, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "bank"
	}
	return slug + "-export." + ext
}
