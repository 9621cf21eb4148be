package services

import (
	"context"

	"github.com/SAP-F-2025/exam-studio/internal/exam"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
)

// ===== SERVICE INTERFACES =====

type BankService interface {
	List(ctx context.Context) ([]models.BankSummary, error)
	LoadAll(ctx context.Context) ([]*models.QuestionBank, error)
	Get(ctx context.Context, id string) (*models.QuestionBank, error)
	Create(ctx context.Context, req *CreateBankRequest) (*models.QuestionBank, error)
	Rename(ctx context.Context, id string, req *RenameBankRequest) (*models.QuestionBank, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, banks []*models.QuestionBank) error

	SaveQuestion(ctx context.Context, bankID string, question *models.Question) (*models.Question, error)
	DeleteQuestion(ctx context.Context, bankID, questionID string) error
	AddQuestions(ctx context.Context, bankID string, questions []models.Question) (*AddQuestionsResponse, error)
}

type ExamService interface {
	Start(ctx context.Context, req *StartExamRequest) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	Abandon(ctx context.Context, sessionID string) error

	SelectOption(ctx context.Context, sessionID string, req *SelectOptionRequest) (*SessionView, error)
	SetDropdownValue(ctx context.Context, sessionID string, req *SetDropdownRequest) (*SessionView, error)
	SelectDragItem(ctx context.Context, sessionID string, req *SelectDragItemRequest) (*SessionView, error)
	ClickDropZone(ctx context.Context, sessionID string, req *DropZoneRequest) (*SessionView, error)
	ToggleFlag(ctx context.Context, sessionID string) (*SessionView, error)
	Reveal(ctx context.Context, sessionID string) (*SessionView, error)
	Navigate(ctx context.Context, sessionID string, req *NavigateRequest) (*SessionView, error)

	Submit(ctx context.Context, sessionID string) (*SubmitResponse, error)
}

type HistoryService interface {
	List(ctx context.Context, filters repositories.HistoryFilters) (*HistoryListResponse, error)
	Get(ctx context.Context, id string) (*models.ExamResult, error)
	Delete(ctx context.Context, id string) error
}

type ImportExportService interface {
	ExportBank(ctx context.Context, bankID string) (*models.BankExport, error)
	ImportBank(ctx context.Context, data []byte) (*ImportBankResponse, error)
	ExportBankXLSX(ctx context.Context, bankID string) (*FileResponse, error)
	ImportQuestionsXLSX(ctx context.Context, bankID string, data []byte) (*models.ImportSummary, error)
	ExportHistoryXLSX(ctx context.Context) (*FileResponse, error)
}

type ExtractionService interface {
	ParseText(ctx context.Context, req *ParseTextRequest) (*ExtractionResponse, error)
	ParseFile(ctx context.Context, filename string, data []byte) (*ExtractionResponse, error)
	GenerateFromTopic(ctx context.Context, req *GenerateQuestionsRequest) (*ExtractionResponse, error)
}

// ===== REQUESTS =====

type CreateBankRequest struct {
	Name string `json:"name" validate:"bank_name"`
}

type RenameBankRequest struct {
	Name string `json:"name" validate:"bank_name"`
}

type AddQuestionsRequest struct {
	Questions []models.Question `json:"questions" validate:"required,min=1"`
}

type StartExamRequest struct {
	BankID string `json:"bankId" validate:"required"`
	Start  int    `json:"start" validate:"required,min=1"`
	End    int    `json:"end" validate:"required,min=1,gtefield=Start"`
}

type SelectOptionRequest struct {
	Label string `json:"label" validate:"required"`
}

type SetDropdownRequest struct {
	Index int    `json:"index" validate:"min=0"`
	Value string `json:"value"`
}

type SelectDragItemRequest struct {
	Label string `json:"label" validate:"required"`
}

type DropZoneRequest struct {
	Index int `json:"index" validate:"min=0"`
}

const (
	DirectionNext = "next"
	DirectionPrev = "prev"
)

// NavigateRequest moves by direction or jumps to Index when direction is empty.
type NavigateRequest struct {
	Direction string `json:"direction" validate:"omitempty,oneof=next prev"`
	Index     *int   `json:"index" validate:"omitempty,min=0"`
}

type ParseTextRequest struct {
	Text string `json:"text" validate:"not_blank"`
}

// MaxGeneratedQuestions bounds a topic generation request.
const MaxGeneratedQuestions = 50

type GenerateQuestionsRequest struct {
	Topic string `json:"topic" validate:"not_blank"`
	Count int    `json:"count" validate:"min=1,max=50"`
}

// ===== RESPONSES =====

type AddQuestionsResponse struct {
	Bank     *models.QuestionBank `json:"bank"`
	Added    int                  `json:"added"`
	Warnings []string             `json:"warnings,omitempty"`
}

// QuestionState is the per-question navigator entry of a session.
type QuestionState struct {
	ID       string `json:"id"`
	Answered bool   `json:"answered"`
	Flagged  bool   `json:"flagged"`
	Locked   bool   `json:"locked"`
}

// SessionView is what clients see of an in-progress session. Correct answers
// of the current question are only included once it is revealed.
type SessionView struct {
	ID               string             `json:"id"`
	BankID           string             `json:"bankId"`
	BankName         string             `json:"bankName"`
	Status           exam.Status        `json:"status"`
	CurrentIndex     int                `json:"currentIndex"`
	Question         *models.Question   `json:"question"`
	Answer           []string           `json:"answer"`
	MaxSelections    int                `json:"maxSelections,omitempty"`
	SelectedDragItem string             `json:"selectedDragItem,omitempty"`
	Revealed         bool               `json:"revealed"`
	Progress         exam.Progress      `json:"progress"`
	Questions        []QuestionState    `json:"questions"`
	Answers          models.AnswerSheet `json:"answers"`
	StartedAt        string             `json:"startedAt"`
}

type SubmitResponse struct {
	Result  *models.ExamResult    `json:"result"`
	Summary exam.Summary          `json:"summary"`
	Review  []exam.QuestionReview `json:"review"`
}

type HistoryListResponse struct {
	Results []*models.ExamResult `json:"results"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

type ImportBankResponse struct {
	Bank     *models.QuestionBank `json:"bank"`
	Warnings []string             `json:"warnings,omitempty"`
}

type FileResponse struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExtractionResponse struct {
	Source    string            `json:"source"`
	Questions []models.Question `json:"questions"`
	Warnings  []string          `json:"warnings,omitempty"`
}
