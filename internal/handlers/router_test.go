package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/cache"
	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/sessions"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/SAP-F-2025/exam-studio/internal/validator"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExtractor struct {
	mock.Mock
}

func (m *stubExtractor) ParseText(ctx context.Context, text string) ([]models.Question, error) {
	args := m.Called(ctx, text)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *stubExtractor) ParseImage(ctx context.Context, base64Data, mimeType string) ([]models.Question, error) {
	args := m.Called(ctx, base64Data, mimeType)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *stubExtractor) GenerateFromTopic(ctx context.Context, topic string, count int) ([]models.Question, error) {
	args := m.Called(ctx, topic, count)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

type testServer struct {
	router    *gin.Engine
	extractor *stubExtractor
}

func newTestServer(t *testing.T, auth gin.HandlerFunc) *testServer {
	t.Helper()

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)
	v := validator.New()
	banks := memory.NewBankMemory()
	history := memory.NewHistoryMemory()
	store := sessions.NewStore(cache.NewMemoryCache(), time.Hour)
	publisher := events.NewMockEventPublisher(slogger)
	extractor := &stubExtractor{}

	hm := NewHandlerManager(ServiceSet{
		Banks:        services.NewBankService(banks, slogger, v),
		Exams:        services.NewExamService(banks, history, store, publisher, slogger, v),
		History:      services.NewHistoryService(history, publisher, slogger),
		ImportExport: services.NewImportExportService(banks, history, publisher, slogger, v),
		Extraction:   services.NewExtractionService(extractor, slogger, v),
	}, logger)

	return &testServer{router: NewRouter(hm, auth), extractor: extractor}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sampleQuestion(id string) models.Question {
	return models.Question{
		ID:             id,
		Text:           "Capital of France?",
		Type:           models.QuestionSingle,
		Options:        []models.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "Rome"}},
		CorrectAnswers: []string{"A"},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
}

func TestBankRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/banks", services.CreateBankRequest{Name: "Geography"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bank := decode[models.QuestionBank](t, w)

	w = s.do(t, http.MethodPut, "/api/v1/banks/"+bank.ID+"/questions/q1", sampleQuestion(""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "q1", decode[models.Question](t, w).ID)

	invalid := sampleQuestion("")
	invalid.CorrectAnswers = []string{"Z"}
	w = s.do(t, http.MethodPut, "/api/v1/banks/"+bank.ID+"/questions/q2", invalid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", decode[ErrorResponse](t, w).Message)

	w = s.do(t, http.MethodGet, "/api/v1/banks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[[]models.BankSummary](t, w)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].QuestionCount)

	w = s.do(t, http.MethodGet, "/api/v1/banks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/banks", services.CreateBankRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/banks/"+bank.ID+"/questions/q1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/banks/"+bank.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExamRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/banks", services.CreateBankRequest{Name: "Geography"})
	require.Equal(t, http.StatusCreated, w.Code)
	bank := decode[models.QuestionBank](t, w)
	w = s.do(t, http.MethodPost, "/api/v1/banks/"+bank.ID+"/questions", services.AddQuestionsRequest{
		Questions: []models.Question{sampleQuestion("q1"), sampleQuestion("q2")},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/exams", services.StartExamRequest{BankID: bank.ID, Start: 1, End: 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/exams", services.StartExamRequest{BankID: bank.ID, Start: 1, End: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[services.SessionView](t, w)
	assert.Empty(t, view.Question.CorrectAnswers)

	// find the label of "Paris" after shuffling
	correct := ""
	for _, opt := range view.Question.Options {
		if opt.Text == "Paris" {
			correct = opt.Label
		}
	}
	require.NotEmpty(t, correct)

	base := "/api/v1/exams/" + view.ID
	w = s.do(t, http.MethodPost, base+"/options", services.SelectOptionRequest{Label: correct})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, base+"/drop-zones", services.DropZoneRequest{Index: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, base+"/navigate", services.NavigateRequest{Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/navigate", services.NavigateRequest{Direction: services.DirectionNext})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.SessionView](t, w).CurrentIndex)

	w = s.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[services.SubmitResponse](t, w)
	assert.Equal(t, 50, resp.Result.Score)
	assert.Len(t, resp.Review, 2)

	w = s.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[services.HistoryListResponse](t, w)
	assert.Equal(t, int64(1), list.Total)

	w = s.do(t, http.MethodGet, "/api/v1/history/"+resp.Result.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/history/export.xlsx", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "exam-history-")

	w = s.do(t, http.MethodDelete, "/api/v1/history/"+resp.Result.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestImportExportRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/banks/import", map[string]interface{}{
		"bankName":  "Shared",
		"questions": []models.Question{sampleQuestion("q1")},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imported := decode[services.ImportBankResponse](t, w)
	assert.Equal(t, "Shared (Imported)", imported.Bank.Name)

	w = s.do(t, http.MethodPost, "/api/v1/banks/import", map[string]interface{}{"questions": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/banks/"+imported.Bank.ID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	export := decode[models.BankExport](t, w)
	assert.Equal(t, "Shared (Imported)", export.BankName)
	assert.Len(t, export.Questions, 1)

	w = s.do(t, http.MethodGet, "/api/v1/banks/"+imported.Bank.ID+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	workbook := w.Body.Bytes()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "questions.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/banks/"+imported.Bank.ID+"/import.xlsx", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[models.ImportSummary](t, w)
	assert.Equal(t, 1, summary.SuccessCount)
}

func TestExtractionRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	s.extractor.On("ParseText", mock.Anything, "Q1. 2+2?").Return([]models.Question{sampleQuestion("q1")}, nil)
	s.extractor.On("GenerateFromTopic", mock.Anything, "Go", 2).Return(nil, errors.New("quota"))

	w := s.do(t, http.MethodPost, "/api/v1/extract/text", services.ParseTextRequest{Text: "Q1. 2+2?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[services.ExtractionResponse](t, w).Questions, 1)

	w = s.do(t, http.MethodPost, "/api/v1/extract/text", services.ParseTextRequest{Text: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/extract/generate", services.GenerateQuestionsRequest{Topic: "Go", Count: 2})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text notes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/file", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

type fakeParser struct {
	claims *casdoorsdk.Claims
	err    error
}

func (p fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	return p.claims, p.err
}

func TestAuthMiddleware(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	claims := &casdoorsdk.Claims{}
	claims.Id = "user-1"
	claims.Name = "alice"

	tests := []struct {
		name   string
		header string
		parser TokenParser
		status int
	}{
		{name: "missing header", parser: fakeParser{claims: claims}, status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", parser: fakeParser{claims: claims}, status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", parser: fakeParser{err: errors.New("bad signature")}, status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", parser: fakeParser{claims: claims}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(tt.parser, logger))
			router.GET("/me", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"user_id": c.GetString("user_id"),
					"ctx":     services.UserID(c.Request.Context()),
				})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				body := decode[map[string]string](t, w)
				assert.Equal(t, "user-1", body["user_id"])
				assert.Equal(t, "user-1", body["ctx"])
			}
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t, AuthMiddleware(fakeParser{err: errors.New("nope")}, utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/banks", nil).Code)
}
