package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/gin-gonic/gin"
)

// ServiceSet is everything the HTTP layer calls into.
type ServiceSet struct {
	Banks        services.BankService
	Exams        services.ExamService
	History      services.HistoryService
	ImportExport services.ImportExportService
	Extraction   services.ExtractionService
}

type HandlerManager struct {
	bankHandler         *BankHandler
	examHandler         *ExamHandler
	historyHandler      *HistoryHandler
	importExportHandler *ImportExportHandler
	extractionHandler   *ExtractionHandler
	logger              utils.Logger
}

func NewHandlerManager(svc ServiceSet, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		bankHandler:         NewBankHandler(svc.Banks, logger),
		examHandler:         NewExamHandler(svc.Exams, logger),
		historyHandler:      NewHistoryHandler(svc.History, svc.ImportExport, logger),
		importExportHandler: NewImportExportHandler(svc.ImportExport, logger),
		extractionHandler:   NewExtractionHandler(svc.Extraction, logger),
		logger:              logger,
	}
}

// SetupRoutes sets up all API routes. A nil auth handler leaves the API open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-studio",
		})
	})

	v1 := router.Group("/api/v1")
	if auth != nil {
		v1.Use(auth)
	}
	{
		banks := v1.Group("/banks")
		{
			banks.GET("", hm.bankHandler.ListBanks)
			banks.POST("", hm.bankHandler.CreateBank)
			banks.PUT("", hm.bankHandler.ReplaceBanks)
			banks.POST("/import", hm.importExportHandler.ImportBank)
			banks.GET("/:id", hm.bankHandler.GetBank)
			banks.PUT("/:id", hm.bankHandler.RenameBank)
			banks.DELETE("/:id", hm.bankHandler.DeleteBank)

			banks.POST("/:id/questions", hm.bankHandler.AddQuestions)
			banks.PUT("/:id/questions/:question_id", hm.bankHandler.SaveQuestion)
			banks.DELETE("/:id/questions/:question_id", hm.bankHandler.DeleteQuestion)

			banks.GET("/:id/export", hm.importExportHandler.ExportBank)
			banks.GET("/:id/export.xlsx", hm.importExportHandler.ExportBankXLSX)
			banks.POST("/:id/import.xlsx", hm.importExportHandler.ImportQuestionsXLSX)
		}

		extract := v1.Group("/extract")
		{
			extract.POST("/text", hm.extractionHandler.ParseText)
			extract.POST("/file", hm.extractionHandler.ParseFile)
			extract.POST("/generate", hm.extractionHandler.GenerateQuestions)
		}

		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.StartExam)
			exams.GET("/:sid", hm.examHandler.GetExam)
			exams.DELETE("/:sid", hm.examHandler.AbandonExam)
			exams.POST("/:sid/options", hm.examHandler.SelectOption)
			exams.POST("/:sid/dropdowns", hm.examHandler.SetDropdownValue)
			exams.POST("/:sid/drag-item", hm.examHandler.SelectDragItem)
			exams.POST("/:sid/drop-zones", hm.examHandler.ClickDropZone)
			exams.POST("/:sid/flag", hm.examHandler.ToggleFlag)
			exams.POST("/:sid/reveal", hm.examHandler.Reveal)
			exams.POST("/:sid/navigate", hm.examHandler.Navigate)
			exams.POST("/:sid/submit", hm.examHandler.SubmitExam)
		}

		history := v1.Group("/history")
		{
			history.GET("", hm.historyHandler.ListResults)
			history.GET("/export.xlsx", hm.historyHandler.ExportHistory)
			history.GET("/:id", hm.historyHandler.GetResult)
			history.DELETE("/:id", hm.historyHandler.DeleteResult)
		}
	}
}

// NewRouter builds the gin engine with the shared middleware chain.
func NewRouter(hm *HandlerManager, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(utils.ContextLogger(hm.logger))
	router.MaxMultipartMemory = 32 << 20

	hm.SetupRoutes(router, auth)
	return router
}
