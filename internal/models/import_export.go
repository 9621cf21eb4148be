package models

// BankExport is the JSON document produced by a bank export and accepted by import.
type BankExport struct {
	BankName   string     `json:"bankName"`
	ExportDate string     `json:"exportDate"`
	Questions  []Question `json:"questions"`
}

// ImportedNameSuffix marks the provenance of banks created by an import.
const ImportedNameSuffix = " (Imported)"

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// ImportSummary reports the outcome of a spreadsheet question import.
type ImportSummary struct {
	TotalRows     int                     `json:"total_rows"`
	ProcessedRows int                     `json:"processed_rows"`
	SuccessCount  int                     `json:"success_count"`
	ErrorCount    int                     `json:"error_count"`
	Questions     []Question              `json:"questions,omitempty"`
	Errors        []ImportValidationError `json:"errors"`
}
