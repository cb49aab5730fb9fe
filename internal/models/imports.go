package models

// Customer fields recognized by the CSV import mapper.
const (
	ImportFieldFirstName     = "first_name"
	ImportFieldLastName      = "last_name"
	ImportFieldEmail         = "email"
	ImportFieldPhone         = "phone"
	ImportFieldCompanyName   = "company_name"
	ImportFieldAddressStreet = "address_street"
	ImportFieldAddressCity   = "address_city"
	ImportFieldAddressState  = "address_state"
	ImportFieldAddressZip    = "address_zip"
	ImportFieldNotes         = "notes"
)

// ImportFields lists every mappable customer field, in display order.
var ImportFields = []string{
	ImportFieldFirstName,
	ImportFieldLastName,
	ImportFieldEmail,
	ImportFieldPhone,
	ImportFieldCompanyName,
	ImportFieldAddressStreet,
	ImportFieldAddressCity,
	ImportFieldAddressState,
	ImportFieldAddressZip,
	ImportFieldNotes,
}

// RequiredImportFields must each have a column mapped before the import can
// proceed past the mapping stage.
var RequiredImportFields = []string{
	ImportFieldFirstName,
	ImportFieldLastName,
	ImportFieldEmail,
}

// ImportRow is one parsed CSV record, keyed by header name.
type ImportRow map[string]string

// ImportMapping maps a customer field to the CSV column feeding it. Columns
// absent from the mapping are skipped.
type ImportMapping map[string]string

// ParseResult is returned by the upload stage.
type ParseResult struct {
	Headers          []string      `json:"headers"`
	Rows             []ImportRow   `json:"rows"`
	SuggestedMapping ImportMapping `json:"suggested_mapping"`
	ArchiveKey       string        `json:"archive_key,omitempty"`
}

// RowError is a validation failure for one row.
type RowError struct {
	Row     int    `json:"row"` // 1-based data row number
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateImportRequest represents the request body for the preview stage
type ValidateImportRequest struct {
	Rows    []ImportRow   `json:"rows"`
	Mapping ImportMapping `json:"mapping"`
}

// ValidationResult is returned by the preview stage.
type ValidationResult struct {
	MissingRequired []string                 `json:"missing_required"`
	Errors          []RowError               `json:"errors"`
	Sample          []*CreateCustomerRequest `json:"sample"`
	RowCount        int                      `json:"row_count"`
	ErrorRowCount   int                      `json:"error_row_count"`
}

// RunImportRequest represents the request body for the import stage
type RunImportRequest struct {
	Rows        []ImportRow   `json:"rows"`
	Mapping     ImportMapping `json:"mapping"`
	SkipInvalid bool          `json:"skip_invalid"`
}

// ImportSummary carries the running totals accumulated across all batches.
type ImportSummary struct {
	ImportedCount int `json:"importedCount"`
	ErrorCount    int `json:"errorCount"`
	Duplicates    int `json:"duplicates"`
	SkippedCount  int `json:"skippedCount"`
}
