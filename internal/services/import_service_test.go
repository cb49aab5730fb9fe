package services

import (
	"fmt"
	"strings"
	"testing"

	"crm-backend/internal/models"
)

func TestParseReadsHeadersAndRows(t *testing.T) {
	csv := "First Name,Last Name,Email\nJane,Doe,jane@example.com\nJohn,Smith,john@example.com\n"

	svc := NewImportService(nil)
	result, err := svc.Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(result.Headers))
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[0]["Email"] != "jane@example.com" {
		t.Errorf("row 0 email: got %q", result.Rows[0]["Email"])
	}
}

func TestParseToleratesRaggedRows(t *testing.T) {
	csv := "First Name,Last Name,Email\nJane,Doe\n"

	svc := NewImportService(nil)
	result, err := svc.Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Rows[0]["Email"] != "" {
		t.Errorf("missing cell should map to empty string, got %q", result.Rows[0]["Email"])
	}
}

func TestParseRejectsHeaderOnlyFile(t *testing.T) {
	svc := NewImportService(nil)
	if _, err := svc.Parse(strings.NewReader("First Name,Last Name,Email\n")); err == nil {
		t.Fatal("expected error for file with no data rows")
	}
}

func TestParseRejectsEmptyFile(t *testing.T) {
	svc := NewImportService(nil)
	if _, err := svc.Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestSuggestMapping(t *testing.T) {
	mapping := SuggestMapping([]string{"First Name", "Last Name", "Email Address", "Mobile", "Business Name", "Street Address", "City", "State", "Postal Code", "Comments"})

	want := map[string]string{
		models.ImportFieldFirstName:     "First Name",
		models.ImportFieldLastName:      "Last Name",
		models.ImportFieldEmail:         "Email Address",
		models.ImportFieldPhone:         "Mobile",
		models.ImportFieldCompanyName:   "Business Name",
		models.ImportFieldAddressStreet: "Street Address",
		models.ImportFieldAddressCity:   "City",
		models.ImportFieldAddressState:  "State",
		models.ImportFieldAddressZip:    "Postal Code",
		models.ImportFieldNotes:         "Comments",
	}
	for field, header := range want {
		if mapping[field] != header {
			t.Errorf("%s: got %q, want %q", field, mapping[field], header)
		}
	}
}

func TestSuggestMappingFirstMatchWins(t *testing.T) {
	mapping := SuggestMapping([]string{"Email", "Backup Email"})
	if mapping[models.ImportFieldEmail] != "Email" {
		t.Errorf("got %q, want the first matching column", mapping[models.ImportFieldEmail])
	}
}

func TestSuggestMappingUnknownHeadersUnmapped(t *testing.T) {
	mapping := SuggestMapping([]string{"Thing", "Widget Count"})
	if len(mapping) != 0 {
		t.Errorf("expected no suggestions, got %v", mapping)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	mapping := models.ImportMapping{
		models.ImportFieldFirstName: "First",
		models.ImportFieldEmail:     "Email",
	}
	missing := MissingRequiredFields(mapping)
	if len(missing) != 1 || missing[0] != models.ImportFieldLastName {
		t.Errorf("got %v, want [last_name]", missing)
	}

	mapping[models.ImportFieldLastName] = "Last"
	if missing := MissingRequiredFields(mapping); len(missing) != 0 {
		t.Errorf("expected no missing fields, got %v", missing)
	}
}

func TestValidateReportsRowErrors(t *testing.T) {
	mapping := models.ImportMapping{
		models.ImportFieldFirstName: "First",
		models.ImportFieldLastName:  "Last",
		models.ImportFieldEmail:     "Email",
	}
	rows := []models.ImportRow{
		{"First": "Jane", "Last": "Doe", "Email": "jane@example.com"},
		{"First": "", "Last": "Smith", "Email": "not-an-email"},
	}

	svc := NewImportService(nil)
	result := svc.Validate(&models.ValidateImportRequest{Rows: rows, Mapping: mapping})

	if result.RowCount != 2 {
		t.Errorf("row count: got %d, want 2", result.RowCount)
	}
	if result.ErrorRowCount != 1 {
		t.Errorf("error row count: got %d, want 1", result.ErrorRowCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors (missing first name, bad email), got %d", len(result.Errors))
	}
	for _, e := range result.Errors {
		if e.Row != 2 {
			t.Errorf("error row number: got %d, want 2", e.Row)
		}
	}
	if len(result.Sample) != 1 || result.Sample[0].FirstName != "Jane" {
		t.Errorf("sample should contain only the valid row, got %+v", result.Sample)
	}
}

func TestValidateSampleCapped(t *testing.T) {
	mapping := models.ImportMapping{
		models.ImportFieldFirstName: "First",
		models.ImportFieldLastName:  "Last",
		models.ImportFieldEmail:     "Email",
	}
	var rows []models.ImportRow
	for i := 0; i < 20; i++ {
		rows = append(rows, models.ImportRow{
			"First": "A", "Last": "B", "Email": fmt.Sprintf("a%d@example.com", i),
		})
	}

	svc := NewImportService(nil)
	result := svc.Validate(&models.ValidateImportRequest{Rows: rows, Mapping: mapping})
	if len(result.Sample) != importSampleSize {
		t.Errorf("sample size: got %d, want %d", len(result.Sample), importSampleSize)
	}
}

func TestDedupeBatch(t *testing.T) {
	var batch []*models.Customer
	for i := 0; i < 500; i++ {
		batch = append(batch, &models.Customer{Email: fmt.Sprintf("c%d@example.com", i)})
	}
	// Repeat three earlier emails, one differing only in case.
	batch[100].Email = "c1@example.com"
	batch[200].Email = "C2@EXAMPLE.COM"
	batch[300].Email = "c3@example.com"

	kept, dropped := DedupeBatch(batch)
	if dropped != 3 {
		t.Errorf("dropped: got %d, want 3", dropped)
	}
	if len(kept) != 497 {
		t.Errorf("kept: got %d, want 497", len(kept))
	}
}

func TestDedupeBatchSharedEmailKeepsFirst(t *testing.T) {
	var batch []*models.Customer
	for i := 0; i < 500; i++ {
		batch = append(batch, &models.Customer{Email: fmt.Sprintf("c%d@example.com", i)})
	}
	// Three rows share one address: only the first survives.
	batch[50].Email = "shared@example.com"
	batch[150].Email = "shared@example.com"
	batch[250].Email = "Shared@Example.com"

	kept, dropped := DedupeBatch(batch)
	if dropped != 2 {
		t.Errorf("dropped: got %d, want 2", dropped)
	}
	if len(kept) != 498 {
		t.Errorf("kept: got %d, want 498", len(kept))
	}
	if kept[50].Email != "shared@example.com" {
		t.Errorf("first occurrence should survive, got %q", kept[50].Email)
	}
}

func TestDedupeBatchBlankEmailsAlwaysKept(t *testing.T) {
	batch := []*models.Customer{
		{FirstName: "A", Email: ""},
		{FirstName: "B", Email: ""},
		{FirstName: "C", Email: ""},
	}
	kept, dropped := DedupeBatch(batch)
	if dropped != 0 || len(kept) != 3 {
		t.Errorf("blank emails must never count as duplicates: kept %d, dropped %d", len(kept), dropped)
	}
}

func TestSampleTemplateMatchesSuggestedMapping(t *testing.T) {
	svc := NewImportService(nil)
	result, err := svc.Parse(strings.NewReader(SampleTemplate()))
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if missing := MissingRequiredFields(result.SuggestedMapping); len(missing) != 0 {
		t.Errorf("template headers should map all required fields, missing %v", missing)
	}
}
