package services

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"regexp"
	"strings"

	"crm-backend/internal/cache"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/repositories"
)

// importBatchSize bounds memory and keeps individual statements a reasonable
// size; batches are processed strictly sequentially.
const importBatchSize = 500

const importSampleSize = 5

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ImportService struct {
	customerRepo *repositories.CustomerRepository
}

func NewImportService(customerRepo *repositories.CustomerRepository) *ImportService {
	return &ImportService{customerRepo: customerRepo}
}

// Parse reads an uploaded CSV into headers plus row records and suggests a
// column mapping. The first row is the header.
func (s *ImportService) Parse(r io.Reader) (*models.ParseResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate ragged rows; missing cells become ""

	records, err := reader.ReadAll()
	if err != nil {
		return nil, validationErrorf("could not parse CSV file: %v", err)
	}
	if len(records) == 0 {
		return nil, validationErrorf("file is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]models.ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(models.ImportRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, validationErrorf("file has no data rows")
	}

	return &models.ParseResult{
		Headers:          headers,
		Rows:             rows,
		SuggestedMapping: SuggestMapping(headers),
	}, nil
}

// SuggestMapping auto-assigns columns to customer fields using
// case-insensitive substring heuristics. The first matching column wins;
// later columns never steal an already-assigned field.
func SuggestMapping(headers []string) models.ImportMapping {
	mapping := models.ImportMapping{}

	assign := func(field, header string) {
		if _, taken := mapping[field]; !taken {
			mapping[field] = header
		}
	}

	for _, header := range headers {
		h := strings.ToLower(header)
		switch {
		case strings.Contains(h, "first") && strings.Contains(h, "name"),
			h == "first":
			assign(models.ImportFieldFirstName, header)
		case strings.Contains(h, "last") && strings.Contains(h, "name"),
			h == "last", strings.Contains(h, "surname"):
			assign(models.ImportFieldLastName, header)
		case strings.Contains(h, "email"):
			assign(models.ImportFieldEmail, header)
		case strings.Contains(h, "phone") || strings.Contains(h, "mobile"):
			assign(models.ImportFieldPhone, header)
		case strings.Contains(h, "company") || strings.Contains(h, "business"):
			assign(models.ImportFieldCompanyName, header)
		case strings.Contains(h, "street") || strings.Contains(h, "address"):
			assign(models.ImportFieldAddressStreet, header)
		case strings.Contains(h, "city"):
			assign(models.ImportFieldAddressCity, header)
		case strings.Contains(h, "state") || strings.Contains(h, "province"):
			assign(models.ImportFieldAddressState, header)
		case strings.Contains(h, "zip") || strings.Contains(h, "postal"):
			assign(models.ImportFieldAddressZip, header)
		case strings.Contains(h, "note") || strings.Contains(h, "comment"):
			assign(models.ImportFieldNotes, header)
		}
	}
	return mapping
}

// MissingRequiredFields returns the required fields the mapping leaves
// uncovered; a non-empty result blocks advancing past the mapping stage.
func MissingRequiredFields(mapping models.ImportMapping) []string {
	var missing []string
	for _, field := range models.RequiredImportFields {
		if mapping[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate applies the mapping to every row and returns validation errors
// plus a small mapped sample for visual confirmation.
func (s *ImportService) Validate(req *models.ValidateImportRequest) *models.ValidationResult {
	result := &models.ValidationResult{
		MissingRequired: MissingRequiredFields(req.Mapping),
		RowCount:        len(req.Rows),
	}

	errorRows := make(map[int]bool)
	for i, row := range req.Rows {
		rowErrors := validateRow(i+1, row, req.Mapping)
		if len(rowErrors) > 0 {
			errorRows[i] = true
			result.Errors = append(result.Errors, rowErrors...)
		}
	}
	result.ErrorRowCount = len(errorRows)

	for i, row := range req.Rows {
		if len(result.Sample) >= importSampleSize {
			break
		}
		if errorRows[i] {
			continue
		}
		result.Sample = append(result.Sample, mapRow(row, req.Mapping))
	}

	return result
}

func validateRow(rowNum int, row models.ImportRow, mapping models.ImportMapping) []models.RowError {
	var errs []models.RowError

	value := func(field string) string {
		return strings.TrimSpace(row[mapping[field]])
	}

	for _, field := range models.RequiredImportFields {
		if mapping[field] != "" && value(field) == "" {
			errs = append(errs, models.RowError{
				Row:     rowNum,
				Field:   field,
				Message: field + " is required",
			})
		}
	}

	if email := value(models.ImportFieldEmail); email != "" && !emailPattern.MatchString(email) {
		errs = append(errs, models.RowError{
			Row:     rowNum,
			Field:   models.ImportFieldEmail,
			Message: "invalid email format",
		})
	}

	if zip := value(models.ImportFieldAddressZip); zip != "" && len(zip) > 10 {
		errs = append(errs, models.RowError{
			Row:     rowNum,
			Field:   models.ImportFieldAddressZip,
			Message: "zip code too long",
		})
	}

	return errs
}

// mapRow converts one CSV row to a customer payload per the mapping.
func mapRow(row models.ImportRow, mapping models.ImportMapping) *models.CreateCustomerRequest {
	value := func(field string) string {
		return strings.TrimSpace(row[mapping[field]])
	}
	return &models.CreateCustomerRequest{
		FirstName:     value(models.ImportFieldFirstName),
		LastName:      value(models.ImportFieldLastName),
		Email:         value(models.ImportFieldEmail),
		Phone:         value(models.ImportFieldPhone),
		CompanyName:   value(models.ImportFieldCompanyName),
		AddressStreet: value(models.ImportFieldAddressStreet),
		AddressCity:   value(models.ImportFieldAddressCity),
		AddressState:  value(models.ImportFieldAddressState),
		AddressZip:    value(models.ImportFieldAddressZip),
		Notes:         value(models.ImportFieldNotes),
	}
}

// DedupeBatch drops rows that repeat an earlier row's email (case
// insensitive) within the batch, because the bulk upsert statement fails
// outright when one conflict key appears twice. Rows without an email are
// always unique. Returns the kept rows and the number dropped.
func DedupeBatch(batch []*models.Customer) ([]*models.Customer, int) {
	seen := make(map[string]bool, len(batch))
	kept := batch[:0:len(batch)]
	dropped := 0
	for _, c := range batch {
		if c.Email == "" {
			kept = append(kept, c)
			continue
		}
		key := strings.ToLower(c.Email)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}
	return kept, dropped
}

// Run converts rows to customer records and upserts them in sequential
// batches. A batch that fails with a conflict-class error degrades to
// row-at-a-time inserts so duplicate-key failures can be isolated from true
// data errors. Totals accumulate across all batches.
func (s *ImportService) Run(ctx context.Context, userID int, req *models.RunImportRequest) (*models.ImportSummary, error) {
	if missing := MissingRequiredFields(req.Mapping); len(missing) > 0 {
		return nil, validationErrorf("required fields not mapped: %s", strings.Join(missing, ", "))
	}
	if len(req.Rows) == 0 {
		return nil, validationErrorf("no rows to import")
	}

	summary := &models.ImportSummary{}

	var customers []*models.Customer
	for i, row := range req.Rows {
		if rowErrors := validateRow(i+1, row, req.Mapping); len(rowErrors) > 0 {
			if !req.SkipInvalid {
				return nil, validationErrorf("row %d is invalid: %s", i+1, rowErrors[0].Message)
			}
			summary.SkippedCount++
			continue
		}
		mapped := mapRow(row, req.Mapping)
		customers = append(customers, &models.Customer{
			UserID:        userID,
			FirstName:     mapped.FirstName,
			LastName:      mapped.LastName,
			Email:         mapped.Email,
			Phone:         mapped.Phone,
			CompanyName:   mapped.CompanyName,
			AddressStreet: mapped.AddressStreet,
			AddressCity:   mapped.AddressCity,
			AddressState:  mapped.AddressState,
			AddressZip:    mapped.AddressZip,
			Notes:         mapped.Notes,
		})
	}

	for start := 0; start < len(customers); start += importBatchSize {
		end := start + importBatchSize
		if end > len(customers) {
			end = len(customers)
		}
		s.importBatch(ctx, customers[start:end], summary)
	}

	metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(summary.ImportedCount))
	metrics.ImportRowsTotal.WithLabelValues("duplicate").Add(float64(summary.Duplicates))
	metrics.ImportRowsTotal.WithLabelValues("error").Add(float64(summary.ErrorCount))
	metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(summary.SkippedCount))

	cache.InvalidateCustomerList(ctx, userID)
	return summary, nil
}

func (s *ImportService) importBatch(ctx context.Context, batch []*models.Customer, summary *models.ImportSummary) {
	deduped, dropped := DedupeBatch(batch)
	summary.Duplicates += dropped

	err := s.customerRepo.BulkUpsert(ctx, deduped)
	if err == nil {
		summary.ImportedCount += len(deduped)
		return
	}

	if !repositories.IsBatchConflict(err) {
		log.Printf("[Import] batch of %d failed: %v", len(deduped), err)
		summary.ErrorCount += len(deduped)
		return
	}

	// Conflict inside the batch despite dedupe. Degrade to one row at a
	// time so duplicate-key rows can be separated from real data errors.
	for _, c := range deduped {
		switch rowErr := s.customerRepo.Upsert(ctx, c); {
		case rowErr == nil:
			summary.ImportedCount++
		case repositories.IsUniqueViolation(rowErr):
			summary.Duplicates++
		default:
			summary.ErrorCount++
		}
	}
}

// SampleTemplate returns the downloadable CSV template content.
func SampleTemplate() string {
	return strings.Join([]string{
		"First Name,Last Name,Email,Phone,Company,Street,City,State,Zip,Notes",
		"Jane,Doe,jane@example.com,555-0101,Doe Plumbing,12 Main St,Springfield,IL,62701,Prefers mornings",
		"John,Smith,john@example.com,555-0102,,34 Oak Ave,Springfield,IL,62702,",
	}, "\n") + "\n"
}
