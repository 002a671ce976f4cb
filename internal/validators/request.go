package validators

import (
	"context"
	"regexp"
	"strings"

	"github.com/MKhiriev/go-offline-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldTable targets the collection name.
	FieldTable = "table"

	// FieldOperation targets the kind of a queued mutation.
	FieldOperation = "operation"

	// FieldLocalID targets the caller supplied idempotency token.
	FieldLocalID = "local_id"

	// FieldCompanyID targets the company scope.
	FieldCompanyID = "company_id"

	// FieldFilter targets the ordering, field predicates and limit of a read.
	FieldFilter = "filter"

	// FieldRecords targets a batch of records to commit.
	FieldRecords = "records"

	// FieldNonEmpty additionally rejects an empty record batch.
	FieldNonEmpty = "non_empty"
)

const maxTokenLen = 128

var (
	tableNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)
	fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)
)

// RequestValidator validates EnqueueRequest, ReadRequest and record batches.
type RequestValidator struct{}

func NewRequestValidator() Validator {
	return &RequestValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted. Returns ErrUnsupportedType for anything else.
func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.EnqueueRequest:
		return v.validateEnqueueRequest(ctx, value, fields...)
	case *models.EnqueueRequest:
		return v.validateEnqueueRequest(ctx, *value, fields...)

	case models.ReadRequest:
		return v.validateReadRequest(ctx, value, fields...)
	case *models.ReadRequest:
		return v.validateReadRequest(ctx, *value, fields...)

	case []models.Record:
		return v.validateRecords(ctx, value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateEnqueueRequest checks table, operation, local_id and company_id by
// default. Payload shape belongs to the caller.
func (v *RequestValidator) validateEnqueueRequest(_ context.Context, req models.EnqueueRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldOperation, FieldLocalID, FieldCompanyID}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !IsTableName(req.Table) {
				return ErrInvalidTable
			}
		case FieldOperation:
			if !req.Operation.Valid() {
				return ErrInvalidOperation
			}
		case FieldLocalID:
			if req.LocalID != "" && !isToken(req.LocalID) {
				return ErrInvalidLocalID
			}
		case FieldCompanyID:
			if req.CompanyID != "" && !isToken(req.CompanyID) {
				return ErrInvalidCompanyID
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RequestValidator) validateReadRequest(_ context.Context, req models.ReadRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldCompanyID, FieldFilter}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !IsTableName(req.Table) {
				return ErrInvalidTable
			}
		case FieldCompanyID:
			if req.CompanyID != "" && !isToken(req.CompanyID) {
				return ErrInvalidCompanyID
			}
		case FieldFilter:
			if err := validateFilter(req.Filter); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateFilter(filter models.Filter) error {
	if filter.Limit < 0 {
		return ErrInvalidLimit
	}
	if filter.OrderBy != "" && !fieldNameRe.MatchString(filter.OrderBy) {
		return ErrInvalidFieldName
	}
	for name := range filter.Fields {
		if !fieldNameRe.MatchString(name) {
			return ErrInvalidFieldName
		}
	}
	for _, id := range filter.IDs {
		if id == "" {
			return ErrEmptyRecordID
		}
	}
	return nil
}

// validateRecords checks that every record carries an id. An empty batch is
// valid unless FieldNonEmpty is requested.
func (v *RequestValidator) validateRecords(_ context.Context, records []models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRecords}
	}

	for _, f := range fields {
		switch f {
		case FieldRecords:
			for _, record := range records {
				if strings.TrimSpace(record.ID) == "" {
					return ErrEmptyRecordID
				}
			}
		case FieldNonEmpty:
			if len(records) == 0 {
				return ErrEmptyRecords
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// IsTableName reports whether name is a lowercase identifier usable as a
// collection name.
func IsTableName(name string) bool {
	return tableNameRe.MatchString(name)
}

func isToken(s string) bool {
	return len(s) <= maxTokenLen && !strings.ContainsAny(s, " \t\r\n/?#")
}
