package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidTable     = errors.New("invalid table name")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidLocalID   = errors.New("invalid local id")
	ErrInvalidCompanyID = errors.New("invalid company id")
	ErrInvalidFieldName = errors.New("invalid field name")
	ErrInvalidLimit     = errors.New("limit must not be negative")
	ErrEmptyRecordID    = errors.New("record id is required")
	ErrEmptyRecords     = errors.New("records list cannot be empty")
)
