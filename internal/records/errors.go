package records

import "errors"

var (
	// ErrNoRecords means the document holds no usable records: the records
	// key is absent or empty, or the table has no data rows.
	ErrNoRecords = errors.New("no records")
	// ErrMissingIDColumn means a CSV header has no id column.
	ErrMissingIDColumn = errors.New("missing id column")
	// ErrUnexpectedShape means the JSON parsed but is not an export object.
	ErrUnexpectedShape = errors.New("unexpected document shape")
)
