package table

import "errors"

// Failure is the reason a table operation was refused. The document is
// left unchanged.
type Failure string

func (f Failure) Error() string { return string(f) }

// Failure reasons.
const (
	ErrMinColumns    Failure = "min_columns"
	ErrNoDataRows    Failure = "no_data_rows"
	ErrTableNotFound Failure = "table_not_found"
	ErrNotInTable    Failure = "not_in_table"
)

// Message returns a user-facing description of a failure reason.
func Message(err error) string {
	var f Failure
	if !errors.As(err, &f) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch f {
	case ErrMinColumns:
		return "A table needs at least one column."
	case ErrNoDataRows:
		return "The table has no data rows to remove."
	case ErrTableNotFound:
		return "No table found at the cursor."
	case ErrNotInTable:
		return "The cursor is not inside a table."
	}
	return string(f)
}
