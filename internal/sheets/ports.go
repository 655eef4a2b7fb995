// Package sheets defines the port the mirror worker writes through. The
// google subpackage implements it against the Sheets API; the memory
// subpackage is an in-process implementation for tests.
package sheets

import "context"

// RowAppender appends one row to the mirror sheet.
type RowAppender interface {
	AppendRow(ctx context.Context, values []any) error
}
