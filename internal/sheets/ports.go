// Package sheets defines the outbound port for the expense backup sheet.
package sheets

import "context"

// BackupRow is one line of the off-site ledger copy.
type BackupRow struct {
	Event       string
	ExpenseID   int64
	Owner       int64
	Date        string
	Title       string
	Amount      float64
	Category    string
	Description string
}

// BackupAppender appends rows to the backup spreadsheet.
type BackupAppender interface {
	AppendRow(ctx context.Context, row BackupRow) error
}
