package core

import "strings"

// ExpenseFilter narrows an expense collection. Zero-valued fields are
// no-ops; set fields combine with logical AND.
type ExpenseFilter struct {
	// Query matches as a case-insensitive substring of title or description.
	Query string
	// Category matches exactly when non-empty.
	Category Category
	// Date matches the exact calendar day when non-zero.
	Date Date
}

// IsZero reports whether the filter passes everything through.
func (f ExpenseFilter) IsZero() bool {
	return f.Query == "" && f.Category == "" && f.Date.IsZero()
}

// Matches reports whether a single expense satisfies every set predicate.
func (f ExpenseFilter) Matches(e Expense) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		title := strings.ToLower(e.Title)
		desc := strings.ToLower(e.Description)
		if !strings.Contains(title, q) && !strings.Contains(desc, q) {
			return false
		}
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.Date.IsZero() && !e.Date.SameDay(f.Date) {
		return false
	}
	return true
}

// Apply returns the matching expenses ordered by date descending (most
// recent first, ties by id descending), regardless of which predicates are
// set. The input slice is never mutated.
func (f ExpenseFilter) Apply(expenses []Expense) []Expense {
	matched := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}
	return sortByDateDesc(matched)
}
