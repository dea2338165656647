// Form and query parsing shared by the HTML handlers and the JSON API.
// Validation failures come back as per-field messages so both surfaces can
// report exactly which input was wrong.

package http

import (
	"net/url"

	"kharcha/internal/core"
)

// FieldErrors maps input field names to validation messages.
type FieldErrors map[string]string

func (fe FieldErrors) add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

// Empty reports whether validation passed.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// parseExpenseInput builds an expense from form-style values. A missing date
// defaults to today; an empty category falls back to "other".
func parseExpenseInput(get func(string) string) (core.Expense, FieldErrors) {
	fieldErrs := FieldErrors{}

	e := core.Expense{
		Title:       sanitizeInput(get("title")),
		Description: sanitizeInput(get("description")),
	}

	if e.Title == "" {
		fieldErrs.add("title", "title is required")
	} else if len(e.Title) > core.MaxTitleLength {
		fieldErrs.add("title", "title is too long")
	}

	amountStr := sanitizeInput(get("amount"))
	if amountStr == "" {
		fieldErrs.add("amount", "amount is required")
	} else if cents, err := core.ParseDecimalToCents(amountStr); err != nil {
		fieldErrs.add("amount", "amount must be a positive number")
	} else {
		e.Amount = core.Money{Cents: cents}
	}

	cat, err := core.ParseCategory(get("category"))
	if err != nil {
		fieldErrs.add("category", "unknown category")
	} else {
		e.Category = cat
	}

	if v := sanitizeInput(get("date")); v == "" {
		e.Date = core.Today()
	} else if d, err := core.ParseDate(v); err != nil {
		fieldErrs.add("date", "date must be YYYY-MM-DD")
	} else {
		e.Date = d
	}

	return e, fieldErrs
}

// parseIncomeInput mirrors parseExpenseInput for income records, which carry
// no category.
func parseIncomeInput(get func(string) string) (core.Income, FieldErrors) {
	fieldErrs := FieldErrors{}

	in := core.Income{
		Title:       sanitizeInput(get("title")),
		Description: sanitizeInput(get("description")),
	}

	if in.Title == "" {
		fieldErrs.add("title", "title is required")
	} else if len(in.Title) > core.MaxTitleLength {
		fieldErrs.add("title", "title is too long")
	}

	amountStr := sanitizeInput(get("amount"))
	if amountStr == "" {
		fieldErrs.add("amount", "amount is required")
	} else if cents, err := core.ParseDecimalToCents(amountStr); err != nil {
		fieldErrs.add("amount", "amount must be a positive number")
	} else {
		in.Amount = core.Money{Cents: cents}
	}

	// Unlike expenses, incomes never default to today: the date must be
	// stated explicitly.
	if v := sanitizeInput(get("date")); v == "" {
		fieldErrs.add("date", "date is required")
	} else if d, err := core.ParseDate(v); err != nil {
		fieldErrs.add("date", "date must be YYYY-MM-DD")
	} else {
		in.Date = d
	}

	return in, fieldErrs
}

// parseFilter reads the q/category/date query parameters. A malformed value
// is reported as a field error rather than silently ignored.
func parseFilter(query url.Values) (core.ExpenseFilter, FieldErrors) {
	fieldErrs := FieldErrors{}
	var f core.ExpenseFilter

	f.Query = sanitizeInput(query.Get("q"))

	if v := sanitizeInput(query.Get("category")); v != "" {
		cat, err := core.ParseCategory(v)
		if err != nil {
			fieldErrs.add("category", "unknown category")
		} else {
			f.Category = cat
		}
	}

	if v := sanitizeInput(query.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			fieldErrs.add("date", "date must be YYYY-MM-DD")
		} else {
			f.Date = d
		}
	}

	return f, fieldErrs
}
