package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	applog "kharcha/internal/log"
)

// handleAPIExpenses serves the JSON surface: GET lists the caller's expenses
// newest first (honouring q/category/date filters), POST creates one.
func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAPIListExpenses(w, r)
	case http.MethodPost:
		s.handleAPICreateExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAPIListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userID(ctx)

	filter, fieldErrs := parseFilter(r.URL.Query())
	if !fieldErrs.Empty() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
		return
	}

	expenses, err := s.store.ListExpenses(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "List expenses failed", applog.FieldError, err, applog.FieldUserID, owner)
		writeJSONError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if !filter.IsZero() {
		expenses = filter.Apply(expenses)
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userID(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	expense, fieldErrs := parseExpenseInput(func(key string) string {
		return stringValue(fields[key])
	})
	if !fieldErrs.Empty() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
		return
	}
	expense.Owner = owner

	if err := s.store.CreateExpense(ctx, &expense); err != nil {
		slog.ErrorContext(ctx, "Create expense failed", applog.FieldError, err, applog.FieldUserID, owner)
		writeJSONError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if err := s.publisher.PublishExpenseCreated(ctx, expense); err != nil {
		slog.WarnContext(ctx, "Expense event publish failed",
			applog.FieldError, err,
			applog.FieldExpenseID, expense.ID)
	}

	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

// stringValue renders a decoded JSON value back as form-style text. Numbers
// keep full precision so amounts round-trip into the decimal parser.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
