package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
)

// pathID extracts the trailing numeric id from paths like /expenses/edit/42.
func pathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type editExpenseData struct {
	Flash      *Flash
	Errors     FieldErrors
	Expense    core.Expense
	Categories []core.Category
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/expenses/edit/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleEditExpenseGet(w, r, id)
	case http.MethodPost:
		s.handleEditExpensePost(w, r, id)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEditExpenseGet(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	owner := userID(ctx)

	expense, err := s.store.GetExpense(ctx, owner, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "Get expense failed", applog.FieldError, err, applog.FieldExpenseID, id)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	// XHR callers edit inline and want the entity as JSON.
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, toExpenseJSON(expense))
		return
	}

	s.render(w, r, "edit_expense.html", editExpenseData{
		Flash:      popFlash(w, r),
		Expense:    expense,
		Categories: core.Categories,
	})
}

func (s *Server) handleEditExpensePost(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	owner := userID(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	updated, fieldErrs := parseExpenseInput(r.Form.Get)
	if !fieldErrs.Empty() {
		current, err := s.store.GetExpense(ctx, owner, id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		s.render(w, r, "edit_expense.html", editExpenseData{
			Errors:     fieldErrs,
			Expense:    current,
			Categories: core.Categories,
		})
		return
	}

	updated.ID = id
	updated.Owner = owner
	if err := s.store.UpdateExpense(ctx, updated); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "Update expense failed", applog.FieldError, err, applog.FieldExpenseID, id)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "Expense updated",
		applog.FieldUserID, owner,
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpUpdate)
	setFlash(w, "success", "Expense updated.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	owner := userID(ctx)

	id, ok := pathID(r.URL.Path, "/expenses/delete/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Load before deleting so the event carries the full record.
	expense, err := s.store.GetExpense(ctx, owner, id)
	if err != nil {
		s.replyDeleteError(w, r, err, applog.FieldExpenseID, id)
		return
	}

	if err := s.store.DeleteExpense(ctx, owner, id); err != nil {
		s.replyDeleteError(w, r, err, applog.FieldExpenseID, id)
		return
	}

	if err := s.publisher.PublishExpenseDeleted(ctx, expense); err != nil {
		slog.WarnContext(ctx, "Expense event publish failed",
			applog.FieldError, err,
			applog.FieldExpenseID, id)
	}

	slog.InfoContext(ctx, "Expense deleted",
		applog.FieldUserID, owner,
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpDelete)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
		return
	}
	setFlash(w, "success", "Expense deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) replyDeleteError(w http.ResponseWriter, r *http.Request, err error, idField string, id int64) {
	if errors.Is(err, storage.ErrNotFound) {
		if wantsJSON(r) {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		http.NotFound(w, r)
		return
	}
	slog.ErrorContext(r.Context(), "Delete failed", applog.FieldError, err, idField, id)
	if wantsJSON(r) {
		writeJSONError(w, http.StatusInternalServerError, "storage error")
		return
	}
	http.Error(w, "storage error", http.StatusInternalServerError)
}

// wantsJSON detects XHR/fetch callers that expect JSON instead of a redirect.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
