package http

import (
	"log/slog"
	"net/http"
	"time"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
)

type dashboardData struct {
	Flash    *Flash
	Errors   FieldErrors
	Username string

	Summary core.DashboardSummary
	Budget  core.Budget
	// BudgetRemaining may be negative when overspent.
	BudgetRemaining core.Money
	// BudgetSpentPct is capped at 100 for display.
	BudgetSpentPct string

	Expenses []core.Expense
	Incomes  []core.Income

	Categories []core.Category
	Filter     core.ExpenseFilter
	Filtered   bool
	Today      string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderDashboard(w, r, nil)
	case http.MethodPost:
		s.handleDashboardPost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, formErrs FieldErrors) {
	ctx := r.Context()
	owner := userID(ctx)

	expenses, err := s.store.ListExpenses(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "List expenses failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	incomes, err := s.store.ListIncomes(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "List incomes failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	budget, err := s.store.GetOrCreateBudget(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "Budget load failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	filter, filterErrs := parseFilter(r.URL.Query())
	visible := expenses
	if filterErrs.Empty() && !filter.IsZero() {
		visible = filter.Apply(expenses)
	}

	errs := FieldErrors{}
	for k, v := range filterErrs {
		errs.add(k, v)
	}
	for k, v := range formErrs {
		errs.add(k, v)
	}

	var username string
	if user, err := s.store.GetUser(ctx, owner); err == nil {
		username = user.Username
	}

	// Statistics follow the active filters: the expense-derived figures are
	// computed over the same rows the table shows. Incomes and the budget
	// aggregates stay unfiltered.
	now := time.Now()
	summary := core.SummarizeDashboard(visible, incomes, int(now.Month()), now.Year())

	data := dashboardData{
		Flash:           popFlash(w, r),
		Errors:          errs,
		Username:        username,
		Summary:         summary,
		Budget:          budget,
		BudgetRemaining: core.BudgetRemaining(budget, expenses),
		BudgetSpentPct:  core.BudgetSpentPercentage(budget, expenses).StringFixed(1),
		Expenses:        visible,
		Incomes:         incomes,
		Categories:      core.Categories,
		Filter:          filter,
		Filtered:        !filter.IsZero(),
		Today:           core.Today().String(),
	}
	s.render(w, r, "dashboard.html", data)
}

// handleDashboardPost dispatches the three dashboard forms. The submitted
// "form" field names which one: budget, income or expense.
func (s *Server) handleDashboardPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	switch r.Form.Get("form") {
	case "budget":
		s.handleSetBudget(w, r)
	case "income":
		s.handleAddIncome(w, r)
	default:
		s.handleAddExpense(w, r)
	}
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userID(ctx)

	amountStr := sanitizeInput(r.Form.Get("budget_amount"))
	cents, err := core.ParseBudgetToCents(amountStr)
	if err != nil {
		s.renderDashboard(w, r, FieldErrors{"budget_amount": "budget must be zero or a positive number"})
		return
	}

	if _, err := s.store.SetBudget(ctx, owner, cents); err != nil {
		slog.ErrorContext(ctx, "Set budget failed",
			applog.FieldError, err,
			applog.FieldUserID, owner,
			applog.FieldAmountCents, cents)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "Budget updated",
		applog.FieldUserID, owner,
		applog.FieldAmountCents, cents,
		applog.FieldOperation, applog.OpUpdate)
	setFlash(w, "success", "Budget updated.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userID(ctx)

	income, fieldErrs := parseIncomeInput(r.Form.Get)
	if !fieldErrs.Empty() {
		s.renderDashboard(w, r, fieldErrs)
		return
	}
	income.Owner = owner

	if err := s.store.CreateIncome(ctx, &income); err != nil {
		slog.ErrorContext(ctx, "Create income failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "Income recorded.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userID(ctx)

	expense, fieldErrs := parseExpenseInput(r.Form.Get)
	if !fieldErrs.Empty() {
		s.renderDashboard(w, r, fieldErrs)
		return
	}
	expense.Owner = owner

	if err := s.store.CreateExpense(ctx, &expense); err != nil {
		slog.ErrorContext(ctx, "Create expense failed", applog.FieldError, err, applog.FieldUserID, owner)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	if err := s.publisher.PublishExpenseCreated(ctx, expense); err != nil {
		// The expense is saved; the backup sync catches up later.
		slog.WarnContext(ctx, "Expense event publish failed",
			applog.FieldError, err,
			applog.FieldExpenseID, expense.ID)
	}

	setFlash(w, "success", "Expense recorded.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	owner := userID(ctx)

	id, ok := pathID(r.URL.Path, "/incomes/delete/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := s.store.DeleteIncome(ctx, owner, id); err != nil {
		s.replyDeleteError(w, r, err, applog.FieldIncomeID, id)
		return
	}

	setFlash(w, "success", "Income deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
