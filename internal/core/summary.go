package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// The aggregation engine. Every function here is a pure computation over a
// snapshot of one owner's records: no I/O, no caching, recomputed on every
// read. Division is always guarded, so no operation can fail.

// Record is the common shape of Expense and Income for amount aggregation.
type Record interface {
	RecordAmount() Money
	RecordDate() Date
}

func (e Expense) RecordAmount() Money { return e.Amount }
func (e Expense) RecordDate() Date    { return e.Date }
func (i Income) RecordAmount() Money  { return i.Amount }
func (i Income) RecordDate() Date     { return i.Date }

// CategoryShare is one category's slice of the total spend. Percentage is
// the category's share of the grand total, rounded half-up to two decimal
// places; only categories actually present in the input appear.
type CategoryShare struct {
	Category   Category
	Amount     Money
	Percentage decimal.Decimal
}

// DashboardSummary backs the dashboard view.
type DashboardSummary struct {
	TotalAmount        Money
	TotalIncome        Money
	MonthlyTotal       Money
	MonthlyIncomeTotal Money
	CategoryCount      int
}

// OverviewSummary backs the analytics view.
type OverviewSummary struct {
	Breakdown      []CategoryShare
	TotalAmount    Money
	AverageAmount  Money
	RecentExpenses []Expense
	ExpenseCount   int
}

const recentExpenseLimit = 5

// TotalAmount sums the amounts of a record sequence; 0 for an empty one.
func TotalAmount[R Record](records []R) Money {
	var cents int64
	for _, r := range records {
		cents += r.RecordAmount().Cents
	}
	return Money{Cents: cents}
}

// MonthlyTotal sums the amounts whose date falls in the given calendar
// month (1-12) and year.
func MonthlyTotal[R Record](records []R, month, year int) Money {
	var cents int64
	for _, r := range records {
		if r.RecordDate().In(month, year) {
			cents += r.RecordAmount().Cents
		}
	}
	return Money{Cents: cents}
}

// CategoryBreakdown groups expenses by category and computes each group's
// amount and share of the grand total. Shares are 0 for every category when
// the total is 0. Groups are ordered by amount descending, ties by category
// name, so template output is deterministic.
func CategoryBreakdown(expenses []Expense) []CategoryShare {
	totals := make(map[Category]int64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount.Cents
	}

	grand := TotalAmount(expenses)
	shares := make([]CategoryShare, 0, len(totals))
	for cat, cents := range totals {
		pct := decimal.Zero
		if grand.Cents > 0 {
			pct = decimal.NewFromInt(cents).
				Mul(decimal.NewFromInt(100)).
				DivRound(decimal.NewFromInt(grand.Cents), 2)
		}
		shares = append(shares, CategoryShare{
			Category:   cat,
			Amount:     Money{Cents: cents},
			Percentage: pct,
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount.Cents != shares[j].Amount.Cents {
			return shares[i].Amount.Cents > shares[j].Amount.Cents
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// AverageAmount is the mean expense amount, rounded half-up to the cent;
// 0 for an empty sequence.
func AverageAmount(expenses []Expense) Money {
	if len(expenses) == 0 {
		return Money{}
	}
	total := TotalAmount(expenses)
	avg := decimal.NewFromInt(total.Cents).
		DivRound(decimal.NewFromInt(int64(len(expenses))), 0)
	return Money{Cents: avg.IntPart()}
}

// DistinctCategoryCount counts the unique categories present.
func DistinctCategoryCount(expenses []Expense) int {
	seen := make(map[Category]struct{})
	for _, e := range expenses {
		seen[e.Category] = struct{}{}
	}
	return len(seen)
}

// RecentExpenses returns the limit most recent expenses by date. Same-date
// records are ordered by id descending, so the later insertion wins ties.
// The input slice is never mutated.
func RecentExpenses(expenses []Expense, limit int) []Expense {
	if limit <= 0 {
		return nil
	}
	sorted := sortByDateDesc(expenses)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BudgetRemaining is the budget amount minus total expenses. It is not
// capped: a negative result means overspend.
func BudgetRemaining(b Budget, expenses []Expense) Money {
	return Money{Cents: b.Amount.Cents - TotalAmount(expenses).Cents}
}

// BudgetSpentPercentage is the share of the budget already spent, rounded
// half-up to two decimals and capped at 100 for display. A zero budget
// yields 0. True overspend is only visible via BudgetRemaining.
func BudgetSpentPercentage(b Budget, expenses []Expense) decimal.Decimal {
	if b.Amount.Cents == 0 {
		return decimal.Zero
	}
	spent := TotalAmount(expenses)
	pct := decimal.NewFromInt(spent.Cents).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(b.Amount.Cents), 2)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// SummarizeDashboard computes the dashboard statistics for one owner's
// records. month/year name the calendar month the "monthly" figures cover,
// normally the current one.
func SummarizeDashboard(expenses []Expense, incomes []Income, month, year int) DashboardSummary {
	return DashboardSummary{
		TotalAmount:        TotalAmount(expenses),
		TotalIncome:        TotalAmount(incomes),
		MonthlyTotal:       MonthlyTotal(expenses, month, year),
		MonthlyIncomeTotal: MonthlyTotal(incomes, month, year),
		CategoryCount:      DistinctCategoryCount(expenses),
	}
}

// SummarizeOverview computes the analytics-page statistics for one owner's
// expenses.
func SummarizeOverview(expenses []Expense) OverviewSummary {
	return OverviewSummary{
		Breakdown:      CategoryBreakdown(expenses),
		TotalAmount:    TotalAmount(expenses),
		AverageAmount:  AverageAmount(expenses),
		RecentExpenses: RecentExpenses(expenses, recentExpenseLimit),
		ExpenseCount:   len(expenses),
	}
}

// sortByDateDesc copies then sorts most-recent-first, ties by id descending.
func sortByDateDesc(expenses []Expense) []Expense {
	sorted := append([]Expense(nil), expenses...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.SameDay(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date.Time)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}
