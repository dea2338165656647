package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exp(id int64, cat Category, cents int64, date Date) Expense {
	return Expense{ID: id, Owner: 1, Title: "t", Amount: Money{Cents: cents}, Category: cat, Date: date}
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, int64(0), TotalAmount([]Expense{}).Cents)

	expenses := []Expense{
		exp(1, CategoryFood, 10000, NewDate(2025, 1, 1)),
		exp(2, CategoryFood, 5000, NewDate(2025, 1, 2)),
		exp(3, CategoryRent, 20000, NewDate(2025, 1, 3)),
	}
	assert.Equal(t, int64(35000), TotalAmount(expenses).Cents)

	incomes := []Income{
		{ID: 1, Amount: Money{Cents: 1200}, Date: NewDate(2025, 1, 1)},
		{ID: 2, Amount: Money{Cents: 800}, Date: NewDate(2025, 2, 1)},
	}
	assert.Equal(t, int64(2000), TotalAmount(incomes).Cents)
}

func TestCategoryBreakdown(t *testing.T) {
	// food 100 + 50, rent 200, total 350
	expenses := []Expense{
		exp(1, CategoryFood, 10000, NewDate(2025, 1, 1)),
		exp(2, CategoryFood, 5000, NewDate(2025, 1, 2)),
		exp(3, CategoryRent, 20000, NewDate(2025, 1, 3)),
	}

	shares := CategoryBreakdown(expenses)
	require.Len(t, shares, 2)

	// ordered by amount descending
	assert.Equal(t, CategoryRent, shares[0].Category)
	assert.Equal(t, int64(20000), shares[0].Amount.Cents)
	assert.Equal(t, "57.14", shares[0].Percentage.StringFixed(2))

	assert.Equal(t, CategoryFood, shares[1].Category)
	assert.Equal(t, int64(15000), shares[1].Amount.Cents)
	assert.Equal(t, "42.86", shares[1].Percentage.StringFixed(2))
}

func TestCategoryBreakdownEmptyAndZeroTotal(t *testing.T) {
	assert.Empty(t, CategoryBreakdown(nil))
}

func TestMonthlyTotal(t *testing.T) {
	expenses := []Expense{
		exp(1, CategoryFood, 100, NewDate(2025, 6, 1)),
		exp(2, CategoryFood, 200, NewDate(2025, 6, 30)),
		exp(3, CategoryRent, 400, NewDate(2025, 7, 1)),
		exp(4, CategoryRent, 800, NewDate(2024, 6, 15)),
	}
	assert.Equal(t, int64(300), MonthlyTotal(expenses, 6, 2025).Cents)
	assert.Equal(t, int64(400), MonthlyTotal(expenses, 7, 2025).Cents)
	assert.Equal(t, int64(0), MonthlyTotal(expenses, 1, 2025).Cents)
}

func TestAverageAmount(t *testing.T) {
	assert.Equal(t, int64(0), AverageAmount(nil).Cents)

	expenses := []Expense{
		exp(1, CategoryFood, 10000, NewDate(2025, 1, 1)),
		exp(2, CategoryFood, 5000, NewDate(2025, 1, 2)),
		exp(3, CategoryRent, 20000, NewDate(2025, 1, 3)),
	}
	// 35000 / 3 = 11666.67, rounded half-up to the cent
	assert.Equal(t, int64(11667), AverageAmount(expenses).Cents)
}

func TestDistinctCategoryCount(t *testing.T) {
	assert.Equal(t, 0, DistinctCategoryCount(nil))
	expenses := []Expense{
		exp(1, CategoryFood, 100, NewDate(2025, 1, 1)),
		exp(2, CategoryFood, 100, NewDate(2025, 1, 2)),
		exp(3, CategoryRent, 100, NewDate(2025, 1, 3)),
	}
	assert.Equal(t, 2, DistinctCategoryCount(expenses))
}

func TestRecentExpenses(t *testing.T) {
	expenses := []Expense{
		exp(1, CategoryFood, 100, NewDate(2025, 1, 1)),
		exp(2, CategoryFood, 100, NewDate(2025, 3, 1)),
		exp(3, CategoryFood, 100, NewDate(2025, 2, 1)),
		exp(4, CategoryFood, 100, NewDate(2025, 3, 1)), // same day as #2, higher id wins
	}

	recent := RecentExpenses(expenses, 3)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(4), recent[0].ID)
	assert.Equal(t, int64(2), recent[1].ID)
	assert.Equal(t, int64(3), recent[2].ID)

	// input order untouched
	assert.Equal(t, int64(1), expenses[0].ID)

	assert.Nil(t, RecentExpenses(expenses, 0))
	assert.Len(t, RecentExpenses(expenses, 10), 4)
}

func TestBudgetRemaining(t *testing.T) {
	b := Budget{Amount: Money{Cents: 100000}}
	expenses := []Expense{exp(1, CategoryRent, 120000, NewDate(2025, 1, 1))}

	// overspend is visible as a negative remainder
	assert.Equal(t, int64(-20000), BudgetRemaining(b, expenses).Cents)
	assert.Equal(t, int64(100000), BudgetRemaining(b, nil).Cents)
}

func TestBudgetSpentPercentage(t *testing.T) {
	b := Budget{Amount: Money{Cents: 100000}}

	// overspend is capped at 100 for display
	over := []Expense{exp(1, CategoryRent, 120000, NewDate(2025, 1, 1))}
	assert.True(t, BudgetSpentPercentage(b, over).Equal(decimal.NewFromInt(100)))

	half := []Expense{exp(1, CategoryRent, 50000, NewDate(2025, 1, 1))}
	assert.Equal(t, "50.00", BudgetSpentPercentage(b, half).StringFixed(2))

	// zero budget never divides
	zero := Budget{Amount: Money{Cents: 0}}
	some := []Expense{exp(1, CategoryFood, 5000, NewDate(2025, 1, 1))}
	assert.True(t, BudgetSpentPercentage(zero, some).IsZero())

	assert.True(t, BudgetSpentPercentage(b, nil).IsZero())
}

func TestSummarizeDashboard(t *testing.T) {
	expenses := []Expense{
		exp(1, CategoryFood, 100, NewDate(2025, 6, 1)),
		exp(2, CategoryRent, 200, NewDate(2025, 5, 1)),
	}
	incomes := []Income{
		{ID: 1, Amount: Money{Cents: 1000}, Date: NewDate(2025, 6, 2)},
		{ID: 2, Amount: Money{Cents: 500}, Date: NewDate(2025, 4, 2)},
	}

	s := SummarizeDashboard(expenses, incomes, 6, 2025)
	assert.Equal(t, int64(300), s.TotalAmount.Cents)
	assert.Equal(t, int64(1500), s.TotalIncome.Cents)
	assert.Equal(t, int64(100), s.MonthlyTotal.Cents)
	assert.Equal(t, int64(1000), s.MonthlyIncomeTotal.Cents)
	assert.Equal(t, 2, s.CategoryCount)
}

func TestSummarizeOverview(t *testing.T) {
	var expenses []Expense
	for i := int64(1); i <= 7; i++ {
		expenses = append(expenses, exp(i, CategoryFood, 100*i, NewDate(2025, 1, int(i))))
	}

	s := SummarizeOverview(expenses)
	assert.Equal(t, 7, s.ExpenseCount)
	assert.Len(t, s.RecentExpenses, 5)
	assert.Equal(t, int64(7), s.RecentExpenses[0].ID)
	assert.Equal(t, int64(2800), s.TotalAmount.Cents)
	assert.Equal(t, int64(400), s.AverageAmount.Cents)
	require.Len(t, s.Breakdown, 1)
	assert.Equal(t, "100.00", s.Breakdown[0].Percentage.StringFixed(2))

	empty := SummarizeOverview(nil)
	assert.Zero(t, empty.ExpenseCount)
	assert.Zero(t, empty.TotalAmount.Cents)
	assert.Zero(t, empty.AverageAmount.Cents)
}
