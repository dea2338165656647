package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

func seedRecords(t *testing.T, env *testEnv, owner int64) {
	t.Helper()
	ctx := context.Background()

	expenses := []core.Expense{
		{Owner: owner, Title: "Groceries", Amount: core.Money{Cents: 45000}, Category: core.CategoryFood, Date: core.NewDate(2026, 8, 10)},
		{Owner: owner, Title: "Bus pass", Amount: core.Money{Cents: 15000}, Category: core.CategoryTransport, Date: core.NewDate(2026, 8, 12)},
	}
	for i := range expenses {
		require.NoError(t, env.repo.CreateExpense(ctx, &expenses[i]))
	}
	income := core.Income{Owner: owner, Title: "Salary", Amount: core.Money{Cents: 5000000}, Date: core.NewDate(2026, 8, 1)}
	require.NoError(t, env.repo.CreateIncome(ctx, &income))
	_, err := env.repo.SetBudget(ctx, owner, 100000)
	require.NoError(t, err)
}

func getPage(env *testEnv, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	return env.do(req)
}

func TestDashboardPageRenders(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "meera")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Salary")
	assert.Contains(t, body, "₹600.00")  // total spent
	assert.Contains(t, body, "₹1000.00") // budget limit
}

func TestDashboardPageAppliesFilters(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/dashboard?category=food")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Groceries")
	assert.NotContains(t, body, "Bus pass")
	// Expense statistics cover the filtered rows, not the full set.
	assert.Contains(t, body, "₹450.00")
	assert.NotContains(t, body, "₹600.00")
	// Income is untouched by expense filters.
	assert.Contains(t, body, "₹50000.00")
}

func TestDashboardStatsFollowTextFilter(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/dashboard?q=bus")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Bus pass")
	assert.NotContains(t, body, "Groceries")
	// Total and category count reflect the single matching expense.
	assert.Contains(t, body, "₹150.00")
	assert.NotContains(t, body, "₹600.00")
}

func TestDashboardPageReportsBadFilterDate(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/dashboard?date=yesterday")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestOverviewPageRenders(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "food")
	assert.Contains(t, body, "transport")
	// 450/600 and 150/600 split.
	assert.Contains(t, body, "75.00%")
	assert.Contains(t, body, "25.00%")
	assert.Contains(t, body, "₹300.00") // average
}

func TestEditExpensePage(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "meera")
	seedRecords(t, env, user.ID)

	rec := getPage(env, token, "/expenses/edit/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Groceries")

	// XHR callers get the entity as JSON instead.
	req := httptest.NewRequest(http.MethodGet, "/expenses/edit/1", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	req.Header.Set("Accept", "application/json")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Groceries"`)
}
