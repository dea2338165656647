package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, context.Context) {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, context.Background()
}

func newTestUser(t *testing.T, repo *SQLiteRepository, ctx context.Context, name string) core.User {
	t.Helper()
	u, err := repo.CreateUser(ctx, name, "hash")
	require.NoError(t, err)
	return u
}

func TestCreateUserDuplicate(t *testing.T) {
	repo, ctx := newTestRepo(t)

	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.CreateUser(ctx, "alice", "otherhash")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseCRUD(t *testing.T) {
	repo, ctx := newTestRepo(t)
	u := newTestUser(t, repo, ctx, "alice")

	e := core.Expense{
		Owner:       u.ID,
		Title:       "Groceries",
		Amount:      core.Money{Cents: 5000},
		Category:    core.CategoryFood,
		Date:        core.NewDate(2025, 6, 1),
		Description: "weekly shop",
	}
	require.NoError(t, repo.CreateExpense(ctx, &e))
	require.NotZero(t, e.ID)

	got, err := repo.GetExpense(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, int64(5000), got.Amount.Cents)
	assert.Equal(t, core.CategoryFood, got.Category)
	assert.True(t, got.Date.SameDay(core.NewDate(2025, 6, 1)))

	got.Title = "Groceries and snacks"
	got.Amount = core.Money{Cents: 5500}
	require.NoError(t, repo.UpdateExpense(ctx, got))

	updated, err := repo.GetExpense(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries and snacks", updated.Title)
	assert.Equal(t, int64(5500), updated.Amount.Cents)

	require.NoError(t, repo.DeleteExpense(ctx, u.ID, e.ID))
	_, err = repo.GetExpense(ctx, u.ID, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, u.ID, e.ID), ErrNotFound)
}

func TestExpenseOwnershipIsolation(t *testing.T) {
	repo, ctx := newTestRepo(t)
	alice := newTestUser(t, repo, ctx, "alice")
	bob := newTestUser(t, repo, ctx, "bob")

	e := core.Expense{Owner: alice.ID, Title: "hers", Amount: core.Money{Cents: 100},
		Category: core.CategoryOther, Date: core.NewDate(2025, 1, 1)}
	require.NoError(t, repo.CreateExpense(ctx, &e))

	// another owner's lookup behaves exactly like a missing row
	_, err := repo.GetExpense(ctx, bob.ID, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExpense(ctx, bob.ID, e.ID), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateExpense(ctx, core.Expense{ID: e.ID, Owner: bob.ID,
		Title: "his", Amount: core.Money{Cents: 1}, Category: core.CategoryOther,
		Date: core.NewDate(2025, 1, 1)}), ErrNotFound)

	list, err := repo.ListExpenses(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListExpensesOrder(t *testing.T) {
	repo, ctx := newTestRepo(t)
	u := newTestUser(t, repo, ctx, "alice")

	dates := []core.Date{
		core.NewDate(2025, 1, 10),
		core.NewDate(2025, 3, 1),
		core.NewDate(2025, 2, 15),
		core.NewDate(2025, 3, 1), // same day, later insert
	}
	for i, d := range dates {
		e := core.Expense{Owner: u.ID, Title: "e", Amount: core.Money{Cents: int64(100 + i)},
			Category: core.CategoryOther, Date: d}
		require.NoError(t, repo.CreateExpense(ctx, &e))
	}

	list, err := repo.ListExpenses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, int64(103), list[0].Amount.Cents) // 2025-03-01, higher id first
	assert.Equal(t, int64(101), list[1].Amount.Cents) // 2025-03-01
	assert.Equal(t, int64(102), list[2].Amount.Cents) // 2025-02-15
	assert.Equal(t, int64(100), list[3].Amount.Cents) // 2025-01-10
}

func TestIncomes(t *testing.T) {
	repo, ctx := newTestRepo(t)
	u := newTestUser(t, repo, ctx, "alice")

	in := core.Income{Owner: u.ID, Title: "Salary", Amount: core.Money{Cents: 500000},
		Date: core.NewDate(2025, 6, 1), Description: "monthly"}
	require.NoError(t, repo.CreateIncome(ctx, &in))
	require.NotZero(t, in.ID)

	list, err := repo.ListIncomes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Salary", list[0].Title)

	require.NoError(t, repo.DeleteIncome(ctx, u.ID, in.ID))
	assert.ErrorIs(t, repo.DeleteIncome(ctx, u.ID, in.ID), ErrNotFound)
}

func TestBudgetUpsert(t *testing.T) {
	repo, ctx := newTestRepo(t)
	u := newTestUser(t, repo, ctx, "alice")

	// lazily created with amount 0
	b, err := repo.GetOrCreateBudget(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Amount.Cents)
	assert.Equal(t, u.ID, b.Owner)

	// second read returns the same row
	again, err := repo.GetOrCreateBudget(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)

	set, err := repo.SetBudget(ctx, u.ID, 100000)
	require.NoError(t, err)
	assert.Equal(t, b.ID, set.ID)
	assert.Equal(t, int64(100000), set.Amount.Cents)

	// get-or-create after setting must not reset the amount
	kept, err := repo.GetOrCreateBudget(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), kept.Amount.Cents)
}

func TestBudgetConcurrentGetOrCreate(t *testing.T) {
	repo, ctx := newTestRepo(t)
	u := newTestUser(t, repo, ctx, "alice")

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]int64, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := repo.GetOrCreateBudget(ctx, u.ID)
			ids[i], errs[i] = b.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestParseTime(t *testing.T) {
	assert.False(t, parseTime("2026-08-28T10:00:00Z").IsZero())
	assert.False(t, parseTime("2026-08-28 10:00:00").IsZero())

	// An unreadable stored value degrades to the zero time.
	assert.True(t, parseTime("not a timestamp").IsZero())
}
