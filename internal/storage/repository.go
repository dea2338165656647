// Package storage implements the record store on SQLite. Every query on
// expense, income and budget rows is scoped by the owning user id: a lookup
// with the wrong owner behaves exactly like a lookup for a row that does
// not exist.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser stores a new account and returns it with its id set.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now.Format(timeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return core.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CreateExpense stores an expense and sets its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, title, amount_cents, category, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Owner, e.Title, e.Amount.Cents, string(e.Category), e.Date.String(), e.Description,
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"user_id", e.Owner,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category))
	return nil
}

// GetExpense returns one expense owned by owner, or ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, owner, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, amount_cents, category, date, description
		 FROM expenses WHERE user_id = ? AND id = ?`, owner, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpense rewrites every mutable field of an owned expense.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount_cents = ?, category = ?, date = ?, description = ?
		 WHERE user_id = ? AND id = ?`,
		e.Title, e.Amount.Cents, string(e.Category), e.Date.String(), e.Description, e.Owner, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res, "update expense")
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, owner, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res, "delete expense")
}

// ListExpenses returns all of an owner's expenses, most recent date first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, owner int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount_cents, category, date, description
		 FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateIncome stores an income record and sets its id.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, in *core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, title, amount_cents, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Owner, in.Title, in.Amount.Cents, in.Date.String(), in.Description,
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("income insert id: %w", err)
	}
	in.ID = id
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, owner, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE user_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireAffected(res, "delete income")
}

// ListIncomes returns all of an owner's income records, most recent first.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, owner int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount_cents, date, description
		 FROM incomes WHERE user_id = ? ORDER BY date DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in      core.Income
			dateStr string
		)
		if err := rows.Scan(&in.ID, &in.Owner, &in.Title, &in.Amount.Cents, &dateStr, &in.Description); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("income %d has malformed date %q: %w", in.ID, dateStr, err)
		}
		in.Date = date
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// GetOrCreateBudget returns the owner's budget, creating a zero-amount one
// on first access. The insert is a single atomic upsert, so two concurrent
// first accesses still leave exactly one row.
func (r *SQLiteRepository) GetOrCreateBudget(ctx context.Context, owner int64) (core.Budget, error) {
	now := time.Now().UTC().Format(timeLayout)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, amount_cents, created_at, updated_at)
		 VALUES (?, 0, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`, owner, now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("ensure budget: %w", err)
	}
	return r.getBudget(ctx, owner)
}

// SetBudget sets the owner's budget amount via the same atomic upsert.
func (r *SQLiteRepository) SetBudget(ctx context.Context, owner, amountCents int64) (core.Budget, error) {
	now := time.Now().UTC().Format(timeLayout)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, amount_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at`,
		owner, amountCents, now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	return r.getBudget(ctx, owner)
}

func (r *SQLiteRepository) getBudget(ctx context.Context, owner int64) (core.Budget, error) {
	var (
		b                    core.Budget
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, created_at, updated_at FROM budgets WHERE user_id = ?`,
		owner).Scan(&b.ID, &b.Owner, &b.Amount.Cents, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		catStr  string
		dateStr string
	)
	if err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Amount.Cents, &catStr, &dateStr, &e.Description); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(catStr)
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d has malformed date %q: %w", e.ID, dateStr, err)
	}
	e.Date = date
	return e, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// parseTime tolerates both our RFC3339 writes and SQLite's own
// CURRENT_TIMESTAMP format.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	slog.Warn("Malformed stored timestamp", "value", s)
	return time.Time{}
}
