package core

import (
	"errors"
	"strings"
	"time"
)

// MaxTitleLength bounds expense and income titles.
const MaxTitleLength = 100

const (
	CategoryFood          Category = "food"
	CategoryRent          Category = "rent"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryHealthcare    Category = "healthcare"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// Categories lists every valid expense category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryRent,
	CategoryTransport,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryUtilities,
	CategoryEducation,
	CategoryOther,
}

type (
	// Category is a closed enum tag classifying an expense.
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single spending record owned by one user.
	Expense struct {
		ID          int64
		Owner       int64
		Title       string
		Amount      Money
		Category    Category
		Date        Date
		Description string
	}

	// Income is structurally parallel to Expense but carries no category.
	Income struct {
		ID          int64
		Owner       int64
		Title       string
		Amount      Money
		Date        Date
		Description string
	}

	// Budget is the single spending limit a user may set. Remaining amount
	// and spent percentage are live aggregates, never stored.
	Budget struct {
		ID        int64
		Owner     int64
		Amount    Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// User identifies an account. Expenses, incomes and the budget hang off
	// its ID; ownership is immutable after creation.
	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyTitle      = errors.New("empty title")
)

// ParseCategory maps user input to a Category. Empty input falls back to
// "other"; anything outside the enum is rejected rather than silently
// defaulted.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryRent, CategoryTransport, CategoryEntertainment,
		CategoryHealthcare, CategoryShopping, CategoryUtilities,
		CategoryEducation, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date, the default for new expenses.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// SameDay reports whether two dates name the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// In reports whether the date falls inside the given calendar month.
func (d Date) In(month, year int) bool {
	return d.Month() == month && d.Year() == year
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return errors.New("title too long (max 100 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return e.Date.Validate()
}

func (i Income) Validate() error {
	if len(strings.TrimSpace(i.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(i.Title) > MaxTitleLength {
		return errors.New("title too long (max 100 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	return i.Date.Validate()
}
