package amqp

import (
	"encoding/json"
	"time"

	"kharcha/internal/core"
)

// Event types carried on the expense event queue.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is the full expense payload published on create and delete.
// The worker appends it to the backup sheet without reading the database,
// so the message must be self-contained.
type ExpenseEvent struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	Owner       int64     `json:"owner"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseEvent builds an event from a domain expense.
func NewExpenseEvent(eventType string, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:        eventType,
		ID:          e.ID,
		Owner:       e.Owner,
		Title:       e.Title,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Date:        e.Date.String(),
		Description: e.Description,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON creates an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
