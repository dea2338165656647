package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

func TestNewExpenseEvent(t *testing.T) {
	e := core.Expense{
		ID:       3,
		Owner:    7,
		Title:    "Bus pass",
		Amount:   core.Money{Cents: 2050},
		Category: core.CategoryTransport,
		Date:     core.NewDate(2025, 6, 15),
	}

	event := NewExpenseEvent(EventExpenseCreated, e)
	assert.Equal(t, EventExpenseCreated, event.Type)
	assert.Equal(t, int64(2050), event.AmountCents)
	assert.Equal(t, "transport", event.Category)
	assert.Equal(t, "2025-06-15", event.Date)
	assert.False(t, event.Timestamp.IsZero())

	body, err := event.ToJSON()
	require.NoError(t, err)

	back, err := ExpenseEventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, event.ID, back.ID)
	assert.Equal(t, event.Type, back.Type)

	_, err = ExpenseEventFromJSON([]byte("not json"))
	assert.Error(t, err)
}
