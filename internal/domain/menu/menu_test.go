package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMenu(t *testing.T) *Menu {
	t.Helper()
	m, err := New("Morning Market", map[string]decimal.Decimal{
		"organic apples":    decimal.RequireFromString("2.50"),
		"eco bread":         decimal.RequireFromString("2.80"),
		"fair-trade coffee": decimal.RequireFromString("2.50"),
	}, "8am", "12pm")
	require.NoError(t, err)
	return m
}

func TestNew_RejectsNegativePrice(t *testing.T) {
	_, err := New("Broken", map[string]decimal.Decimal{
		"eco bread": decimal.RequireFromString("-1"),
	}, "8am", "12pm")
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestNew_SnapshotsPrices(t *testing.T) {
	source := map[string]decimal.Decimal{
		"eco bread": decimal.RequireFromString("2.80"),
	}
	m, err := New("Morning Market", source, "8am", "12pm")
	require.NoError(t, err)

	source["eco bread"] = decimal.RequireFromString("9.99")

	price, ok := m.Price("eco bread")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("2.80").Equal(price))
}

func TestCalculateBill_EmptyCart(t *testing.T) {
	m := newTestMenu(t)
	assert.True(t, decimal.Zero.Equal(m.CalculateBill(nil)))
}

func TestCalculateBill_RepeatedItems(t *testing.T) {
	m := newTestMenu(t)
	total := m.CalculateBill([]string{"eco bread", "eco bread", "organic apples"})
	assert.True(t, decimal.RequireFromString("8.10").Equal(total))
}

func TestCalculateBill_SkipsUnknownItems(t *testing.T) {
	m := newTestMenu(t)
	total := m.CalculateBill([]string{"organic apples", "vegan pizza"})
	assert.True(t, decimal.RequireFromString("2.50").Equal(total))
}

func TestClone_IsolatedPrices(t *testing.T) {
	m := newTestMenu(t)
	clone := m.Clone()

	require.NotEqual(t, m.ID, clone.ID)

	require.NoError(t, clone.SetPrice("eco bread", decimal.RequireFromString("3.10")))

	original, ok := m.Price("eco bread")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("2.80").Equal(original))

	updated, ok := clone.Price("eco bread")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("3.10").Equal(updated))
}

func TestSetPrice_UnknownItem(t *testing.T) {
	m := newTestMenu(t)
	err := m.SetPrice("vegan pizza", decimal.RequireFromString("10.00"))
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestSetPrice_RejectsNegative(t *testing.T) {
	m := newTestMenu(t)
	err := m.SetPrice("eco bread", decimal.RequireFromString("-0.50"))
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestMarkup_RoundsToTwoDecimals(t *testing.T) {
	m, err := New("Kids EcoMenu", map[string]decimal.Decimal{
		"eco nuggets": decimal.RequireFromString("5.00"),
		"bananas":     decimal.RequireFromString("1.80"),
		"granola bar": decimal.RequireFromString("1.50"),
	}, "11am", "8pm")
	require.NoError(t, err)

	m.Markup(decimal.RequireFromString("1.1"))

	for name, want := range map[string]string{
		"eco nuggets": "5.50",
		"bananas":     "1.98",
		"granola bar": "1.65",
	} {
		price, ok := m.Price(name)
		require.True(t, ok, name)
		assert.True(t, decimal.RequireFromString(want).Equal(price), "%s: got %s", name, price)
	}
}

func TestItems_SortedByName(t *testing.T) {
	m := newTestMenu(t)
	items := m.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "eco bread", items[0].Name)
	assert.Equal(t, "fair-trade coffee", items[1].Name)
	assert.Equal(t, "organic apples", items[2].Name)
}
