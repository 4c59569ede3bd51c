package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaonline/storefront/internal/orders"
)

func product(id int64, price string, stock int) orders.Product {
	return orders.Product{
		ID:       id,
		Name:     "Producto",
		Price:    decimal.RequireFromString(price),
		Category: "ropa",
		Stock:    stock,
		Active:   true,
	}
}

func ids(lines []Line) []int64 {
	out := make([]int64, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID)
	}
	return out
}

func TestAdd_MergesByProductID(t *testing.T) {
	s := New()
	a := product(1, "19.99", 10)

	s.Add(a, 1)
	s.Add(a, 2)
	s.Add(a, 4)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Qty)
	assert.Equal(t, 7, s.ItemCount())
}

func TestAdd_NoUpperClamp(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 2), 5)

	l, ok := s.Line(1)
	require.True(t, ok)
	assert.Equal(t, 5, l.Qty)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Add(product(3, "1", 5), 1)
	s.Add(product(1, "1", 5), 1)
	s.Add(product(2, "1", 5), 1)
	s.Add(product(3, "1", 5), 1)

	assert.Equal(t, []int64{3, 1, 2}, ids(s.Lines()))
}

func TestAdd_NonPositiveQtyIsNoop(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 5), 0)
	s.Add(product(1, "1", 5), -3)
	assert.True(t, s.IsEmpty())
}

func TestAdd_CapturesPrice(t *testing.T) {
	s := New()
	p := product(1, "19.99", 5)
	s.Add(p, 1)

	p.Price = decimal.RequireFromString("99.00")
	s.Add(p, 1)

	l, _ := s.Line(1)
	assert.Equal(t, "19.99", l.Price.StringFixed(2))
	assert.Equal(t, "39.98", s.Subtotal().StringFixed(2))
}

func TestSetQuantity(t *testing.T) {
	s := New()
	s.Add(product(1, "2.50", 10), 1)
	s.Add(product(2, "1.00", 10), 1)

	s.SetQuantity(1, 4)
	l, _ := s.Line(1)
	assert.Equal(t, 4, l.Qty)
	assert.Equal(t, []int64{1, 2}, ids(s.Lines()))

	s.SetQuantity(99, 3)
	assert.Equal(t, 5, s.ItemCount())
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	build := func() *Store {
		s := New()
		s.Add(product(1, "1", 5), 2)
		s.Add(product(2, "3", 5), 1)
		s.Add(product(3, "5", 5), 3)
		return s
	}

	a, b, c := build(), build(), build()
	a.SetQuantity(2, 0)
	b.Remove(2)
	c.SetQuantity(2, -1)

	assert.Equal(t, a.Lines(), b.Lines())
	assert.Equal(t, b.Lines(), c.Lines())
	assert.Equal(t, []int64{1, 3}, ids(a.Lines()))
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 5), 1)
	s.Remove(42)
	assert.Equal(t, 1, s.Len())
}

func TestStep_ClampsToStock(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 3), 2)

	s.Step(1, +1)
	s.Step(1, +1)
	l, _ := s.Line(1)
	assert.Equal(t, 3, l.Qty)

	s.Step(1, -5)
	l, _ = s.Line(1)
	assert.Equal(t, 1, l.Qty, "step never removes the line")

	s.Add(product(2, "1", 3), 5)
	v := s.Version()
	s.Step(2, +1)
	l, _ = s.Line(2)
	assert.Equal(t, 5, l.Qty, "increment past stock is ignored")
	assert.Equal(t, v, s.Version())

	s.Step(2, -1)
	l, _ = s.Line(2)
	assert.Equal(t, 4, l.Qty, "decrement moves a single unit")
}

func TestClearTwice(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 5), 2)

	s.Clear()
	assert.True(t, s.IsEmpty())
	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Subtotal().IsZero())
}

func TestDerivedTotals(t *testing.T) {
	s := New()
	s.Add(product(1, "19.99", 10), 2)
	s.Add(product(2, "79.99", 10), 1)

	assert.Equal(t, "119.97", s.Subtotal().StringFixed(2))
	assert.Equal(t, 3, s.ItemCount())

	want := decimal.Zero
	count := 0
	for _, l := range s.Lines() {
		want = want.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
		count += l.Qty
		assert.True(t, l.Subtotal().Equal(l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))))
	}
	assert.True(t, s.Subtotal().Equal(want))
	assert.Equal(t, count, s.ItemCount())
}

func TestLinesReturnsCopy(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 5), 1)

	lines := s.Lines()
	lines[0].Qty = 100
	l, _ := s.Line(1)
	assert.Equal(t, 1, l.Qty)
}

func TestSettle_UntouchedCartIsCleared(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 5), 2)
	s.Add(product(2, "1", 5), 1)

	snap := s.Snapshot()
	s.Settle(snap)
	assert.True(t, s.IsEmpty())
}

func TestSettle_KeepsEditsMadeInFlight(t *testing.T) {
	s := New()
	s.Add(product(1, "1", 9), 2)
	s.Add(product(2, "1", 9), 1)
	snap := s.Snapshot()

	s.Add(product(1, "1", 9), 3) // 5 now, 2 submitted
	s.Add(product(3, "1", 9), 1) // new line
	s.Remove(2)                  // removed while submitting

	s.Settle(snap)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, []int64{1, 3}, ids(lines))
	assert.Equal(t, 3, lines[0].Qty)
	assert.Equal(t, 1, lines[1].Qty)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := New()
	s.Add(product(1, "10.00", 9), 1)
	snap := s.Snapshot()

	s.Add(product(1, "10.00", 9), 4)
	assert.Equal(t, "10.00", snap.Subtotal().StringFixed(2))
	assert.Equal(t, "50.00", s.Subtotal().StringFixed(2))
}
