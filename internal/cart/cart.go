// Package cart is the in-memory shopping cart of one storefront session.
//
// A line stores its own unit price, copied from the product when the line is
// created; later catalog changes do not reach lines already in the cart.
// Operations never fail: out-of-range input degrades to a no-op.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tiendaonline/storefront/internal/orders"
)

type Line struct {
	ProductID int64
	Name      string
	Category  string
	ImageURL  string
	Stock     int
	Price     decimal.Decimal // unit price captured at add time
	Qty       int
}

// Subtotal is Price * Qty.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Store holds the ordered cart lines. The zero value is an empty cart.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	version uint64
}

func New() *Store { return &Store{} }

// Add merges qty into the line for p.ID, or appends a new line at the end.
// There is no upper clamp here; quantity controls use Step.
func (s *Store) Add(p orders.Product, qty int) {
	if qty < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(p.ID); i >= 0 {
		s.lines[i].Qty += qty
	} else {
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			ImageURL:  p.ImageURL,
			Stock:     p.Stock,
			Price:     p.Price,
			Qty:       qty,
		})
	}
	s.version++
}

// SetQuantity overwrites the line quantity; qty <= 0 removes the line.
func (s *Store) SetQuantity(id int64, qty int) {
	if qty <= 0 {
		s.Remove(id)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.lines[i].Qty = qty
		s.version++
	}
}

// Step moves the quantity by delta. An increment is ignored once the line
// holds stock units and a decrement once it holds one; otherwise the move
// stops at whichever bound it crosses.
func (s *Store) Step(id int64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	l := &s.lines[i]
	qty := l.Qty
	switch {
	case delta > 0 && l.Qty < l.Stock:
		qty = min(l.Qty+delta, l.Stock)
	case delta < 0 && l.Qty > 1:
		qty = max(l.Qty+delta, 1)
	}
	if qty != l.Qty {
		l.Qty = qty
		s.version++
	}
}

func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) removeLocked(id int64) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.version++
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) > 0 {
		s.lines = nil
		s.version++
	}
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

// Line returns the line for id.
func (s *Store) Line(id int64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) IsEmpty() bool { return s.Len() == 0 }

// ItemCount is the sum of all quantities (the header badge).
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Qty
	}
	return n
}

// Subtotal is the sum of Price * Qty over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (s *Store) index(id int64) int {
	for i := range s.lines {
		if s.lines[i].ProductID == id {
			return i
		}
	}
	return -1
}
