package cart

import "github.com/shopspring/decimal"

// Snapshot is a frozen copy of the cart taken when a checkout submission starts.
type Snapshot struct {
	Lines   []Line
	version uint64
}

func (s Snapshot) Subtotal() decimal.Decimal { return subtotal(s.Lines) }

func (s Snapshot) IsEmpty() bool { return len(s.Lines) == 0 }

// Version is the cart version the snapshot was taken at.
func (s Snapshot) Version() uint64 { return s.version }

// Version increases on every mutation of the cart.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Lines: append([]Line(nil), s.lines...), version: s.version}
}

// Settle removes a submitted snapshot from the cart once its order exists.
// If the cart was not touched since the snapshot it is simply cleared;
// otherwise the submitted quantities are subtracted line by line so that
// edits made while the order was in flight are kept.
func (s *Store) Settle(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version == snap.version {
		if len(s.lines) > 0 {
			s.lines = nil
			s.version++
		}
		return
	}
	for _, sub := range snap.Lines {
		i := s.index(sub.ProductID)
		if i < 0 {
			continue
		}
		if s.lines[i].Qty <= sub.Qty {
			s.removeLocked(sub.ProductID)
			continue
		}
		s.lines[i].Qty -= sub.Qty
		s.version++
	}
}
