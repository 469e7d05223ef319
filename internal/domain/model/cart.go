package model

import "math"

// Metadata holds display attributes of a cart line (name, image, etc.).
type Metadata map[string]string

// CartLine is one product in the cart. UnitPrice is in currency minor units.
type CartLine struct {
	ProductID string
	UnitPrice int64
	Quantity  int
	Metadata  Metadata
}

// Subtotal returns UnitPrice multiplied by Quantity.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CheckedSubtotal returns the subtotal, or false when it does not fit in int64.
func (l CartLine) CheckedSubtotal() (int64, bool) {
	if l.Quantity < 0 || l.UnitPrice < 0 {
		return 0, false
	}
	if l.UnitPrice != 0 && int64(l.Quantity) > math.MaxInt64/l.UnitPrice {
		return 0, false
	}
	return l.UnitPrice * int64(l.Quantity), true
}

// Cart is an ordered set of lines for one order session.
type Cart struct {
	Lines []CartLine
}

// Count returns the sum of quantities.
func (c Cart) Count() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of line subtotals in minor units.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// InRange reports whether Count and Total are representable without overflow.
func (c Cart) InRange() bool {
	var n int
	var total int64
	for _, l := range c.Lines {
		sub, ok := l.CheckedSubtotal()
		if !ok || l.Quantity > math.MaxInt-n || sub > math.MaxInt64-total {
			return false
		}
		n += l.Quantity
		total += sub
	}
	return true
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Clone deep-copies lines and metadata.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = l
		lines[i].Metadata = l.Metadata.clone()
	}
	return Cart{Lines: lines}
}

func (m Metadata) clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
