package detail

import (
	"math"
	"strconv"
	"strings"
)

// SetResult describes the outcome of a typed quantity entry.
type SetResult int

const (
	// SetIgnored means the entry was not a usable number and the quantity
	// was left untouched.
	SetIgnored SetResult = iota
	// SetApplied means the entry was accepted as-is.
	SetApplied
	// SetClamped means the entry met or exceeded the stock level and was
	// clamped to it; callers surface a warning for this case.
	SetClamped
)

// QuantitySelector owns the purchase quantity for the loaded book. It keeps
// the invariant 1 <= quantity <= max(1, remaining) under every input path.
// With no stock left the quantity stays at the floor value 1; disabling the
// purchase actions in that case is the caller's policy, not enforced here.
type QuantitySelector struct {
	quantity  int
	remaining int
}

// NewQuantitySelector returns a selector with quantity 1 and no stock bound.
func NewQuantitySelector() *QuantitySelector {
	return &QuantitySelector{quantity: 1}
}

// Reset binds the selector to a newly loaded book's stock level and returns
// the quantity to 1.
func (q *QuantitySelector) Reset(remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	q.remaining = remaining
	q.quantity = 1
}

// Quantity returns the current purchase quantity.
func (q *QuantitySelector) Quantity() int { return q.quantity }

// Remaining returns the stock level the selector is bound to.
func (q *QuantitySelector) Remaining() int { return q.remaining }

func (q *QuantitySelector) ceiling() int {
	if q.remaining < 1 {
		return 1
	}
	return q.remaining
}

// SetFromText applies a typed quantity. Entries that are not whole finite
// numbers, or are zero or negative, are ignored silently. Values at or above
// the stock level clamp to it.
func (q *QuantitySelector) SetFromText(raw string) SetResult {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return SetIgnored
	}
	n := int(v)
	if float64(n) != v || n <= 0 {
		return SetIgnored
	}
	if n >= q.remaining {
		q.quantity = q.ceiling()
		return SetClamped
	}
	q.quantity = n
	return SetApplied
}

// Increment raises the quantity by one, a no-op at the stock ceiling.
func (q *QuantitySelector) Increment() {
	if q.quantity < q.ceiling() {
		q.quantity++
	}
}

// Decrement lowers the quantity by one, a no-op at the floor of 1.
func (q *QuantitySelector) Decrement() {
	if q.quantity > 1 {
		q.quantity--
	}
}
