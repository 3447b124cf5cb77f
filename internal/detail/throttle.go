package detail

import "context"

// CartService is the slice of the cart API the throttler needs.
type CartService interface {
	AddToCart(ctx context.Context, cartID, bookID string, quantity int) error
}

// Throttler gates cart mutations behind the visit's cooldown window.
// A duplicate trigger inside the window is discarded, not queued.
type Throttler struct {
	carts    CartService
	cooldown *Cooldown
	window   int
}

// NewThrottler wires the throttler to a cart client and a cooldown.
func NewThrottler(carts CartService, cooldown *Cooldown, windowSeconds int) *Throttler {
	if windowSeconds <= 0 {
		windowSeconds = DefaultCooldownSeconds
	}
	return &Throttler{carts: carts, cooldown: cooldown, window: windowSeconds}
}

// Trigger issues the cart-add unless a cooldown is in effect. The window is
// armed when the request is issued, not when it completes, and runs out
// regardless of the outcome. accepted reports whether a request was made at
// all; err carries the cart service outcome for an accepted trigger.
func (t *Throttler) Trigger(ctx context.Context, cartID, bookID string, quantity int) (accepted bool, err error) {
	if !t.cooldown.TryStart(t.window) {
		return false, nil
	}
	return true, t.carts.AddToCart(ctx, cartID, bookID, quantity)
}
