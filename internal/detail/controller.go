package detail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bookmart/pkg/domain"
)

// Status is the primary load state of a detail-page visit.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusLoaded   Status = "loaded"
	StatusNotFound Status = "notFound"
	StatusFailed   Status = "failed"
)

// RelatedStatus is the secondary state for the related-books list. It never
// blocks or invalidates the primary state.
type RelatedStatus string

const (
	RelatedIdle    RelatedStatus = "idle"
	RelatedLoading RelatedStatus = "loading"
	RelatedLoaded  RelatedStatus = "loaded"
	RelatedFailed  RelatedStatus = "failed"
)

// ErrNoBook is returned for purchase actions attempted before a successful load.
var ErrNoBook = errors.New("no book loaded")

// BookService is the slice of the catalog API the controller needs.
type BookService interface {
	GetBook(ctx context.Context, id string) (domain.BookDetail, error)
	Related(ctx context.Context, query domain.RelatedQuery) ([]domain.BookDetail, error)
}

// Config wires controller dependencies for one visit.
type Config struct {
	Books  BookService
	Carts  CartService
	Logger *slog.Logger

	// CooldownSeconds is the add-to-cart window; defaults to 30.
	CooldownSeconds int
	// CooldownInterval is the countdown tick; defaults to one second.
	// Tests shrink it.
	CooldownInterval time.Duration
}

// Controller assembles and keeps current the viewable state of one
// detail-page visit. It exclusively owns the loaded book, the purchase
// quantity and the cooldown for the lifetime of the visit; nothing is shared
// across visits except the cart record behind the cart service.
//
// Overlapping loads follow last-started-wins: every Load bumps a generation
// counter and a result arriving for a stale generation is discarded, so the
// transport is never cancelled mid-flight to enforce ordering.
type Controller struct {
	books     BookService
	throttler *Throttler
	cooldown  *Cooldown
	logger    *slog.Logger

	// ctx outlives individual requests and is cancelled on Close so that
	// the background related fetch unblocks promptly.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	gen      uint64
	bookID   string
	status   Status
	book     domain.BookDetail
	hasBook  bool
	quantity *QuantitySelector

	related         []domain.BookDetail
	relatedStatus   RelatedStatus
	relatedQuery    domain.RelatedQuery
	hasRelatedQuery bool
}

// New constructs an idle controller. The caller owns it for exactly one
// visit and must Close it on teardown.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cooldown := NewCooldown(cfg.CooldownInterval)
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		books:         cfg.Books,
		throttler:     NewThrottler(cfg.Carts, cooldown, cfg.CooldownSeconds),
		cooldown:      cooldown,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		status:        StatusIdle,
		quantity:      NewQuantitySelector(),
		relatedStatus: RelatedIdle,
	}
}

// Load fetches the book and, on success, fully replaces the primary state:
// new book snapshot, quantity back to 1, cooldown back to 0. A changed
// (author set, group id) pair then kicks off the related-books fetch in the
// background. On failure the error is returned for the caller to redirect
// on; no partial state is kept.
func (c *Controller) Load(ctx context.Context, bookID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.bookID = bookID
	c.status = StatusLoading
	c.mu.Unlock()

	book, err := c.books.GetBook(ctx, bookID)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		// A newer load owns the outcome of this visit now.
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.status = StatusNotFound
		} else {
			c.status = StatusFailed
		}
		c.hasBook = false
		c.related = nil
		c.relatedStatus = RelatedIdle
		c.hasRelatedQuery = false
		c.mu.Unlock()
		return err
	}

	c.book = book
	c.hasBook = true
	c.status = StatusLoaded
	c.quantity.Reset(book.Remaining)
	c.cooldown.Stop()

	query, ok := BuildRelatedQuery(book)
	launch := false
	switch {
	case !ok:
		// Nothing to recommend on: an earlier book's list must not bleed
		// into this one.
		c.related = nil
		c.relatedStatus = RelatedIdle
		c.hasRelatedQuery = false
	case !c.hasRelatedQuery || !sameRelatedQuery(query, c.relatedQuery):
		c.relatedQuery = query
		c.hasRelatedQuery = true
		c.related = nil
		c.relatedStatus = RelatedLoading
		launch = true
	}
	c.mu.Unlock()

	if launch {
		go c.fetchRelated(query)
	}
	return nil
}

// SetBookID re-invokes Load when the externally supplied identifier differs
// from the current one; an unchanged id is a no-op.
func (c *Controller) SetBookID(ctx context.Context, bookID string) error {
	c.mu.Lock()
	if c.closed || (bookID == c.bookID && c.status != StatusIdle) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.Load(ctx, bookID)
}

// fetchRelated populates the secondary list. The result is applied only if
// the visit is still alive and the query pair is still the current one; a
// failure is logged and swallowed because browsing the primary book must not
// fail when recommendations do.
func (c *Controller) fetchRelated(query domain.RelatedQuery) {
	books, err := c.books.Related(c.ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.hasRelatedQuery || !sameRelatedQuery(query, c.relatedQuery) {
		return
	}
	if err != nil {
		c.logger.Warn("related books fetch failed", "book_id", c.bookID, "err", err)
		c.related = nil
		c.relatedStatus = RelatedFailed
		return
	}
	c.related = books
	c.relatedStatus = RelatedLoaded
}

// ReviewView is a review prepared for display: reviewer masked, content verbatim.
type ReviewView struct {
	ID       string    `json:"id"`
	Reviewer string    `json:"reviewer"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
}

// ViewState is the composed read-only snapshot of a visit.
type ViewState struct {
	Status          Status              `json:"status"`
	BookID          string              `json:"bookId"`
	Book            *domain.BookDetail  `json:"book,omitempty"`
	Reviews         []ReviewView        `json:"reviews"`
	Quantity        int                 `json:"quantity"`
	CooldownSeconds int                 `json:"cooldownSeconds"`
	RelatedStatus   RelatedStatus       `json:"relatedStatus"`
	Related         []domain.BookDetail `json:"related"`
}

// ViewState returns the snapshot used to render the page.
func (c *Controller) ViewState() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	vs := ViewState{
		Status:          c.status,
		BookID:          c.bookID,
		Quantity:        c.quantity.Quantity(),
		CooldownSeconds: c.cooldown.Remaining(),
		RelatedStatus:   c.relatedStatus,
		Related:         c.related,
	}
	if c.hasBook {
		book := c.book
		vs.Book = &book
		vs.Reviews = make([]ReviewView, 0, len(book.Reviews))
		for _, r := range book.Reviews {
			vs.Reviews = append(vs.Reviews, ReviewView{
				ID:       r.ID,
				Reviewer: MaskReviewer(r.UserName),
				Content:  r.Content,
				Date:     r.Date,
			})
		}
	}
	return vs
}

// SetQuantityText applies a typed quantity entry and reports the outcome
// together with the resulting quantity.
func (c *Controller) SetQuantityText(raw string) (SetResult, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.quantity.SetFromText(raw)
	return res, c.quantity.Quantity()
}

// IncrementQuantity raises the quantity by one within the stock bound.
func (c *Controller) IncrementQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quantity.Increment()
	return c.quantity.Quantity()
}

// DecrementQuantity lowers the quantity by one, never below 1.
func (c *Controller) DecrementQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quantity.Decrement()
	return c.quantity.Quantity()
}

// AddToCart pushes the current selection to the cart through the throttler.
// accepted is false when the attempt fell inside the cooldown window.
func (c *Controller) AddToCart(ctx context.Context, cartID string) (accepted bool, err error) {
	c.mu.Lock()
	if c.closed || c.status != StatusLoaded {
		c.mu.Unlock()
		return false, ErrNoBook
	}
	bookID := c.bookID
	qty := c.quantity.Quantity()
	c.mu.Unlock()
	return c.throttler.Trigger(ctx, cartID, bookID, qty)
}

// Checkout builds the direct-purchase payload handed to the checkout page.
func (c *Controller) Checkout() (domain.CheckoutOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.hasBook {
		return domain.CheckoutOrder{}, ErrNoBook
	}
	qty := c.quantity.Quantity()
	item := domain.CheckoutItem{
		ID:       c.book.ID,
		Name:     c.book.Title,
		Price:    c.book.Price,
		Image:    c.book.Image,
		Quantity: qty,
	}
	return domain.CheckoutOrder{
		Items:    []domain.CheckoutItem{item},
		TotalPay: c.book.Price * int64(qty),
		Voucher:  nil,
	}, nil
}

// Close tears the visit down: the cooldown stops ticking and results from
// any fetch still in flight are discarded on arrival.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.cooldown.Stop()
	c.cancel()
}
