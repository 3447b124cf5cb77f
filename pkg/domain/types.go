package domain

import (
	"errors"
	"time"
)

// ErrBookNotFound reports that a book id does not resolve in the catalog.
var ErrBookNotFound = errors.New("book not found")

// Author identifies one contributor of a book.
type Author struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// Review is a customer review attached to a book. UserName is the raw
// reviewer identity; it is masked only at render time. Content may contain
// markup and is passed through verbatim.
type Review struct {
	ID       string    `json:"id"`
	UserName string    `json:"userName"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
}

// BookDetail is the full catalog record backing one detail page.
// Field names follow the catalog service wire format.
type BookDetail struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Image             string    `json:"image,omitempty"`
	Price             int64     `json:"price"`
	TotalPageNumber   int       `json:"totalPageNumber"`
	Rate              float64   `json:"rate"`
	BookGroupID       string    `json:"bookGroupId"`
	BookGroupName     string    `json:"bookGroupName"`
	PublishedAt       time.Time `json:"publishedAt"`
	Remaining         int       `json:"remaining"`
	Authors           []Author  `json:"author"`
	Reviews           []Review  `json:"reviews"`
	TotalReviewNumber int       `json:"totalReviewNumber"`
}

// RelatedQuery selects books sharing an author or group with the current one.
type RelatedQuery struct {
	AuthorIDs []string `json:"authorId"`
	GroupID   string   `json:"groupId"`
	Page      int      `json:"page"`
	PageSize  int      `json:"pageSize"`
}

// CheckoutItem is one line of a direct-purchase order draft.
type CheckoutItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

// CheckoutOrder is handed to the checkout page when the user buys the
// current book directly. Voucher is always null at this point; voucher
// selection happens on the checkout page itself.
type CheckoutOrder struct {
	Items    []CheckoutItem `json:"items"`
	TotalPay int64          `json:"totalPay"`
	Voucher  *string        `json:"voucher"`
}
