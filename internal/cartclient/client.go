package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Client calls the cart service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a cart service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a cart service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type addItemRequest struct {
	CartID   string `json:"cartId"`
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

// AddToCart appends quantity copies of a book to the cart. The cart record
// is the only shared resource at this boundary; stock is never decremented
// locally on success, it is refreshed by re-fetching the book.
func (c *Client) AddToCart(ctx context.Context, cartID, bookID string, quantity int) error {
	payload := addItemRequest{CartID: cartID, BookID: bookID, Quantity: quantity}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/carts/items", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}
