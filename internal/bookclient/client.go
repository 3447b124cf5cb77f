package bookclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"bookmart/pkg/domain"
)

// Client calls the book catalog service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	flight     singleflight.Group
}

// APIError represents a catalog service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a catalog service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetBook fetches the full detail record for one book. A 404 maps to
// domain.ErrBookNotFound. Concurrent calls for the same id share one
// upstream request; the winning caller's context governs it.
func (c *Client) GetBook(ctx context.Context, id string) (domain.BookDetail, error) {
	v, err, _ := c.flight.Do("book:"+id, func() (any, error) {
		return c.fetchBook(ctx, id)
	})
	if err != nil {
		return domain.BookDetail{}, err
	}
	return v.(domain.BookDetail), nil
}

func (c *Client) fetchBook(ctx context.Context, id string) (domain.BookDetail, error) {
	path := fmt.Sprintf("%s/books/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.BookDetail{}, err
	}
	var book domain.BookDetail
	if err := c.do(req, &book); err != nil {
		return domain.BookDetail{}, err
	}
	return book, nil
}

// Related fetches books sharing an author or group with the current one.
func (c *Client) Related(ctx context.Context, query domain.RelatedQuery) ([]domain.BookDetail, error) {
	params := url.Values{}
	for _, id := range query.AuthorIDs {
		params.Add("authorId", id)
	}
	params.Set("groupId", query.GroupID)
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("pageSize", strconv.Itoa(query.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books/related?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp relatedResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Datas, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrBookNotFound
	}
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
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type relatedResponse struct {
	Datas []domain.BookDetail `json:"datas"`
}
