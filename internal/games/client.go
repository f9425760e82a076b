package games

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"GameCatalog/pkg/kit"
)

var (
	ErrBadRequest  = errors.New("games api rejected the request")
	ErrBadStatus   = errors.New("games api bad status")
	ErrUnavailable = errors.New("games api unavailable")
)

// Client talks to the games HTTP API. Remote 404 and 422 come back as
// ErrNotFound and ErrDuplicate so KindOf works on either side of the wire.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

var _ Service = (*Client)(nil)

// Ping reports whether the remote service is ready.
func (c *Client) Ping(ctx context.Context) error {
	return c.doEmpty(ctx, http.MethodGet, "/readyz", nil)
}

func (c *Client) List(ctx context.Context, page Page) ([]View, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Number))
	q.Set("size", strconv.Itoa(page.Size))

	resp, err := c.do(ctx, http.MethodGet, "/games?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return []View{}, nil
	}

	var out []View
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (View, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/games/"+id.String(), nil)
	if err != nil {
		return View{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return View{}, false, nil
	}

	var v View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return View{}, false, fmt.Errorf("decode game: %w", err)
	}
	return v, true, nil
}

func (c *Client) Insert(ctx context.Context, in Input) (View, error) {
	resp, err := c.do(ctx, http.MethodPost, "/games", in)
	if err != nil {
		return View{}, err
	}
	defer resp.Body.Close()

	var v View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return View{}, fmt.Errorf("decode game: %w", err)
	}
	return v, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, in Input) error {
	return c.doEmpty(ctx, http.MethodPut, "/games/"+id.String(), in)
}

func (c *Client) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	p := strconv.FormatFloat(price, 'f', -1, 64)
	return c.doEmpty(ctx, http.MethodPatch, "/games/"+id.String()+"/price/"+p, nil)
}

func (c *Client) Remove(ctx context.Context, id uuid.UUID) error {
	return c.doEmpty(ctx, http.MethodDelete, "/games/"+id.String(), nil)
}

func (c *Client) doEmpty(ctx context.Context, method, path string, body any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends the request and turns every non-2xx status into an error.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var e kit.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnprocessableEntity:
		return nil, ErrDuplicate
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, describeRemote(e))
	default:
		return nil, fmt.Errorf("%w: status=%d %s", ErrBadStatus, resp.StatusCode, e.Error)
	}
}

func describeRemote(e kit.ErrorResponse) string {
	if e.Details == nil {
		return e.Error
	}
	b, err := json.Marshal(e.Details)
	if err != nil {
		return e.Error
	}
	return e.Error + " " + string(b)
}
