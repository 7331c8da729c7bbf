// Package gateway is the dashboard's only path to the news backend.
//
// Every call is fail-soft: transport errors, non-2xx statuses and
// undecodable bodies are logged and reported as ok=false. No error ever
// crosses the package boundary.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
)

// Failure causes attached to the diagnostic log entry.
var (
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrBackendTimeout     = errors.New("backend timeout")
	ErrBackendStatus      = errors.New("backend returned error status")
	ErrBackendDecode      = errors.New("backend response not decodable")
)

const apiBasePath = "/api"

// Options describes one request.
type Options struct {
	Method string
	Body   any
	Header http.Header
}

// Client issues JSON requests against <baseURL>/api.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a gateway client. token is sent as a bearer token when set.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + apiBasePath,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Call performs the request and returns the raw JSON body. ok is false on
// any failure; the cause is only logged.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options) (json.RawMessage, bool) {
	body, err := c.do(ctx, endpoint, opts)
	if err != nil {
		method := opts.Method
		if method == "" {
			method = http.MethodGet
		}
		slog.Warn("backend call failed",
			"method", method,
			"endpoint", endpoint,
			"error", err,
		)
		return nil, false
	}
	return body, true
}

func (c *Client) do(ctx context.Context, endpoint string, opts Options) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq, opts.Header)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrBackendStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrBackendDecode)
	}
	return raw, nil
}

func (c *Client) setHeaders(req *http.Request, extra http.Header) {
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// --- typed endpoints ---

// StartCollection asks the backend to start a collection run. The response
// body is ignored.
func (c *Client) StartCollection(ctx context.Context) bool {
	_, ok := c.Call(ctx, "/collect", Options{Method: http.MethodPost})
	return ok
}

// CollectStatus fetches the progress of the current collection run.
func (c *Client) CollectStatus(ctx context.Context) (*models.CollectStatus, bool) {
	return fetch[models.CollectStatus](ctx, c, "/collect/status", Options{})
}

// Stats fetches the dashboard summary numbers.
func (c *Client) Stats(ctx context.Context) (*models.Stats, bool) {
	return fetch[models.Stats](ctx, c, "/stats", Options{})
}

// Articles fetches one page of articles for the projected filter query.
func (c *Client) Articles(ctx context.Context, params query.Params) (*models.ArticlePage, bool) {
	endpoint := "/articles"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return fetch[models.ArticlePage](ctx, c, endpoint, Options{})
}

// Clip files an article into folder ("default" when empty). The folder goes
// in both the body and the query string; older backends only read the latter.
func (c *Client) Clip(ctx context.Context, id int64, folder string) bool {
	if folder == "" {
		folder = "default"
	}
	endpoint := fmt.Sprintf("/articles/%d/clip?folder=%s", id, url.QueryEscape(folder))
	_, ok := c.Call(ctx, endpoint, Options{
		Method: http.MethodPost,
		Body:   models.ClipRequest{Folder: folder},
	})
	return ok
}

// Unclip removes an article from its clip folder.
func (c *Client) Unclip(ctx context.Context, id int64) bool {
	_, ok := c.Call(ctx, fmt.Sprintf("/articles/%d/clip", id), Options{Method: http.MethodDelete})
	return ok
}

// Clips fetches clipped articles grouped by folder.
func (c *Client) Clips(ctx context.Context) (models.ClipFolders, bool) {
	folders, ok := fetch[models.ClipFolders](ctx, c, "/clips", Options{})
	if !ok {
		return nil, false
	}
	return *folders, true
}

// Search runs the backend's natural-language article search.
func (c *Client) Search(ctx context.Context, q string) (*models.SearchResult, bool) {
	return fetch[models.SearchResult](ctx, c, "/search/ai", Options{
		Method: http.MethodPost,
		Body:   models.SearchRequest{Query: q},
	})
}

// fetch calls endpoint and decodes the response into T.
func fetch[T any](ctx context.Context, c *Client, endpoint string, opts Options) (*T, bool) {
	raw, ok := c.Call(ctx, endpoint, opts)
	if !ok {
		return nil, false
	}

	var out T
	err := json.Unmarshal(raw, &out)
	if err == nil && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		err = errors.New("empty body")
	}
	if err != nil {
		method := opts.Method
		if method == "" {
			method = http.MethodGet
		}
		slog.Warn("backend call failed",
			"method", method,
			"endpoint", endpoint,
			"error", fmt.Errorf("%w: %v", ErrBackendDecode, err),
		)
		return nil, false
	}
	return &out, true
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
}
