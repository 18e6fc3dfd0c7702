package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-orders/models"
)

// ErrUnreachable wraps transport failures: the request never got an HTTP
// response.
var ErrUnreachable = errors.New("server unreachable")

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPClient talks to the order service.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit posts the order. 2xx is accepted even if the body cannot be read,
// since the order is already committed.
func (c *HTTPClient) Submit(ctx context.Context, items []models.LineItem) SubmitResult {
	body, err := json.Marshal(items)
	if err != nil {
		return SubmitResult{Outcome: OutcomeRejected, Err: fmt.Errorf("encode order: %w", err)}
	}

	status, env, err := c.do(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return SubmitResult{Outcome: OutcomeNetworkError, Err: err}
	}

	switch {
	case status >= 200 && status < 300:
		var order models.Order
		if err := json.Unmarshal(env.Data, &order); err != nil {
			return SubmitResult{Outcome: OutcomeAccepted}
		}
		return SubmitResult{Outcome: OutcomeAccepted, Order: &order}
	case status == http.StatusConflict:
		var diagnostics []models.StockDiagnostic
		if err := json.Unmarshal(env.Data, &diagnostics); err != nil {
			return SubmitResult{Outcome: OutcomeRejected, Err: fmt.Errorf("decode stock conflict: %w", err)}
		}
		return SubmitResult{Outcome: OutcomeConflict, Diagnostics: diagnostics}
	default:
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return SubmitResult{Outcome: OutcomeRejected, Err: fmt.Errorf("server returned %d: %s", status, msg)}
	}
}

// Ping reports whether the server answers GET /ping.
func (c *HTTPClient) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: ping returned %d", ErrUnreachable, status)
	}
	return nil
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	status, env, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list products: server returned %d: %s", status, env.Message)
	}
	var products []models.Product
	if err := json.Unmarshal(env.Data, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, env, nil
	}
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, nil
}
