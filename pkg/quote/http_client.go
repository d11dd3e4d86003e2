package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type HTTPClientConfig struct {
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	RetryMaxSeconds       int    `yaml:"retry_max_seconds"`
}

// HTTPClient fetches quotes from a Benzinga-style JSON endpoint:
// GET {base_url}/stock/{SYMBOL}. Provider errors arrive as
// {"status":"error","msg":"..."} with HTTP 200.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	retryMax   time.Duration
}

func NewHTTPClient(cfg *HTTPClientConfig) *HTTPClient {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retryMax := time.Duration(cfg.RetryMaxSeconds) * time.Second
	if retryMax <= 0 {
		retryMax = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryMax:   retryMax,
	}
}

// profilePayload mirrors the provider's loose typing: numeric fields may
// arrive as JSON numbers or as quoted strings.
type profilePayload struct {
	Status  string      `json:"status"`
	Msg     string      `json:"msg"`
	Name    string      `json:"name"`
	Bid     looseNumber `json:"bid"`
	BidSize looseNumber `json:"bidsize"`
	Ask     looseNumber `json:"ask"`
	AskSize looseNumber `json:"asksize"`
}

// looseNumber holds the textual form of a value that may be a JSON number or
// a quoted numeric string.
type looseNumber string

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = looseNumber(s)
		return nil
	}
	*n = looseNumber(b)
	return nil
}

func (c *HTTPClient) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	symbol = NormalizeSymbol(symbol)

	var q *Quote

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = c.retryMax
	err := backoff.Retry(func() error {
		var err error
		q, err = c.fetchOnce(ctx, symbol)
		if err != nil {
			zap.S().Debugf("fetch quote %s fail: %+v", symbol, err)
		}
		return err
	}, backoff.WithContext(boff, ctx))
	if err != nil {
		return nil, err
	}

	return q, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/stock/%s", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	}

	var payload profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if payload.Status == "error" {
		// provider-side rejection, retrying will not help
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrUnavailable, payload.Msg))
	}

	return &Quote{
		Symbol:  symbol,
		Name:    payload.Name,
		Bid:     parsePrice(payload.Bid),
		BidSize: parseSize(payload.BidSize),
		Ask:     parsePrice(payload.Ask),
		AskSize: parseSize(payload.AskSize),
	}, nil
}

// parsePrice quantizes to 2 decimal places; unparseable input becomes zero,
// which the venue treats as an unusable side.
func parsePrice(n looseNumber) decimal.Decimal {
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

func parseSize(n looseNumber) int64 {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int64(f)
	}
	return 0
}
