package phemex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL         = "https://api.phemex.com"
	DefaultRequestTimeout = 30 * time.Second

	// Exchange-imposed request quota: 2.5 requests per second sustained,
	// bursts up to 200.
	DefaultRateLimit    = 2.5
	DefaultRateCapacity = 200
)

// Options configure a Connection. Zero values fall back to defaults.
type Options struct {
	Credentials    Credentials
	APIURL         string
	RequestTimeout time.Duration
	RateLimit      float64
	RateCapacity   int
	Logger         *zap.Logger
}

// Connection is the primary client entry point for the Phemex REST API.
// It throttles, signs and sends requests; it never retries.
type Connection struct {
	creds   Credentials
	apiURL  string
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Response is the envelope every endpoint answers with. Data is left raw so
// each caller can decode it into its own typed struct with exact decimals.
type Response struct {
	Code int64           `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func New(opt Options) *Connection {
	if opt.Credentials == nil {
		opt.Credentials = PublicCredentials{}
	}
	if opt.APIURL == "" {
		opt.APIURL = DefaultAPIURL
	}
	if opt.RequestTimeout == 0 {
		opt.RequestTimeout = DefaultRequestTimeout
	}
	if opt.RateLimit == 0 {
		opt.RateLimit = DefaultRateLimit
	}
	if opt.RateCapacity == 0 {
		opt.RateCapacity = DefaultRateCapacity
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	return &Connection{
		creds:  opt.Credentials,
		apiURL: strings.TrimRight(opt.APIURL, "/"),
		client: &http.Client{
			Timeout: opt.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opt.RateLimit), opt.RateCapacity),
		log:     opt.Logger,
	}
}

// SendMessage performs a single throttled, signed HTTP round trip and
// decodes the response envelope. It blocks until a rate-limit token is
// available or ctx is done. An envelope code above 200 is returned as an
// error alongside the decoded response.
func (c *Connection) SendMessage(ctx context.Context, method, endpoint string, params url.Values, body []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("phemex: rate limit: %w", err)
	}

	u := c.apiURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("phemex: build request: %w", err)
	}

	if err := c.creds.Sign(req, body); err != nil {
		return nil, fmt.Errorf("phemex: %w", err)
	}

	c.log.Debug("phemex request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("phemex: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("phemex: read response: %w", err)
	}

	var envelope Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("phemex: decode response (http status %d): %w", resp.StatusCode, err)
	}

	if err := checkCode(envelope.Code, envelope.Msg); err != nil {
		return &envelope, err
	}

	return &envelope, nil
}

// OrderPlacer returns the order placer bound to this connection.
func (c *Connection) OrderPlacer() *Placer {
	return &Placer{conn: c}
}
