package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/tgbridge/internal/metrics"
	"github.com/flemzord/tgbridge/internal/security"
)

const (
	maxResponseBytes = 10 << 20 // 10 MiB
	tracerName       = "github.com/flemzord/tgbridge/internal/telegram"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// APIResponse is the envelope of every Bot API response.
type APIResponse[T any] struct {
	OK          bool           `json:"ok"`
	Result      T              `json:"result,omitempty"`
	Description string         `json:"description,omitempty"`
	ErrorCode   int            `json:"error_code,omitempty"`
	RetryAfter  any            `json:"retry_after,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Response is a raw Bot API HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the HTTP status is 2xx and the body says ok.
func (r *Response) OK() bool {
	if r == nil || r.StatusCode < 200 || r.StatusCode > 299 {
		return false
	}
	env, err := DecodeResult[json.RawMessage](r)
	return err == nil && env.OK
}

// DecodeResult decodes the response body. Numbers inside untyped results
// decode as json.Number.
func DecodeResult[T any](r *Response) (APIResponse[T], error) {
	var env APIResponse[T]
	if r == nil {
		return env, errors.New("telegram: decode response: no response")
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return env, fmt.Errorf("telegram: decode response: %w", err)
	}
	return env, nil
}

// retryAfter reads retry_after from the top level or from parameters.
func (r *Response) retryAfter() (float64, bool) {
	env, err := DecodeResult[json.RawMessage](r)
	if err != nil {
		return 0, false
	}
	if secs, ok := number(env.RetryAfter); ok && secs >= 0 {
		return secs, true
	}
	if secs, ok := number(env.Parameters["retry_after"]); ok && secs >= 0 {
		return secs, true
	}
	return 0, false
}

// Client sends Bot API requests. In throw mode failed requests are retried
// with backoff and end in a *ConnectionError; otherwise a single attempt is
// made and failed responses are returned as-is.
type Client struct {
	token      string
	baseURL    string
	testEnv    bool
	throw      bool
	retries    int
	multiplier float64

	http     *http.Client
	logger   *slog.Logger
	metrics  *metrics.Collectors
	tracer   trace.Tracer
	sleep    Sleeper
	redactor *security.Redactor
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records attempts and retries.
func WithMetrics(m *metrics.Collectors) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used for per-send spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) { c.tracer = t }
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(s Sleeper) ClientOption {
	return func(c *Client) { c.sleep = s }
}

// NewClient creates a client for the bot described by cfg. Unset config
// fields take their defaults.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	cfg.ApplyDefaults()
	c := &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		testEnv:    cfg.TestEnvironment,
		throw:      cfg.ThrowHTTPExceptions,
		retries:    max(cfg.RetryHTTPExceptions, 0),
		multiplier: cfg.RetryMultiplier,
		http:       &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		sleep:      sleepContext,
		redactor:   security.NewLiteralRedactor(security.TokenPlaceholder, cfg.Token),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send POSTs params as JSON to endpoint. urlParams, when set, are appended
// to the request URL.
func (c *Client) Send(ctx context.Context, endpoint string, urlParams url.Values, params map[string]any) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "telegram."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("telegram.endpoint", endpoint)),
	)
	defer span.End()

	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		err = fmt.Errorf("telegram: marshal %s request: %w", endpoint, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	target := c.endpointURL(endpoint, urlParams)

	for attempt := 0; ; attempt++ {
		resp, err := c.post(ctx, endpoint, target, payload)
		span.SetAttributes(attribute.Int("telegram.attempts", attempt+1))

		if err == nil && resp.OK() {
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			return resp, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, c.transportError(span, endpoint, err)
		}

		if !c.throw {
			if err != nil {
				return nil, c.transportError(span, endpoint, err)
			}
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			return resp, nil
		}

		if attempt >= c.retries {
			cerr := c.connectionError(endpoint, target, urlParams, params, resp, err)
			span.RecordError(cerr)
			span.SetStatus(codes.Error, "retries exhausted")
			return nil, cerr
		}

		wait := c.backoff(resp, attempt+1)
		c.logger.Warn("telegram request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt+1,
			"status", statusCode(resp),
			"wait", wait,
			"error", err,
		)
		c.metrics.Retry(endpoint)
		if err := c.sleep(ctx, wait); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
}

// FileURL returns the download URL for a file path returned by getFile.
func (c *Client) FileURL(filePath string) string {
	return c.baseURL + "/file/bot" + c.token + "/" + strings.TrimLeft(filePath, "/")
}

// Redact scrubs the bot token from s.
func (c *Client) Redact(s string) string {
	return c.redactor.Redact(s)
}

func (c *Client) endpointURL(endpoint string, query url.Values) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/bot")
	b.WriteString(c.token)
	if c.testEnv {
		b.WriteString("/test")
	}
	b.WriteString("/")
	b.WriteString(endpoint)
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(query.Encode())
	}
	return b.String()
}

func (c *Client) post(ctx context.Context, endpoint, target string, payload []byte) (*Response, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, c.scrubURL(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Request(endpoint, metrics.OutcomeTransportError, time.Since(start))
		return nil, c.scrubURL(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.Request(endpoint, metrics.OutcomeTransportError, time.Since(start))
		return nil, err
	}

	r := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	outcome := metrics.OutcomeSuccess
	if !r.OK() {
		outcome = metrics.OutcomeFailure
	}
	c.metrics.Request(endpoint, outcome, time.Since(start))
	return r, nil
}

// backoff returns the wait before retry number attempt (1-based): the
// server's retry_after on 429, otherwise attempt*multiplier seconds.
func (c *Client) backoff(resp *Response, attempt int) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if secs, ok := resp.retryAfter(); ok {
			return seconds(secs)
		}
	}
	return seconds(float64(attempt) * c.multiplier)
}

// scrubURL removes the token from the request URL carried by a *url.Error,
// so unwrapped causes are as clean as the messages wrapping them.
func (c *Client) scrubURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = c.redactor.Redact(uerr.URL)
	}
	return err
}

func (c *Client) transportError(span trace.Span, endpoint string, err error) error {
	msg := c.redactor.Redact(fmt.Sprintf("telegram: %s request failed: %v", endpoint, err))
	span.SetStatus(codes.Error, msg)
	return &redactedError{msg: msg, err: err}
}

func (c *Client) connectionError(endpoint, target string, urlParams url.Values, params map[string]any, resp *Response, cause error) *ConnectionError {
	ce := &ConnectionError{Endpoint: endpoint, Err: cause}

	description := "No description from Telegram"
	errorCode := "No error code from Telegram"
	parameters := "No parameters from Telegram"
	if resp != nil {
		ce.StatusCode = resp.StatusCode
		if env, err := DecodeResult[json.RawMessage](resp); err == nil {
			if env.Description != "" {
				ce.Description = env.Description
				description = env.Description
			}
			if env.ErrorCode != 0 {
				ce.ErrorCode = env.ErrorCode
				errorCode = strconv.Itoa(env.ErrorCode)
			}
			if len(env.Parameters) > 0 {
				parameters = string(rawJSON(env.Parameters))
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error sending payload to Telegram after %d attempt(s)\n", c.retries+1)
	fmt.Fprintf(&b, "Status Code: %d\n", ce.StatusCode)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Error Code: %s\n", errorCode)
	fmt.Fprintf(&b, "Parameters: %s\n", parameters)
	if cause != nil {
		fmt.Fprintf(&b, "Transport Error: %v\n", cause)
	}
	fmt.Fprintf(&b, "URL: %s\n", target)
	fmt.Fprintf(&b, "URL Parameters: %s\n", rawJSON(flattenQuery(urlParams)))
	fmt.Fprintf(&b, "Post Parameters: %s", rawJSON(params))

	ce.Message = c.redactor.Redact(b.String())
	return ce
}

func flattenQuery(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for key := range q {
		out[key] = q.Get(key)
	}
	return out
}

func statusCode(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
