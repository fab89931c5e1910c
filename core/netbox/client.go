package netbox

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"netbox-reconciler/core/utils"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Object is a decoded NetBox object as returned by the API.
type Object map[string]any

// ID returns the remote identifier of the object.
func (o Object) ID() (int, bool) {
	v, ok := o["id"]
	if !ok || v == nil {
		return 0, false
	}
	return utils.ToInt(v), true
}

// Client defines the operations the reconciler needs from NetBox.
// Endpoints are collection paths relative to /api/, e.g. "dcim/platforms".
type Client interface {
	// List returns every object of the collection matching filter (all pages).
	List(ctx context.Context, endpoint string, filter map[string]string) ([]Object, error)
	// Create posts a new object and returns it as stored by NetBox.
	Create(ctx context.Context, endpoint string, attrs map[string]any) (Object, error)
	// Update patches the given fields of an object.
	Update(ctx context.Context, endpoint string, id int, delta map[string]any) (Object, error)
	// Delete removes an object.
	Delete(ctx context.Context, endpoint string, id int) error
}

// Option customizes the HTTP client.
type Option func(c *httpClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBackoff sets the interval bounds used when retrying list requests.
func WithBackoff(initialInterval, maxInterval time.Duration) Option {
	return func(c *httpClient) {
		c.initialInterval = initialInterval
		c.maxInterval = maxInterval
	}
}

type httpClient struct {
	apiRoot         *url.URL
	token           Secret
	http            *http.Client
	limiter         *rate.Limiter
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

// listPage is the paginated envelope NetBox wraps list responses in.
type listPage struct {
	Count   int      `json:"count"`
	Next    *string  `json:"next"`
	Results []Object `json:"results"`
}

// NewClient creates a NetBox client from the configuration.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("netbox url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid netbox url %q: %w", cfg.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid netbox url %q: scheme must be http or https", cfg.URL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	apiRoot := base.JoinPath("api")

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: !cfg.ValidateCerts}, //nolint:gosec // user opt-out
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if int(cfg.RateLimit) > 1 {
			burst = int(cfg.RateLimit)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	c := &httpClient{
		apiRoot: apiRoot,
		token:   cfg.Token,
		http: &http.Client{
			Timeout:   timeoutDuration,
			Transport: transport,
		},
		limiter:         rate.NewLimiter(limit, burst),
		maxRetries:      cfg.MaxRetries,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
		logger:          logger.Named("netbox"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *httpClient) collectionURL(endpoint string) *url.URL {
	u := c.apiRoot.JoinPath(strings.Trim(endpoint, "/"))
	u.Path += "/"
	return u
}

func (c *httpClient) objectURL(endpoint string, id int) *url.URL {
	u := c.apiRoot.JoinPath(strings.Trim(endpoint, "/"), strconv.Itoa(id))
	u.Path += "/"
	return u
}

// List implements Client.
func (c *httpClient) List(ctx context.Context, endpoint string, filter map[string]string) ([]Object, error) {
	u := c.collectionURL(endpoint)
	q := u.Query()
	for k, v := range filter {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var objects []Object
	next := u.String()
	for next != "" {
		var page listPage
		if err := c.retryRead(ctx, next, &page); err != nil {
			return nil, err
		}
		objects = append(objects, page.Results...)

		next = ""
		if page.Next != nil && *page.Next != "" {
			nextURL, err := c.nextPageURL(endpoint, *page.Next)
			if err != nil {
				return nil, err
			}
			next = nextURL
		}
	}

	c.logger.Debug("listed objects",
		zap.String("endpoint", endpoint),
		zap.Any("filter", filter),
		zap.Int("count", len(objects)),
	)
	return objects, nil
}

// nextPageURL keeps only the query of a "next" link and applies it to the
// collection URL, so the token is only ever sent to the configured NetBox.
func (c *httpClient) nextPageURL(endpoint, link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", link, err)
	}
	u := c.collectionURL(endpoint)
	u.RawQuery = parsed.RawQuery
	return u.String(), nil
}

// retryRead performs a GET, retrying on connection failures and 5xx/429 answers.
func (c *httpClient) retryRead(ctx context.Context, rawURL string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval
	b.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		err := c.do(ctx, http.MethodGet, rawURL, nil, out)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("read failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	retries := c.maxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
}

func retryable(err error) bool {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return !errors.Is(connErr.Err, context.Canceled) && !isCertificateError(connErr.Err)
	}
	status, _ := StatusOf(err)
	return status >= 500 || status == http.StatusTooManyRequests
}

// isCertificateError reports TLS certificate verification failures.
func isCertificateError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

// Create implements Client.
func (c *httpClient) Create(ctx context.Context, endpoint string, attrs map[string]any) (Object, error) {
	var obj Object
	if err := c.do(ctx, http.MethodPost, c.collectionURL(endpoint).String(), attrs, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Update implements Client.
func (c *httpClient) Update(ctx context.Context, endpoint string, id int, delta map[string]any) (Object, error) {
	var obj Object
	if err := c.do(ctx, http.MethodPatch, c.objectURL(endpoint, id).String(), delta, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Delete implements Client.
func (c *httpClient) Delete(ctx context.Context, endpoint string, id int) error {
	return c.do(ctx, http.MethodDelete, c.objectURL(endpoint, id).String(), nil, nil)
}

func (c *httpClient) do(ctx context.Context, method, rawURL string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ConnectionError{Method: method, URL: rawURL, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token.Reveal())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectionError{Method: method, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Method: method, URL: rawURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       truncate(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprintf("invalid JSON response: %v", err),
		}
	}
	return nil
}
