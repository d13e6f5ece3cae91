package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultDetailConcurrency = 8
	maxErrorBodyLength       = 256
)

// Config holds provider connection configuration
type Config struct {
	BaseURL           string
	Token             string
	Instance          string
	Timeout           time.Duration
	RetryCount        int
	RetryWaitTime     time.Duration
	RetryMaxWaitTime  time.Duration
	DetailConcurrency int
	UserAgent         string
}

// RequestObserver receives the outcome of every provider call.
// statusCode is 0 when the request failed before a response arrived.
type RequestObserver interface {
	ObserveUpstream(endpoint string, statusCode int, duration time.Duration)
}

// JobQuery filters a job listing
type JobQuery struct {
	Limit       int
	Pending     *bool
	Backend     string
	WithMetrics bool
}

// Client reads job and backend documents from the provider's REST API
type Client struct {
	http     *resty.Client
	config   *Config
	logger   *slog.Logger
	observer RequestObserver
	group    singleflight.Group
}

// NewClient creates a new provider client
func NewClient(config *Config, logger *slog.Logger, observer RequestObserver) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWaitTime).
		SetRetryMaxWaitTime(config.RetryMaxWaitTime).
		AddRetryCondition(retryCondition)

	if config.Token != "" {
		httpClient.SetAuthToken(config.Token)
	}
	if config.Instance != "" {
		httpClient.SetHeader("Service-CRN", config.Instance)
	}
	if config.UserAgent != "" {
		httpClient.SetHeader("User-Agent", config.UserAgent)
	}

	logger.Info("Provider client initialized",
		slog.String("base_url", config.BaseURL),
		slog.Duration("timeout", timeout),
		slog.Int("retry_count", config.RetryCount),
	)

	return &Client{
		http:     httpClient,
		config:   config,
		logger:   logger,
		observer: observer,
	}, nil
}

// retryCondition retries throttled and server-side failures
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Jobs lists the most recent jobs
func (c *Client) Jobs(ctx context.Context, query JobQuery) ([]*Job, error) {
	params := map[string]string{}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}
	if query.Pending != nil {
		params["pending"] = strconv.FormatBool(*query.Pending)
	}
	if query.Backend != "" {
		params["backend"] = query.Backend
	}

	res, err := c.getJSON(ctx, "list_jobs", "/jobs", params, nil)
	if err != nil {
		return nil, err
	}

	docs := res.Get("jobs")
	if !docs.Exists() && res.IsArray() {
		docs = res
	}
	if !docs.IsArray() {
		return nil, fmt.Errorf("%w: jobs is not an array", ErrFieldType)
	}

	items := docs.Array()
	jobs := make([]*Job, 0, len(items))
	for _, doc := range items {
		jobs = append(jobs, newJob(doc, c.config.Instance))
	}

	if query.WithMetrics {
		c.loadMetrics(ctx, jobs)
	}

	c.logger.Debug("Listed provider jobs",
		slog.Int("count", len(jobs)),
		slog.Int("limit", query.Limit),
	)

	return jobs, nil
}

// Job fetches a single job together with its metrics document
func (c *Client) Job(ctx context.Context, jobID string) (*Job, error) {
	res, err := c.getJSON(ctx, "get_job", "/jobs/{id}", nil, map[string]string{"id": jobID})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, err
	}

	job := newJob(res, c.config.Instance)
	c.loadMetrics(ctx, []*Job{job})
	return job, nil
}

// Backends lists the backends visible to the configured instance, with their
// status and configuration. Concurrent calls share one upstream fetch.
func (c *Client) Backends(ctx context.Context) ([]*Backend, error) {
	// The shared fetch must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("backends", func() (any, error) {
		return c.fetchBackends(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Backend), nil
}

// BackendNames lists backend names without fetching any detail document
func (c *Client) BackendNames(ctx context.Context) ([]string, error) {
	res, err := c.getJSON(ctx, "list_backends", "/backends", nil, nil)
	if err != nil {
		return nil, err
	}

	entries := res.Get("devices")
	if !entries.Exists() && res.IsArray() {
		entries = res
	}
	if !entries.IsArray() {
		return nil, fmt.Errorf("%w: devices is not an array", ErrFieldType)
	}

	var names []string
	for _, entry := range entries.Array() {
		if name := backendName(entry); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Ping verifies the provider is reachable and accepts the credentials
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.BackendNames(ctx)
	return err
}

func (c *Client) fetchBackends(ctx context.Context) ([]*Backend, error) {
	names, err := c.BackendNames(ctx)
	if err != nil {
		return nil, err
	}

	backends := make([]*Backend, len(names))
	for i, name := range names {
		backends[i] = newBackend(name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailConcurrency())
	for _, b := range backends {
		g.Go(func() error {
			pathParams := map[string]string{"name": b.name}
			b.status, b.statusErr = c.getJSON(gctx, "backend_status", "/backends/{name}/status", nil, pathParams)
			b.config, b.configErr = c.getJSON(gctx, "backend_configuration", "/backends/{name}/configuration", nil, pathParams)

			if b.statusErr != nil || b.configErr != nil {
				c.logger.Warn("Backend details incomplete",
					slog.String("backend", b.name),
					slog.Any("status_error", b.statusErr),
					slog.Any("configuration_error", b.configErr),
				)
			}
			// Detail failures stay with their backend; the listing goes on.
			return nil
		})
	}
	_ = g.Wait()

	return backends, nil
}

func (c *Client) loadMetrics(ctx context.Context, jobs []*Job) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailConcurrency())
	for _, job := range jobs {
		id, err := job.JobID()
		if err != nil {
			job.setMetrics(gjson.Result{}, err)
			continue
		}
		g.Go(func() error {
			job.setMetrics(c.getJSON(gctx, "job_metrics", "/jobs/{id}/metrics", nil, map[string]string{"id": id}))
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Client) detailConcurrency() int {
	if c.config.DetailConcurrency > 0 {
		return c.config.DetailConcurrency
	}
	return defaultDetailConcurrency
}

// getJSON performs a GET and returns the parsed body
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query, pathParams map[string]string) (gjson.Result, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Error("Provider request failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err),
		)
		return gjson.Result{}, fmt.Errorf("failed to call provider %s: %w", endpoint, err)
	}
	c.observe(endpoint, resp.StatusCode(), time.Since(start))

	if resp.IsError() {
		body := resp.String()
		if len(body) > maxErrorBodyLength {
			body = body[:maxErrorBodyLength]
		}
		return gjson.Result{}, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Body:       body,
		}
	}

	raw := resp.Body()
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("provider %s returned invalid JSON", endpoint)
	}
	return gjson.ParseBytes(raw), nil
}

func (c *Client) observe(endpoint string, statusCode int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(endpoint, statusCode, d)
	}
}
