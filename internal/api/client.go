package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"birdsong/internal/models"
	"birdsong/internal/providers"
	"birdsong/internal/structures"

	json "github.com/goccy/go-json"
)

const (
	TimelinePath = "/detections/timeline"
	QuartersPath = "/detections/quarters"

	maxErrorBody = 512
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// StatusError is returned for any non-2xx response of the detections API.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d: %s", ErrUnexpectedStatus, e.Endpoint, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// TimelineParams are the query parameters of the timeline endpoint.
// Zero values are omitted from the request.
type TimelineParams struct {
	BucketMinutes int
	Limit         int
	Before        string
	After         string
}

func (p TimelineParams) Values() url.Values {
	v := url.Values{}
	if p.BucketMinutes > 0 {
		v.Set("bucket_minutes", strconv.Itoa(p.BucketMinutes))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Before != "" {
		v.Set("before", p.Before)
	}
	if p.After != "" {
		v.Set("after", p.After)
	}
	return v
}

type ClientInterface interface {
	FetchTimeline(ctx context.Context, params TimelineParams) (*models.Page, error)
	FetchQuarters(ctx context.Context, date string) (*models.QuarterPresets, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	return &Client{
		baseURL: strings.TrimRight(conf.Api.BaseUrl, "/"),
		http:    &http.Client{Timeout: conf.Api.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

func (c *Client) FetchTimeline(ctx context.Context, params TimelineParams) (*models.Page, error) {
	var page models.Page
	if err := c.get(ctx, TimelinePath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) FetchQuarters(ctx context.Context, date string) (*models.QuarterPresets, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	var presets models.QuarterPresets
	if err := c.get(ctx, QuartersPath, query, &presets); err != nil {
		return nil, err
	}
	return &presets, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveFetchDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncFetchesTotal(endpoint, "error")
		c.logger.Warnf(providers.TypeFetch, "Request to %s failed: %s", target, err)
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.IncFetchesTotal(endpoint, "status")
		c.logger.Warnf(providers.TypeFetch, "Request to %s returned %d", target, resp.StatusCode)
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.IncFetchesTotal(endpoint, "decode")
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	c.metrics.IncFetchesTotal(endpoint, "ok")
	c.logger.Debugf(providers.TypeFetch, "Fetched %s in %s", target, time.Since(start))
	return nil
}
