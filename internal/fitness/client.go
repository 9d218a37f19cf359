// Package fitness retrieves a recent window of activity metrics from the
// Google Fitness aggregation API and normalizes it into per-day values.
package fitness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	fitnessapi "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"

	"fitpulse/internal/auth"
)

// ErrFetch is returned when the aggregation call fails.
var ErrFetch = errors.New("fitness data fetch failed")

const (
	stepDataType      = "com.google.step_count.delta"
	heartRateDataType = "com.google.heart_rate.bpm"

	bucketDuration = 24 * time.Hour
	windowDays     = 14
)

// Client queries the Fitness API on behalf of an authenticated session.
type Client struct {
	auth     *auth.Authenticator
	endpoint string
	now      func() time.Time
}

// Option configures a Client during construction.
type Option func(*Client)

// WithEndpoint overrides the Fitness API base URL, used in tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithClock overrides the wall clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient constructs a Client.
func NewClient(auth *auth.Authenticator, opts ...Option) *Client {
	c := &Client{auth: auth, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyMetrics aggregates step count and heart rate over the inclusive
// [now − 14 days, now] range, bucketed into 24-hour windows, and returns
// one DailyMetric per bucket in upstream order.
func (c *Client) DailyMetrics(ctx context.Context, token *oauth2.Token) ([]DailyMetric, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.auth.HTTPClient(ctx, token))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := fitnessapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	end := c.now()
	start := end.Add(-windowDays * 24 * time.Hour)

	request := &fitnessapi.AggregateRequest{
		AggregateBy: []*fitnessapi.AggregateBy{
			{DataTypeName: stepDataType},
			{DataTypeName: heartRateDataType},
		},
		BucketByTime:    &fitnessapi.BucketByTime{DurationMillis: bucketDuration.Milliseconds()},
		StartTimeMillis: start.UnixMilli(),
		EndTimeMillis:   end.UnixMilli(),
	}

	response, err := svc.Users.Dataset.Aggregate("me", request).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return NormalizeBuckets(response.Bucket), nil
}
