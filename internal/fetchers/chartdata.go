package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kavete/health-monitor/internal/models"
)

// Variant names the three chart-data payload shapes the service serves
// and polls.
type Variant string

const (
	VariantVitals       Variant = "vitals"
	VariantWardTrend    Variant = "ward-trend"
	VariantWardSnapshot Variant = "ward-snapshot"
)

// ChartDataClient fetches chart-data payloads. The client performs
// exactly one request per call; retries are the refresh scheduler's
// job, it polls again on the next tick anyway.
type ChartDataClient struct {
	client *resty.Client
}

// NewChartDataClient creates a chart-data client. The timeout bounds a
// single fetch and should stay below the shortest polling interval.
func NewChartDataClient(timeout time.Duration) *ChartDataClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &ChartDataClient{client: client}
}

// get performs one GET and classifies transport and status failures.
func (c *ChartDataClient) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		return nil, networkErr(url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, networkErr(url, fmt.Errorf("chart-data endpoint returned status %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

// FetchVitals fetches a patient vitals payload.
func (c *ChartDataClient) FetchVitals(ctx context.Context, url string) (*models.VitalsChartData, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data models.VitalsChartData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, parseErr(url, err)
	}
	if err := data.Validate(); err != nil {
		return nil, parseErr(url, err)
	}
	return &data, nil
}

// FetchWardTrend fetches a per-ward environmental time series payload.
func (c *ChartDataClient) FetchWardTrend(ctx context.Context, url string) (*models.WardTrendChartData, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data models.WardTrendChartData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, parseErr(url, err)
	}
	if err := data.Validate(); err != nil {
		return nil, parseErr(url, err)
	}
	return &data, nil
}

// FetchWardSnapshot fetches the cross-ward snapshot payload.
func (c *ChartDataClient) FetchWardSnapshot(ctx context.Context, url string) (*models.WardSnapshotChartData, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data models.WardSnapshotChartData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, parseErr(url, err)
	}
	if err := data.Validate(); err != nil {
		return nil, parseErr(url, err)
	}
	return &data, nil
}

// PayloadSource binds the client to one chart-data URL and payload
// shape, yielding normalized refresh payloads for the scheduler.
type PayloadSource struct {
	Client  *ChartDataClient
	Variant Variant
	URL     string
}

// Fetch performs one fetch-and-normalize cycle.
func (s *PayloadSource) Fetch(ctx context.Context) (models.RefreshPayload, error) {
	switch s.Variant {
	case VariantVitals:
		data, err := s.Client.FetchVitals(ctx, s.URL)
		if err != nil {
			return models.RefreshPayload{}, err
		}
		return data.Payload(), nil
	case VariantWardTrend:
		data, err := s.Client.FetchWardTrend(ctx, s.URL)
		if err != nil {
			return models.RefreshPayload{}, err
		}
		return data.Payload(), nil
	case VariantWardSnapshot:
		data, err := s.Client.FetchWardSnapshot(ctx, s.URL)
		if err != nil {
			return models.RefreshPayload{}, err
		}
		return data.Payload(), nil
	default:
		return models.RefreshPayload{}, fmt.Errorf("unknown chart-data variant %q", s.Variant)
	}
}
