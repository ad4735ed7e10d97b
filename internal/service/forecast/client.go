package forecast

import (
	"context"
	"fmt"
	"time"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"
	xhttp "AShareLab/pkg/http"
)

// Client calls the optional time-series forecasting sidecar. The service is
// best-effort: callers treat any error as "no forecast" and continue.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// New builds a forecast client with the given base URL and timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type predictRequest struct {
	TSCode  string       `json:"ts_code"`
	Horizon string       `json:"horizon"`
	Bars    []models.Bar `json:"bars"`
}

type predictResponse struct {
	Forecast *models.Forecast `json:"forecast"`
	Error    string           `json:"error,omitempty"`
}

// Predict posts the price series and returns the model's forecast.
func (c *Client) Predict(ctx context.Context, tsCode string, bars []models.Bar, horizon string) (*models.Forecast, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("forecast service not configured")
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("forecast: no price data for %s", tsCode)
	}

	var out predictResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/predict",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: predictRequest{TSCode: tsCode, Horizon: horizon, Bars: bars},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("forecast predict %s: %w", tsCode, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("forecast predict %s: %s", tsCode, out.Error)
	}
	if out.Forecast == nil {
		return nil, fmt.Errorf("forecast predict %s: empty result", tsCode)
	}
	return out.Forecast, nil
}

var _ drepo.Forecaster = (*Client)(nil)
