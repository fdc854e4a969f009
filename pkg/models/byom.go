package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anofox/tsforge/pkg/engerr"
)

func init() {
	Register("BYOM", func(p Params) (Forecaster, error) {
		endpoint := p["byom_endpoint"]
		if endpoint == "" {
			return nil, engerr.New(engerr.InvalidArgument, "BYOM.New", "byom_endpoint parameter is required")
		}
		return NewBYOMForecaster(endpoint), nil
	})
}

// byomRequest/byomResponse mirror the bring-your-own-model HTTP contract:
// POST the fit series and a horizon, get back that many forecasted values.
type byomRequest struct {
	Now     string    `json:"now"`
	Horizon int       `json:"horizon"`
	Values  []float64 `json:"values"`
}

type byomResponse struct {
	Values []float64 `json:"values"`
}

// BYOMForecaster delegates Fit/Forecast to an external HTTP service
// implementing the bring-your-own-model contract, letting any remote
// forecaster (Prophet, a hosted neural model, a customer's own service)
// plug into the catalog under the same Forecaster interface as every
// built-in model.
type BYOMForecaster struct {
	endpoint string
	client   *http.Client

	values []float64
}

// NewBYOMForecaster builds a delegating forecaster against the given
// endpoint, using a bounded-idle HTTP client the same as the teacher's
// original client configuration.
func NewBYOMForecaster(endpoint string) *BYOMForecaster {
	return &BYOMForecaster{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
	}
}

// Fit is a no-op beyond remembering the series: the remote service performs
// any training on the values sent with each Forecast call.
func (m *BYOMForecaster) Fit(values []float64) error {
	const op = "BYOM.Fit"
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "values must not be empty")
	}
	m.values = append([]float64(nil), values...)
	return nil
}

// Forecast posts the fitted series and horizon to the remote endpoint and
// returns its predicted values.
func (m *BYOMForecaster) Forecast(steps int) ([]float64, error) {
	const op = "BYOM.Forecast"
	if m.values == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	if steps <= 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "steps must be > 0")
	}

	req := byomRequest{
		Now:     time.Now().UTC().Format(time.RFC3339),
		Horizon: steps,
		Values:  m.values,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, engerr.Wrap(engerr.InvalidArgument, op, "marshal request", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, engerr.Wrap(engerr.NumericalFailure, op, "create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, engerr.Wrap(engerr.NumericalFailure, op, "http request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, engerr.New(engerr.NumericalFailure, op, fmt.Sprintf("http %d: %s", resp.StatusCode, string(limited)))
	}

	var parsed byomResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, engerr.Wrap(engerr.NumericalFailure, op, "decode response", err)
	}
	if len(parsed.Values) != steps {
		return nil, engerr.New(engerr.NumericalFailure, op, fmt.Sprintf("expected %d predictions, got %d", steps, len(parsed.Values)))
	}
	return parsed.Values, nil
}
