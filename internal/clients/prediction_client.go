// Package clients holds adapters for external market-data services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/services/prediction"
	"github.com/vadiminshakov/papertrade/pkg/retrier"
)

const predictionTimeout = 30 * time.Second

// PredictionClient fetches drift/volatility predictions for a batch of
// assets from a remote HTTP service.
type PredictionClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewPredictionClient creates a client for the prediction API.
func NewPredictionClient(apiURL, apiKey string) *PredictionClient {
	return &PredictionClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: predictionTimeout,
		},
		retrier: retrier.New(
			retrier.WithMaxRetries(2),
			retrier.WithInitialInterval(time.Second),
		),
	}
}

type predictionRequest struct {
	Assets []prediction.AssetInfo `json:"assets"`
}

type predictionResponse struct {
	Predictions []predictionPayload `json:"predictions"`
}

type predictionPayload struct {
	Symbol          string  `json:"symbol"`
	DailyVolatility float64 `json:"dailyVolatility"`
	Trend           string  `json:"trend"`
	AnnualReturn    float64 `json:"annualReturn"`
	RiskLevel       string  `json:"riskLevel"`
}

// FetchBatch implements prediction.Fetcher. Any failure is returned to the
// cache, which treats it as "keep what you have"; nothing here is
// user-visible.
func (c *PredictionClient) FetchBatch(ctx context.Context, assets []prediction.AssetInfo) ([]domain.MarketPrediction, error) {
	if c.apiURL == "" {
		return nil, errors.New("prediction API URL is empty")
	}

	body, err := json.Marshal(predictionRequest{Assets: assets})
	if err != nil {
		return nil, errors.Wrap(err, "marshal prediction request")
	}

	var decoded predictionResponse
	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(err, "create prediction request")
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "send prediction request")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return errors.Errorf("prediction API returned %d: %s", resp.StatusCode, payload)
		}

		return json.NewDecoder(resp.Body).Decode(&decoded)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	predictions := make([]domain.MarketPrediction, 0, len(decoded.Predictions))
	for _, p := range decoded.Predictions {
		direction := domain.Trend(p.Trend)
		if !direction.IsValid() {
			direction = domain.TrendNeutral
		}
		predictions = append(predictions, domain.MarketPrediction{
			Symbol:          p.Symbol,
			DailyVolatility: p.DailyVolatility,
			Trend:           direction,
			AnnualReturn:    p.AnnualReturn,
			Risk:            domain.RiskLevel(p.RiskLevel),
			FetchedAt:       now,
		})
	}

	return predictions, nil
}
