package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

// DefaultTimeout bounds a single prediction request.
const DefaultTimeout = 5 * time.Second

// HTTP calls a remote model server that scores split points.
//
//	POST {URL} {"token": "..."} -> {"probabilities": [...]}
type HTTP struct {
	URL    string
	APIKey string

	HTTPClient *http.Client
}

type predictRequest struct {
	Token string `json:"token"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Predict sends token to the model server.
func (c *HTTP) Predict(ctx context.Context, token string) ([]float64, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("oracle: %w: url required", internalerr.ErrModelUnavailable)
	}
	body, err := json.Marshal(predictRequest{Token: token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w: %v", internalerr.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	var payload predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("oracle: decode response (status %d): %w", resp.StatusCode, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("oracle error: %s", payload.Error.Message)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}
	for _, p := range payload.Probabilities {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("oracle: %w: probability %v out of range", internalerr.ErrMalformedCandidate, p)
		}
	}
	return payload.Probabilities, nil
}

func (c *HTTP) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}
