// Package langmodel integrates an external masked-language-model service
// for context-aware token prediction. The service is optional: a nil or
// unavailable client simply disables context correction.
package langmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Prediction is one ranked filler for a masked token position.
type Prediction struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

// Client calls a fill-mask HTTP service. The service receives the sentence
// tokens with one position masked and returns ranked candidate fillers.
type Client struct {
	endpoint string
	model    string
	topK     int
	client   *http.Client

	probeOnce sync.Once
	reachable bool
}

// NewClient builds a client for the fill-mask service at endpoint. If model
// is empty the service default is used.
func NewClient(endpoint, model string) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		topK:     3,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type fillMaskRequest struct {
	Model     string   `json:"model,omitempty"`
	Tokens    []string `json:"tokens"`
	MaskIndex int      `json:"mask_index"`
	TopK      int      `json:"top_k"`
}

type fillMaskResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Available reports whether the fill-mask service answers its health probe.
// The probe runs once; the result is cached for the life of the client.
func (c *Client) Available() bool {
	if c == nil || c.endpoint == "" {
		return false
	}
	c.probeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
		if err != nil {
			return
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return
		}
		defer resp.Body.Close()
		c.reachable = resp.StatusCode == http.StatusOK
	})
	return c.reachable
}

// PredictMasked asks the service for the most likely fillers at maskIndex
// within tokens. Predictions come back ranked best first.
func (c *Client) PredictMasked(ctx context.Context, tokens []string, maskIndex int) ([]Prediction, error) {
	if maskIndex < 0 || maskIndex >= len(tokens) {
		return nil, fmt.Errorf("mask index %d out of range for %d tokens", maskIndex, len(tokens))
	}
	body, err := json.Marshal(fillMaskRequest{
		Model:     c.model,
		Tokens:    tokens,
		MaskIndex: maskIndex,
		TopK:      c.topK,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal fill-mask request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/fill-mask", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fill-mask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fill-mask request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read fill-mask response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fill-mask service returned %d: %s", resp.StatusCode, data)
	}
	var parsed fillMaskResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse fill-mask response: %w", err)
	}
	return parsed.Predictions, nil
}
