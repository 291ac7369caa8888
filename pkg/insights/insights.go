// Package insights calls an external text-generation API to produce a short
// written read on a commission offer. Responses are advisory: any failure
// falls back to a canned summary so the campaign page never blocks on the
// upstream service.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const fallbackSummary = "This offer's commission structure is in line with typical creator partnerships. Review the rate, payout cycle and refund policy against your own margins before accepting."

// Client talks to the insights API. A zero BaseURL disables remote calls and
// every analysis returns the fallback summary.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Offer is the shape sent upstream for analysis.
type Offer struct {
	ProductName      string  `json:"product_name"`
	ProductPrice     float64 `json:"product_price"`
	CommissionRate   float64 `json:"commission_rate"`
	PaymentFrequency string  `json:"payment_frequency"`
	RefundPolicy     string  `json:"refund_policy"`
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

type generateResp struct {
	Text string `json:"text"`
}

// AnalyzeOffer returns a short natural-language read on the offer terms.
// Never returns an error to the caller; upstream failure degrades to the
// fallback summary.
func (c *Client) AnalyzeOffer(ctx context.Context, offer Offer) string {
	if c.BaseURL == "" {
		return fallbackSummary
	}
	prompt := fmt.Sprintf(
		"Summarize this commission offer for a creator in 2-3 sentences. Product: %s at $%.2f. Commission rate: %.1f%%. Payout frequency: %s. Refund policy: %s.",
		offer.ProductName, offer.ProductPrice, offer.CommissionRate, offer.PaymentFrequency, offer.RefundPolicy,
	)
	body, _ := json.Marshal(generateReq{Prompt: prompt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return fallbackSummary
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[insights] request: %v", err)
		return fallbackSummary
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[insights] upstream %d: %s", resp.StatusCode, string(respBody))
		return fallbackSummary
	}
	var out generateResp
	if err := json.Unmarshal(respBody, &out); err != nil || out.Text == "" {
		return fallbackSummary
	}
	return out.Text
}
