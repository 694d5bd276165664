package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SmsRuClient places verification calls through sms.ru.
type SmsRuClient struct {
	apiURL string
	apiID  string
	client *http.Client
}

// NewSmsRuClient returns a client posting to apiURL. A zero timeout leaves
// the http.Client without one.
func NewSmsRuClient(apiURL, apiID string, timeout time.Duration) *SmsRuClient {
	return &SmsRuClient{
		apiURL: apiURL,
		apiID:  apiID,
		client: &http.Client{Timeout: timeout},
	}
}

type callResponse struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	StatusText string          `json:"status_text"`
	Code       json.RawMessage `json:"code"`
}

// SendCode asks sms.ru to call phone and returns the code it dialed with.
// Every failure wraps ErrDelivery.
func (c *SmsRuClient) SendCode(ctx context.Context, phone string) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad api url: %v", ErrDelivery, err)
	}

	q := u.Query()
	q.Set("phone", strings.TrimPrefix(phone, "+"))
	q.Set("ip", "-1")
	q.Set("api_id", c.apiID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrDelivery, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s; body: %s", ErrDelivery, resp.Status, string(body))
	}

	var r callResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrDelivery, err)
	}
	if r.Status != "OK" {
		return "", fmt.Errorf("%w: provider status %q (%d %s)", ErrDelivery, r.Status, r.StatusCode, r.StatusText)
	}

	code, err := parseCode(r.Code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return code, nil
}

// parseCode accepts the code as either a JSON string or a JSON number.
func parseCode(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n != "" {
		return n.String(), nil
	}

	return "", fmt.Errorf("missing code in response")
}
