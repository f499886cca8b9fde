package notify

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

// TwilioClient sends WhatsApp messages through the Twilio Messages REST API.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewTwilioClient(accountSID, authToken, from, baseURL string) *TwilioClient {
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TwilioClient) Name() string { return "whatsapp" }

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *TwilioClient) Send(ctx context.Context, msg Message) error {
	to := FormatPhone(msg.Phone)
	if to == "" {
		return ErrNoRecipient
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+FormatPhone(c.from))
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read twilio response: %w", err)
	}
	var out twilioResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode twilio response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio error %d: %s", out.Code, out.Message)
	}
	return nil
}
