package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL       = "https://api.twilio.com"
	DefaultChannelPrefix = "whatsapp:"
	maxResponseSizeBytes = 1 << 20
)

type Config struct {
	BaseURL       string        `split_words:"true" default:"https://api.twilio.com"`
	AccountSID    string        `envconfig:"ACCOUNT_SID"`
	AuthToken     string        `split_words:"true"`
	FromNumber    string        `split_words:"true"`
	ChannelPrefix string        `split_words:"true" default:"whatsapp:"`
	Timeout       time.Duration `split_words:"true" default:"10s"`
}

// Client sends outbound messages through the Twilio Messages API.
type Client struct {
	baseURL       string
	accountSID    string
	authToken     string
	from          string
	channelPrefix string
	httpClient    *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid twilio base url: %w", err)
	}
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("twilio account sid is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio auth token is required")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, errors.New("twilio from number is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:       baseURL,
		accountSID:    strings.TrimSpace(cfg.AccountSID),
		authToken:     strings.TrimSpace(cfg.AuthToken),
		channelPrefix: cfg.ChannelPrefix,
		httpClient:    &http.Client{Timeout: timeout},
	}
	c.from = c.address(cfg.FromNumber)

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	c, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

type sendResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send delivers body to the phone number and returns the provider message SID.
func (c *Client) Send(ctx context.Context, to string, body string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("send message: recipient is empty")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("send message: body is empty")
	}

	form := url.Values{}
	form.Set("To", c.address(to))
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute twilio request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}

	var parsed sendResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if parsed.Message != "" {
			return "", fmt.Errorf("twilio http status=%d code=%d: %s", resp.StatusCode, parsed.Code, parsed.Message)
		}
		return "", fmt.Errorf("twilio http status=%d body=%s", resp.StatusCode, string(raw))
	}
	return parsed.SID, nil
}

// address prefixes a bare number with the channel scheme, leaving prefixed input alone.
func (c *Client) address(number string) string {
	number = strings.TrimSpace(number)
	if c.channelPrefix == "" || strings.Contains(number, ":") {
		return number
	}
	return c.channelPrefix + number
}
