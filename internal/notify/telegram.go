package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TelegramOptions configures the notification gateway.
type TelegramOptions struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// TelegramClient delivers messages through the Telegram Bot API. A delivery
// failure usually means the user blocked the bot; callers react by marking
// the user inactive.
type TelegramClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramClient constructs the gateway.
func NewTelegramClient(opts TelegramOptions) *TelegramClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramClient{
		token:      opts.Token,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers text to the user's chat.
func (c *TelegramClient) SendMessage(ctx context.Context, userID int64, text string) error {
	payload := map[string]any{
		"chat_id":    userID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode request: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}
	var decoded sendMessageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram: send failed: %s", decoded.Description)
	}
	return nil
}
