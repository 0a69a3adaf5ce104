package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Link is a payment the user can complete in a browser.
type Link struct {
	ID  string
	URL string
}

// YooKassaOptions configures the card payment provider client.
type YooKassaOptions struct {
	ShopID     string
	SecretKey  string
	BaseURL    string
	ReturnURL  string
	HTTPClient *http.Client
}

// YooKassaClient creates card payments and answers status queries.
type YooKassaClient struct {
	shopID     string
	secretKey  string
	baseURL    string
	returnURL  string
	httpClient *http.Client
}

// NewYooKassaClient constructs the card provider client.
func NewYooKassaClient(opts YooKassaOptions) *YooKassaClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.yookassa.ru/v3"
	}
	returnURL := opts.ReturnURL
	if returnURL == "" {
		returnURL = "https://t.me"
	}
	return &YooKassaClient{
		shopID:     opts.ShopID,
		secretKey:  opts.SecretKey,
		baseURL:    baseURL,
		returnURL:  returnURL,
		httpClient: httpClient,
	}
}

type yooKassaPayment struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
	Description string `json:"description"`
}

// CreatePayment registers a card payment for the given RUB cost and returns
// its id and confirmation link.
func (c *YooKassaClient) CreatePayment(ctx context.Context, cost int, description string) (Link, error) {
	payload := map[string]any{
		"amount": map[string]any{
			"value":    strconv.Itoa(cost) + ".00",
			"currency": "RUB",
		},
		"capture": true,
		"confirmation": map[string]any{
			"type":       "redirect",
			"return_url": c.returnURL,
		},
		"description": description,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Link{}, fmt.Errorf("yookassa: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return Link{}, fmt.Errorf("yookassa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())
	req.SetBasicAuth(c.shopID, c.secretKey)

	payment, err := c.do(req)
	if err != nil {
		return Link{}, err
	}
	return Link{ID: payment.ID, URL: payment.Confirmation.ConfirmationURL}, nil
}

// CheckPayment reports whether the payment has settled. Safe to call
// repeatedly; it is a pure status query.
func (c *YooKassaClient) CheckPayment(ctx context.Context, id string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+id, nil)
	if err != nil {
		return false, fmt.Errorf("yookassa: build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)

	payment, err := c.do(req)
	if err != nil {
		return false, err
	}
	return payment.Status == "succeeded", nil
}

func (c *YooKassaClient) do(req *http.Request) (*yooKassaPayment, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yookassa: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yookassa: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("yookassa: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var payment yooKassaPayment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("yookassa: decode response: %w", err)
	}
	return &payment, nil
}
