package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	usdtRateCacheKey = "usdt-rub"
	usdtRateTTL      = 5 * time.Minute
)

// OxaOptions configures the crypto payment provider client.
type OxaOptions struct {
	APIKey     string
	BaseURL    string
	RateURL    string
	HTTPClient *http.Client
}

// OxaClient creates crypto payments denominated in USDT and answers status
// queries. The RUB→USDT conversion rate is fetched lazily and cached.
type OxaClient struct {
	apiKey     string
	baseURL    string
	rateURL    string
	httpClient *http.Client
	rates      *gocache.Cache
}

// NewOxaClient constructs the crypto provider client.
func NewOxaClient(opts OxaOptions) *OxaClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.oxapay.com"
	}
	rateURL := opts.RateURL
	if rateURL == "" {
		rateURL = "https://api.coingecko.com/api/v3/simple/price?ids=tether&vs_currencies=rub"
	}
	return &OxaClient{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		rateURL:    rateURL,
		httpClient: httpClient,
		rates:      gocache.New(usdtRateTTL, 2*usdtRateTTL),
	}
}

type oxaCreateResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
	TrackID string `json:"trackId"`
	PayLink string `json:"payLink"`
}

type oxaInquiryResponse struct {
	Result int    `json:"result"`
	Status string `json:"status"`
}

// CreatePayment converts the RUB cost to USDT at the cached exchange rate
// and opens a crypto invoice.
func (c *OxaClient) CreatePayment(ctx context.Context, cost int) (Link, error) {
	rate, err := c.usdtRubRate(ctx)
	if err != nil {
		return Link{}, err
	}
	amount := math.Round(float64(cost)/rate*100) / 100

	payload := map[string]any{
		"merchant": c.apiKey,
		"amount":   amount,
		"currency": "USDT",
		"lifeTime": 15,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Link{}, fmt.Errorf("oxa: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/merchants/request", bytes.NewReader(body))
	if err != nil {
		return Link{}, fmt.Errorf("oxa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return Link{}, err
	}
	var decoded oxaCreateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Link{}, fmt.Errorf("oxa: decode response: %w", err)
	}
	if decoded.Result != 100 {
		return Link{}, fmt.Errorf("oxa: create failed: %s", decoded.Message)
	}
	return Link{ID: decoded.TrackID, URL: decoded.PayLink}, nil
}

// CheckPayment reports whether the invoice has been paid.
func (c *OxaClient) CheckPayment(ctx context.Context, id string) (bool, error) {
	payload := map[string]any{
		"merchant": c.apiKey,
		"trackId":  id,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("oxa: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/merchants/inquiry", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("oxa: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return false, err
	}
	var decoded oxaInquiryResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return false, fmt.Errorf("oxa: decode response: %w", err)
	}
	return strings.EqualFold(decoded.Status, "paid"), nil
}

// usdtRubRate returns the cached USDT/RUB rate, refreshing it when stale.
func (c *OxaClient) usdtRubRate(ctx context.Context) (float64, error) {
	if cached, ok := c.rates.Get(usdtRateCacheKey); ok {
		return cached.(float64), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rateURL, nil)
	if err != nil {
		return 0, fmt.Errorf("oxa: build rate request: %w", err)
	}
	raw, err := c.do(req)
	if err != nil {
		return 0, err
	}
	var decoded map[string]map[string]float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0, fmt.Errorf("oxa: decode rate response: %w", err)
	}
	rate := decoded["tether"]["rub"]
	if rate <= 0 {
		return 0, fmt.Errorf("oxa: missing usdt/rub rate")
	}
	c.rates.SetDefault(usdtRateCacheKey, rate)
	return rate, nil
}

func (c *OxaClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oxa: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oxa: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("oxa: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
