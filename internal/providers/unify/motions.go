package unify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Motion is an animation preset exposed by the provider.
type Motion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const motionsCacheKey = "higgsfield-motions"

type motionsResponse struct {
	Motions []Motion `json:"motions"`
	Data    struct {
		Motions []Motion `json:"motions"`
	} `json:"data"`
}

// Motions lists the provider's animation presets. The list changes rarely, so
// results are cached in-process for an hour.
func (c *Client) Motions(ctx context.Context) ([]Motion, error) {
	if cached, ok := c.presets.Get(motionsCacheKey); ok {
		return cached.([]Motion), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/higgsfield/motions", nil)
	if err != nil {
		return nil, fmt.Errorf("unify: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("size", "60")
	q.Set("preset_family", "higgsfield")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unify: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unify: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unify: motions status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded motionsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unify: decode response: %w", err)
	}
	motions := decoded.Motions
	if len(motions) == 0 {
		motions = decoded.Data.Motions
	}
	c.presets.SetDefault(motionsCacheKey, motions)
	return motions, nil
}
