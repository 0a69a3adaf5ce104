package unify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"fotomagic/internal/domain"
	"fotomagic/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("unify: api token is required")

// Models the provider runs for the two capabilities.
const (
	restoreModel = "black-forest-labs/flux.2-pro"
	animateModel = "higgsfield-ai/standard"
)

// restorePrompt is the fixed instruction sent with every restoration job.
const restorePrompt = "extremely high detail professional photo restoration and colorization, " +
	"remove all scratches, dust, stains, noise, and damage, enhance facial features and textures, " +
	"realistic skin tones, natural color palette, sharp focus on eyes, improve resolution and clarity, " +
	"cinematic lighting, 8k, masterpiece, photorealistic"

// JobKind distinguishes polling cadence: image jobs resolve faster than video.
type JobKind string

const (
	JobKindImage JobKind = "image"
	JobKindVideo JobKind = "video"
)

// Options configures the generation provider client.
type Options struct {
	Token      string
	BaseURL    string
	UploadURL  string
	HTTPClient *http.Client
	Logger     *infra.Logger
	ImagePoll  time.Duration
	VideoPoll  time.Duration
}

// Client performs HTTP calls to the generation provider and its upload CDN.
type Client struct {
	token      string
	baseURL    string
	uploadURL  string
	httpClient *http.Client
	logger     *infra.Logger
	imagePoll  time.Duration
	videoPoll  time.Duration
	presets    *gocache.Cache
}

// Job identifies a submitted generation. When the provider answers
// synchronously MediaURL is already set and no polling is needed.
type Job struct {
	ID       string
	MediaURL string
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.unifically.com"
	}
	uploadURL := strings.TrimRight(opts.UploadURL, "/")
	if uploadURL == "" {
		uploadURL = "https://files.storagecdn.online"
	}
	imagePoll := opts.ImagePoll
	if imagePoll <= 0 {
		imagePoll = 6 * time.Second
	}
	videoPoll := opts.VideoPoll
	if videoPoll <= 0 {
		videoPoll = 14 * time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		uploadURL:  uploadURL,
		httpClient: httpClient,
		logger:     logger,
		imagePoll:  imagePoll,
		videoPoll:  videoPoll,
		presets:    gocache.New(time.Hour, 2*time.Hour),
	}, nil
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	FileURL string `json:"file_url"`
}

// Upload pushes source media to the storage endpoint and returns its public
// URL. Upload failures are terminal at this layer; the retry policy lives in
// the orchestrator.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: build form: %v", domain.ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: write form: %v", domain.ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: close form: %v", domain.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.uploadURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrUploadFailed, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrUploadFailed, err)
	}
	if !decoded.Success {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadFailed, decoded.Message)
	}
	c.logger.Debug().Str("file_url", decoded.FileURL).Msg("unify: uploaded source media")
	return decoded.FileURL, nil
}

// SubmitRestore starts a restoration job for an uploaded image.
func (c *Client) SubmitRestore(ctx context.Context, imageURL string) (Job, error) {
	return c.submit(ctx, map[string]any{
		"model": restoreModel,
		"input": map[string]any{
			"prompt":     restorePrompt,
			"image_urls": []string{imageURL},
			"quality":    "2K",
		},
	})
}

// SubmitAnimate starts an image-to-video job for an uploaded image.
func (c *Client) SubmitAnimate(ctx context.Context, imageURL, prompt, motionID string) (Job, error) {
	return c.submit(ctx, map[string]any{
		"model": animateModel,
		"input": map[string]any{
			"prompt":          prompt,
			"start_image_url": imageURL,
			"motion_id":       motionID,
		},
	})
}

func (c *Client) submit(ctx context.Context, payload map[string]any) (Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("unify: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return Job{}, fmt.Errorf("unify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, fmt.Errorf("unify: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{}, fmt.Errorf("unify: read response: %w", err)
	}

	var decoded taskEnvelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Job{}, fmt.Errorf("unify: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Job{}, decoded.remoteError(resp.StatusCode)
	}
	if decoded.Code != 0 && decoded.Code != http.StatusOK {
		return Job{}, decoded.remoteError(decoded.Code)
	}
	if url := decoded.Data.Output.url(); url != "" {
		// Synchronous completion, nothing to poll.
		c.logger.Debug().Str("media_url", url).Msg("unify: job completed inline")
		return Job{MediaURL: url}, nil
	}
	c.logger.Debug().Str("task_id", decoded.Data.TaskID).Msg("unify: job submitted")
	return Job{ID: decoded.Data.TaskID}, nil
}

// AwaitCompletion polls the job until the provider reports a terminal state.
// There is no client-side timeout; bounding the overall wait is the caller's
// concern.
func (c *Client) AwaitCompletion(ctx context.Context, job Job, kind JobKind) (string, error) {
	if job.MediaURL != "" {
		return job.MediaURL, nil
	}
	interval := c.imagePoll
	if kind == JobKindVideo {
		interval = c.videoPoll
	}
	for {
		status, err := c.fetchTask(ctx, job.ID)
		if err != nil {
			return "", err
		}
		switch status.Data.Status {
		case "completed":
			return status.Data.Output.url(), nil
		case "failed":
			return "", status.remoteError(0)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (c *Client) fetchTask(ctx context.Context, id string) (*taskEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tasks/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("unify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
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
	var decoded taskEnvelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unify: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decoded.remoteError(resp.StatusCode)
	}
	return &decoded, nil
}
