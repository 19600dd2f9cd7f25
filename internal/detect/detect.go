// package detect wraps the external vision classifier that turns captured
// images into song detections.
//
// The classifier is an HTTP service: image bytes in, a JSON list of
// {title, artist, confidence} out. This package owns the wire contract and
// transient-failure retry; deciding what to do with low-confidence or empty
// results belongs to the intake pipeline.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

// Detector identifies songs in a captured image.
type Detector interface {
	// Detect classifies the image and returns all detections, including
	// low-confidence ones. A classifier-reported failure or an empty result
	// is returned as an error wrapping [shared.ErrDetectionFailed].
	Detect(ctx context.Context, image []byte) ([]models.DetectedSong, error)
}

// detectionResponse is the classifier's wire format.
type detectionResponse struct {
	Success bool                  `json:"success"`
	Songs   []models.DetectedSong `json:"songs"`
	Error   string                `json:"error,omitempty"`
}

// Adapter implements [Detector] against the HTTP classifier endpoint.
type Adapter struct {
	baseURL    string
	apiKey     string
	maxRetries uint64
	httpClient *http.Client
}

// AdapterOpts configures an [Adapter].
type AdapterOpts struct {
	APIKey     string
	MaxRetries int
	HTTPClient *http.Client
}

// NewAdapter creates a classifier adapter for the given base URL.
func NewAdapter(baseURL string, opts AdapterOpts) *Adapter {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	maxRetries := uint64(3)
	if opts.MaxRetries > 0 {
		maxRetries = uint64(opts.MaxRetries)
	}

	return &Adapter{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		maxRetries: maxRetries,
		httpClient: httpClient,
	}
}

// Detect posts the image to the classifier and decodes the detection list.
func (a *Adapter) Detect(ctx context.Context, image []byte) ([]models.DetectedSong, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", shared.ErrInvalidInput)
	}

	var decoded detectionResponse

	b := retry.WithMaxRetries(a.maxRetries, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/detect", bytes.NewReader(image))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		if a.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+a.apiKey)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("%w: classifier status %d", shared.ErrAPIRequest, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: classifier status %d", shared.ErrAPIRequest, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDetectionFailed, err)
	}

	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = "classifier reported failure"
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrDetectionFailed, msg)
	}

	if len(decoded.Songs) == 0 {
		return nil, fmt.Errorf("%w: no songs detected", shared.ErrDetectionFailed)
	}

	return decoded.Songs, nil
}
