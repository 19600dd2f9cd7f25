package detect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

func TestAdapterDetect(t *testing.T) {
	t.Run("Decodes Detections", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/detect" {
				t.Errorf("expected path '/detect', got %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
				t.Errorf("unexpected content type %s", ct)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
				t.Errorf("unexpected auth header %q", auth)
			}

			json.NewEncoder(w).Encode(detectionResponse{
				Success: true,
				Songs: []models.DetectedSong{
					{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh},
					{Title: "Static Noise", Artist: "???", Confidence: models.ConfidenceLow},
				},
			})
		}))
		defer server.Close()

		adapter := NewAdapter(server.URL, AdapterOpts{APIKey: "sk-test"})
		songs, err := adapter.Detect(context.Background(), []byte("png bytes"))

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs including low confidence, got %d", len(songs))
		}
		if songs[0].Title != "Yesterday" {
			t.Errorf("unexpected first song %+v", songs[0])
		}
	})

	t.Run("Classifier Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(detectionResponse{Success: false, Error: "image too dark"})
		}))
		defer server.Close()

		adapter := NewAdapter(server.URL, AdapterOpts{})
		_, err := adapter.Detect(context.Background(), []byte("png bytes"))

		if !errors.Is(err, shared.ErrDetectionFailed) {
			t.Errorf("expected ErrDetectionFailed, got %v", err)
		}
	})

	t.Run("Empty Result Is A Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(detectionResponse{Success: true})
		}))
		defer server.Close()

		adapter := NewAdapter(server.URL, AdapterOpts{})
		_, err := adapter.Detect(context.Background(), []byte("png bytes"))

		if !errors.Is(err, shared.ErrDetectionFailed) {
			t.Errorf("expected ErrDetectionFailed, got %v", err)
		}
	})

	t.Run("Empty Image", func(t *testing.T) {
		adapter := NewAdapter("http://unreachable.invalid", AdapterOpts{})
		_, err := adapter.Detect(context.Background(), nil)

		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Non-Retryable Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		adapter := NewAdapter(server.URL, AdapterOpts{})
		_, err := adapter.Detect(context.Background(), []byte("png bytes"))

		if !errors.Is(err, shared.ErrDetectionFailed) {
			t.Errorf("expected ErrDetectionFailed, got %v", err)
		}
	})

	t.Run("Retries Transient Failures", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(detectionResponse{
				Success: true,
				Songs:   []models.DetectedSong{{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh}},
			})
		}))
		defer server.Close()

		adapter := NewAdapter(server.URL, AdapterOpts{MaxRetries: 2})
		songs, err := adapter.Detect(context.Background(), []byte("png bytes"))

		if err != nil {
			t.Fatalf("expected retry to recover, got %v", err)
		}
		if attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", attempts)
		}
		if len(songs) != 1 {
			t.Errorf("expected 1 song, got %d", len(songs))
		}
	})
}
