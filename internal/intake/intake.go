// package intake turns captured images into queued songs.
//
// The pipeline runs detection per image, stages all usable detections, and
// appends them to the queue in one atomic batch after the whole capture set
// is processed. Images that yield nothing usable are flagged immediately and
// independently, so the queue never observes a half-processed image.
package intake

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/songsnap/songsnap/internal/detect"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/store"
)

// ImageSource yields the bytes for one captured image.
type ImageSource struct {
	URI  string
	Data []byte
}

// Queue is the queue surface the pipeline needs.
type Queue interface {
	AppendBatch(newSongs []store.NewSong) ([]*models.QueuedSong, error)
}

// Flags is the flagged-image surface the pipeline needs.
type Flags interface {
	Add(imageURI, cause string) (*models.FlaggedImage, error)
}

// ImageResult records how one captured image fared.
type ImageResult struct {
	ImageURI string `json:"image_uri"`
	Queued   int    `json:"queued"`
	Dropped  int    `json:"dropped"` // low-confidence detections discarded
	Flagged  bool   `json:"flagged"`
	Error    string `json:"error,omitempty"`
}

// Result aggregates a full intake run.
type Result struct {
	Images       []ImageResult        `json:"images"`
	QueuedSongs  []*models.QueuedSong `json:"queued_songs"`
	FlaggedCount int                  `json:"flagged_count"`
}

// Pipeline is the batch intake pipeline.
type Pipeline struct {
	detector detect.Detector
	queue    Queue
	flags    Flags
	logger   *log.Logger

	// KeepLowConfidence queues low-confidence detections instead of
	// dropping them. Off by default.
	KeepLowConfidence bool
}

// NewPipeline creates a Pipeline with injected collaborators.
func NewPipeline(detector detect.Detector, queue Queue, flags Flags, logger *log.Logger) *Pipeline {
	return &Pipeline{
		detector: detector,
		queue:    queue,
		flags:    flags,
		logger:   logger,
	}
}

// Process runs detection over all images and flushes the staged songs in a
// single atomic append. Per-image failures are flagged and do not stop the
// run; only a store failure aborts.
func (p *Pipeline) Process(ctx context.Context, images []ImageSource) (*Result, error) {
	result := &Result{}
	var staged []store.NewSong

	for _, img := range images {
		imageResult := ImageResult{ImageURI: img.URI}

		detections, err := p.detector.Detect(ctx, img.Data)
		if err != nil {
			p.logger.Warn("flagging image", "uri", img.URI, "err", err)
			if _, flagErr := p.flags.Add(img.URI, err.Error()); flagErr != nil {
				return nil, flagErr
			}
			imageResult.Flagged = true
			imageResult.Error = err.Error()
			result.FlaggedCount++
			result.Images = append(result.Images, imageResult)
			continue
		}

		usable := 0
		for _, song := range detections {
			if !song.Confidence.Usable() && !p.KeepLowConfidence {
				imageResult.Dropped++
				continue
			}
			staged = append(staged, store.NewSong{
				Title:          song.Title,
				Artist:         song.Artist,
				SourceImageURI: img.URI,
			})
			usable++
		}

		if usable == 0 {
			// Every detection was discarded: treat like a failed image so
			// the capture is not silently lost.
			cause := fmt.Sprintf("no usable detections (%d low confidence)", imageResult.Dropped)
			if _, flagErr := p.flags.Add(img.URI, cause); flagErr != nil {
				return nil, flagErr
			}
			imageResult.Flagged = true
			imageResult.Error = cause
			result.FlaggedCount++
		} else {
			imageResult.Queued = usable
		}

		result.Images = append(result.Images, imageResult)
	}

	if len(staged) > 0 {
		created, err := p.queue.AppendBatch(staged)
		if err != nil {
			return nil, err
		}
		result.QueuedSongs = created
		p.logger.Info("queued detected songs", "count", len(created), "images", len(images))
	}

	return result, nil
}
