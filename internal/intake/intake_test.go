package intake

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/store"
	mocks "github.com/songsnap/songsnap/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue records batches in memory.
type fakeQueue struct {
	batches [][]store.NewSong
	err     error
}

func (q *fakeQueue) AppendBatch(newSongs []store.NewSong) ([]*models.QueuedSong, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.batches = append(q.batches, newSongs)
	queued := make([]*models.QueuedSong, len(newSongs))
	for i, s := range newSongs {
		queued[i] = &models.QueuedSong{ID: s.Title, Title: s.Title, Artist: s.Artist, SourceImageURI: s.SourceImageURI}
	}
	return queued, nil
}

// fakeFlags records flagged images in memory.
type fakeFlags struct {
	flags []models.FlaggedImage
	err   error
}

func (f *fakeFlags) Add(imageURI, cause string) (*models.FlaggedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	flag := models.FlaggedImage{ID: imageURI, ImageURI: imageURI, Error: cause}
	f.flags = append(f.flags, flag)
	return &flag, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func images(uris ...string) []ImageSource {
	srcs := make([]ImageSource, len(uris))
	for i, uri := range uris {
		srcs[i] = ImageSource{URI: uri, Data: []byte("png")}
	}
	return srcs
}

func TestPipelineProcess(t *testing.T) {
	t.Run("queues usable detections in one batch", func(t *testing.T) {
		detector := &mocks.MockDetector{Songs: []models.DetectedSong{
			{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh},
			{Title: "Karma Police", Artist: "Radiohead", Confidence: models.ConfidenceMedium},
		}}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		result, err := p.Process(context.Background(), images("file:///a.png", "file:///b.png"))
		require.NoError(t, err)

		require.Len(t, queue.batches, 1, "all images flush through a single batch")
		assert.Len(t, queue.batches[0], 4)
		assert.Len(t, result.QueuedSongs, 4)
		assert.Empty(t, flags.flags)
		assert.Equal(t, 2, result.Images[0].Queued)
	})

	t.Run("drops low-confidence detections", func(t *testing.T) {
		detector := &mocks.MockDetector{Songs: []models.DetectedSong{
			{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh},
			{Title: "Static Noise", Artist: "???", Confidence: models.ConfidenceLow},
		}}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		result, err := p.Process(context.Background(), images("file:///a.png"))
		require.NoError(t, err)

		require.Len(t, queue.batches, 1)
		assert.Len(t, queue.batches[0], 1)
		assert.Equal(t, "Yesterday", queue.batches[0][0].Title)
		assert.Equal(t, 1, result.Images[0].Dropped)
		assert.Empty(t, flags.flags)
	})

	t.Run("KeepLowConfidence queues everything", func(t *testing.T) {
		detector := &mocks.MockDetector{Songs: []models.DetectedSong{
			{Title: "Static Noise", Artist: "???", Confidence: models.ConfidenceLow},
		}}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())
		p.KeepLowConfidence = true

		result, err := p.Process(context.Background(), images("file:///a.png"))
		require.NoError(t, err)

		require.Len(t, queue.batches, 1)
		assert.Len(t, queue.batches[0], 1)
		assert.Equal(t, 0, result.Images[0].Dropped)
	})

	t.Run("detection failure flags the image and queues nothing", func(t *testing.T) {
		detector := &mocks.MockDetector{Err: errors.New("classifier timeout")}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		result, err := p.Process(context.Background(), images("file:///a.png"))
		require.NoError(t, err)

		assert.Empty(t, queue.batches)
		require.Len(t, flags.flags, 1, "exactly one flag per failed image")
		assert.Equal(t, "file:///a.png", flags.flags[0].ImageURI)
		assert.Contains(t, flags.flags[0].Error, "classifier timeout")
		assert.Equal(t, 1, result.FlaggedCount)
		assert.True(t, result.Images[0].Flagged)
	})

	t.Run("all-low-confidence image is flagged", func(t *testing.T) {
		detector := &mocks.MockDetector{Songs: []models.DetectedSong{
			{Title: "Static Noise", Artist: "???", Confidence: models.ConfidenceLow},
		}}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		result, err := p.Process(context.Background(), images("file:///a.png"))
		require.NoError(t, err)

		assert.Empty(t, queue.batches)
		require.Len(t, flags.flags, 1)
		assert.Contains(t, flags.flags[0].Error, "no usable detections")
		assert.Equal(t, 1, result.FlaggedCount)
	})

	t.Run("one bad image does not stop the rest", func(t *testing.T) {
		calls := 0
		detector := &flakyDetector{fail: map[int]bool{1: true}, songs: []models.DetectedSong{
			{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh},
		}, calls: &calls}
		queue := &fakeQueue{}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		result, err := p.Process(context.Background(), images("file:///a.png", "file:///b.png", "file:///c.png"))
		require.NoError(t, err)

		require.Len(t, queue.batches, 1)
		assert.Len(t, queue.batches[0], 2, "songs from the healthy images are queued")
		require.Len(t, flags.flags, 1)
		assert.Equal(t, "file:///b.png", flags.flags[0].ImageURI)
		assert.Equal(t, 1, result.FlaggedCount)
	})

	t.Run("store failure aborts the run", func(t *testing.T) {
		detector := &mocks.MockDetector{Songs: []models.DetectedSong{
			{Title: "Yesterday", Artist: "The Beatles", Confidence: models.ConfidenceHigh},
		}}
		queue := &fakeQueue{err: errors.New("disk full")}
		flags := &fakeFlags{}
		p := NewPipeline(detector, queue, flags, testLogger())

		_, err := p.Process(context.Background(), images("file:///a.png"))
		require.Error(t, err)
	})
}

// flakyDetector fails on specific call indexes (0-based).
type flakyDetector struct {
	fail  map[int]bool
	songs []models.DetectedSong
	calls *int
}

func (d *flakyDetector) Detect(ctx context.Context, image []byte) ([]models.DetectedSong, error) {
	i := *d.calls
	*d.calls++
	if d.fail[i] {
		return nil, errors.New("unreadable image")
	}
	return d.songs, nil
}
