package windowing

import (
	"fmt"
	"time"

	"github.com/upfall/sensor-backend-go/internal/models"
)

// Segmenter slices one subject's time-ordered series into fixed-length,
// possibly overlapping windows
type Segmenter struct {
	windowLength time.Duration
	stride       time.Duration
}

// NewSegmenter creates a segmenter. Non-positive lengths are a
// configuration error: a zero stride would never terminate and a zero
// window would never match a sample.
func NewSegmenter(windowLength, stride time.Duration) (*Segmenter, error) {
	if windowLength <= 0 {
		return nil, fmt.Errorf("window length must be positive, got %v", windowLength)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("stride must be positive, got %v", stride)
	}
	return &Segmenter{windowLength: windowLength, stride: stride}, nil
}

// WindowLength returns the configured window length
func (s *Segmenter) WindowLength() time.Duration {
	return s.windowLength
}

// Stride returns the configured stride
func (s *Segmenter) Stride() time.Duration {
	return s.stride
}

// Segment returns a pull iterator over the windows of one subject's series.
// The series must be sorted ascending by timestamp; callers sort before
// segmenting. An empty series yields an exhausted iterator.
func (s *Segmenter) Segment(series []models.SensorSample) *WindowIter {
	it := &WindowIter{
		series:       series,
		windowLength: s.windowLength,
		stride:       s.stride,
	}
	if len(series) == 0 {
		it.done = true
		return it
	}
	it.tStart = series[0].Timestamp
	it.tMax = series[len(series)-1].Timestamp
	return it
}

// WindowIter yields half-open windows [tStart, tStart+windowLength) on
// demand, advancing tStart by stride until the next window would extend
// past the last sample. Single consumer, no rewind.
type WindowIter struct {
	series       []models.SensorSample
	windowLength time.Duration
	stride       time.Duration

	tStart time.Time
	tMax   time.Time
	lo     int // first index with timestamp >= tStart; only moves forward
	done   bool
}

// Next returns the next window and the samples it covers. The third return
// is false once the sequence is exhausted.
func (it *WindowIter) Next() (models.Window, []models.SensorSample, bool) {
	if it.done {
		return models.Window{}, nil, false
	}

	tEnd := it.tStart.Add(it.windowLength)
	if tEnd.After(it.tMax) {
		it.done = true
		return models.Window{}, nil, false
	}

	for it.lo < len(it.series) && it.series[it.lo].Timestamp.Before(it.tStart) {
		it.lo++
	}

	hi := it.lo
	for hi < len(it.series) && it.series[hi].Timestamp.Before(tEnd) {
		hi++
	}

	w := models.Window{
		SubjectID: it.series[0].SubjectID,
		TStart:    it.tStart,
		TEnd:      tEnd,
	}
	subset := it.series[it.lo:hi]

	it.tStart = it.tStart.Add(it.stride)
	return w, subset, true
}
