package tasks

import (
	"fmt"
	"time"
)

// DefaultETAWindow is the number of latency samples kept by [ETAEstimator].
const DefaultETAWindow = 50

// ETAEstimator predicts remaining time from a moving average of recent per-item latencies.
//
// Samples are the wall-clock gaps between consecutive calls to [ETAEstimator.Tick]. The
// estimate returned by [ETAEstimator.Estimate] is recomputed at most once per second.
type ETAEstimator struct {
	window  int
	samples []time.Duration
	next    int
	sum     time.Duration
	last    time.Time
	now     func() time.Time

	shown   time.Duration
	shownAt time.Time
	known   bool
}

// NewETAEstimator creates an estimator keeping at most window samples.
//
// A nil clock uses [time.Now].
func NewETAEstimator(window int, now func() time.Time) *ETAEstimator {
	if window <= 0 {
		window = DefaultETAWindow
	}
	if now == nil {
		now = time.Now
	}
	return &ETAEstimator{window: window, samples: make([]time.Duration, 0, window), now: now}
}

// Tick marks the start of an item. Every tick after the first records one sample.
func (e *ETAEstimator) Tick() {
	now := e.now()
	if !e.last.IsZero() {
		e.add(now.Sub(e.last))
	}
	e.last = now
}

func (e *ETAEstimator) add(d time.Duration) {
	if len(e.samples) < e.window {
		e.samples = append(e.samples, d)
		e.sum += d
		return
	}
	e.sum -= e.samples[e.next]
	e.samples[e.next] = d
	e.sum += d
	e.next = (e.next + 1) % e.window
}

// Samples returns the number of samples currently in the window.
func (e *ETAEstimator) Samples() int {
	return len(e.samples)
}

// Average returns the mean sample, or false before the first sample.
func (e *ETAEstimator) Average() (time.Duration, bool) {
	if len(e.samples) == 0 {
		return 0, false
	}
	return e.sum / time.Duration(len(e.samples)), true
}

// Estimate returns the time needed for remaining items.
//
// Within one second of the previous refresh the previously shown value is returned.
func (e *ETAEstimator) Estimate(remaining int) (time.Duration, bool) {
	avg, ok := e.Average()
	if !ok {
		return 0, false
	}

	now := e.now()
	if e.known && now.Sub(e.shownAt) < time.Second {
		return e.shown, true
	}

	e.shown = avg * time.Duration(max(remaining, 0))
	e.shownAt = now
	e.known = true
	return e.shown, true
}

// FormatETA renders d as HH:MM:SS, or "--:--:--" when unknown.
func FormatETA(d time.Duration, known bool) string {
	if !known {
		return "--:--:--"
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
