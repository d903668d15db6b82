package crawler

import "time"

// Recorder receives per-source outcomes for run metrics.
type Recorder interface {
	// ObserveSource is called once per processed source. failure is the
	// error kind, or empty on success.
	ObserveSource(sourceID string, articles int, failure string, elapsed time.Duration)
	TranslationFailed(sourceID string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSource(string, int, string, time.Duration) {}
func (nopRecorder) TranslationFailed(string)                         {}
