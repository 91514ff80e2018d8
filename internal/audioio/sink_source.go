// Package audioio provides the two external collaborators the core
// depends on without importing: a sink that accepts PCM samples for
// playback and a source that delivers PCM samples as they arrive. The core
// (internal/modem, internal/frame) never imports this package; callers
// wire them together.
package audioio

// SampleSink accepts a buffer of mono float32 PCM samples in [-1.0, 1.0]
// for playback at the sink's configured sample rate.
type SampleSink interface {
	Write(samples []float32) error
}

// SampleSource delivers mono float32 PCM samples as they arrive at the
// source's configured sample rate. Read may block until a buffer's worth
// of samples is available.
type SampleSource interface {
	Read() ([]float32, error)
}
