package audioio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo describes one enumerated PortAudio device.
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
}

// Init initializes the PortAudio library. Must be called once before
// opening any stream, and paired with a later call to Terminate.
func Init() error { return portaudio.Initialize() }

// Terminate releases PortAudio's resources.
func Terminate() error { return portaudio.Terminate() }

// ListDevices returns every PortAudio device visible on this host.
func ListDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audioio: list devices: %w", err)
	}

	defaultIn, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("audioio: default input device: %w", err)
	}
	defaultOut, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("audioio: default output device: %w", err)
	}

	var result []DeviceInfo
	for _, d := range devices {
		isDefault := d.Name == defaultIn.Name || d.Name == defaultOut.Name
		result = append(result, DeviceInfo{
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         isDefault,
		})
	}
	return result, nil
}

// PortAudioIO implements SampleSink and SampleSource against the default
// input/output devices at a fixed sample rate and frames-per-buffer,
// matching the ModConfig the caller built its Modulator/Demodulator from.
type PortAudioIO struct {
	sampleRate   float64
	framesPerBuf int

	mu           sync.Mutex
	inputStream  *portaudio.Stream
	outputStream *portaudio.Stream
	inputBuf     []float32
	outputBuf    []float32
}

// NewPortAudioIO builds a PortAudioIO for the given sample rate and
// frames-per-buffer. Call OpenInput/OpenOutput before using it as a
// SampleSource/SampleSink, and Close when done.
func NewPortAudioIO(sampleRate float64, framesPerBuf int) *PortAudioIO {
	return &PortAudioIO{
		sampleRate:   sampleRate,
		framesPerBuf: framesPerBuf,
		inputBuf:     make([]float32, framesPerBuf),
		outputBuf:    make([]float32, framesPerBuf),
	}
}

// OpenInput opens and starts the default input stream.
func (a *PortAudioIO) OpenInput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(1, 0, a.sampleRate, a.framesPerBuf, a.inputBuf)
	if err != nil {
		return fmt.Errorf("audioio: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("audioio: start input stream: %w", err)
	}
	a.inputStream = stream
	return nil
}

// OpenOutput opens and starts the default output stream.
func (a *PortAudioIO) OpenOutput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(0, 1, a.sampleRate, a.framesPerBuf, a.outputBuf)
	if err != nil {
		return fmt.Errorf("audioio: open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("audioio: start output stream: %w", err)
	}
	a.outputStream = stream
	return nil
}

// Read implements SampleSource, blocking until one buffer's worth of
// samples has arrived from the input stream.
func (a *PortAudioIO) Read() ([]float32, error) {
	if a.inputStream == nil {
		return nil, fmt.Errorf("audioio: input stream not opened")
	}
	if err := a.inputStream.Read(); err != nil {
		return nil, fmt.Errorf("audioio: read: %w", err)
	}
	out := make([]float32, len(a.inputBuf))
	copy(out, a.inputBuf)
	return out, nil
}

// Write implements SampleSink, writing samples to the output stream in
// framesPerBuf-sized chunks, zero-padding the final partial chunk.
func (a *PortAudioIO) Write(samples []float32) error {
	if a.outputStream == nil {
		return fmt.Errorf("audioio: output stream not opened")
	}
	for i := 0; i < len(samples); i += a.framesPerBuf {
		end := i + a.framesPerBuf
		if end > len(samples) {
			chunk := make([]float32, a.framesPerBuf)
			copy(chunk, samples[i:])
			copy(a.outputBuf, chunk)
		} else {
			copy(a.outputBuf, samples[i:end])
		}
		if err := a.outputStream.Write(); err != nil {
			return fmt.Errorf("audioio: write: %w", err)
		}
	}
	return nil
}

// Close stops and closes any open streams.
func (a *PortAudioIO) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.inputStream != nil {
		if err := a.inputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.inputStream = nil
	}
	if a.outputStream != nil {
		if err := a.outputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.outputStream = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("audioio: close errors: %v", errs)
	}
	return nil
}
