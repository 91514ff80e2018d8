// Package pipeline wires the modulation engine and the frame protocol
// together: send(payload) = modulator.encode(frame_encoder.encode(payload)),
// and a streaming receive path that cuts aligned symbol windows, demodulates
// them, and feeds the resulting bytes to a FrameDecoder.
package pipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/hsong/ultramodem/internal/fec"
	"github.com/hsong/ultramodem/internal/frame"
	"github.com/hsong/ultramodem/internal/modem"
)

// Pipeline is not safe for concurrent use: its rolling receive buffer and
// FrameDecoder are mutated in place, matching the single-threaded-by-
// contract rule the underlying Modulator/Demodulator/Decoder already
// follow.
type Pipeline struct {
	cfg   modem.ModConfig
	mod   *modem.Modulator
	demod *modem.Demodulator
	dec   *frame.Decoder

	rs          *fec.RSEncoder
	rsDataShard int
	rsParShard  int

	rollingSamples []float64
	bitCount       int
	pendingByte    byte
	byteBuf        []byte
}

// New builds a Pipeline with forward error correction disabled: the wire
// bytes it produces and consumes are byte-for-byte the pinned frame
// format.
func New(cfg modem.ModConfig) (*Pipeline, error) {
	return newPipeline(cfg, nil, 0, 0)
}

// NewWithFEC builds a Pipeline that wraps every frame in an outer
// Reed-Solomon code before modulation via SendBlock/ReceiveBlock. The
// default streaming Send/Feed path is unaffected and still produces the
// pinned byte-exact frame format; FEC only applies to the block-mode
// calls.
func NewWithFEC(cfg modem.ModConfig, dataShards, parityShards int) (*Pipeline, error) {
	rs, err := fec.NewRSEncoderCustom(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return newPipeline(cfg, rs, dataShards, parityShards)
}

func newPipeline(cfg modem.ModConfig, rs *fec.RSEncoder, dataShards, parShards int) (*Pipeline, error) {
	demod, err := modem.NewDemodulator(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:         cfg,
		mod:         modem.NewModulator(cfg),
		demod:       demod,
		dec:         frame.NewDecoder(frame.DefaultBufferCap),
		rs:          rs,
		rsDataShard: dataShards,
		rsParShard:  parShards,
	}, nil
}

// Config returns the ModConfig the Pipeline was built from.
func (p *Pipeline) Config() modem.ModConfig { return p.cfg }

// Stats returns the underlying FrameDecoder's internal drop counters.
func (p *Pipeline) Stats() frame.Stats { return p.dec.Stats() }

// Send encodes msg into the pinned frame format and modulates it to PCM
// samples ready for a SampleSink.
func (p *Pipeline) Send(msg frame.Message) ([]float32, error) {
	frameBytes, err := frame.EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	return p.modulateBytes(frameBytes), nil
}

// Feed accepts an arbitrarily sized chunk of PCM samples from a
// SampleSource, advances the rolling receive buffer by whole symbol
// windows, and returns zero or more Messages completed by this call.
func (p *Pipeline) Feed(samples []float32) []frame.Message {
	for _, s := range samples {
		p.rollingSamples = append(p.rollingSamples, float64(s))
	}

	sps := p.demod.SamplesPerSymbol()
	var out []frame.Message
	for len(p.rollingSamples) >= sps {
		window := p.rollingSamples[:sps]
		p.rollingSamples = p.rollingSamples[sps:]

		bit := p.demod.DecodeSymbol(window)
		p.pendingByte <<= 1
		if bit {
			p.pendingByte |= 1
		}
		p.bitCount++
		if p.bitCount == 8 {
			p.byteBuf = append(p.byteBuf[:0], p.pendingByte)
			out = append(out, p.dec.Feed(p.byteBuf)...)
			p.pendingByte = 0
			p.bitCount = 0
		}
	}
	return out
}

// modulateBytes converts frame bytes to bits (MSB-first) and synthesizes
// the PCM waveform, returning float32 samples for a SampleSink.
func (p *Pipeline) modulateBytes(data []byte) []float32 {
	bits := modem.BitsFromBytes(data)
	samples := p.mod.Encode(bits)
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

// SendBlock encodes msg into the pinned frame format, wraps it in a
// fixed-size Reed-Solomon block, and modulates the block to PCM samples.
// It requires the Pipeline to have been built with NewWithFEC, and the
// encoded frame (plus a 2-byte length prefix) must fit within the
// configured data-shard capacity.
func (p *Pipeline) SendBlock(msg frame.Message) ([]float32, error) {
	if p.rs == nil {
		return nil, fmt.Errorf("pipeline: SendBlock requires a Pipeline built with NewWithFEC")
	}
	frameBytes, err := frame.EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	if len(frameBytes)+2 > p.rsDataShard {
		return nil, fmt.Errorf("pipeline: encoded frame (%d bytes) exceeds block capacity (%d bytes)", len(frameBytes), p.rsDataShard-2)
	}

	block := make([]byte, p.rsDataShard)
	binary.BigEndian.PutUint16(block[:2], uint16(len(frameBytes)))
	copy(block[2:], frameBytes)

	encoded, err := p.rs.Encode(block)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reed-solomon encode: %w", err)
	}
	return p.modulateBytes(encoded), nil
}

// blockSymbolLen is the number of symbols ReceiveBlock needs to see before
// it has a complete Reed-Solomon block: one byte (8 symbols) per shard.
func (p *Pipeline) blockSymbolLen() int {
	return (p.rsDataShard + p.rsParShard) * 8
}

// ReceiveBlock demodulates exactly one Reed-Solomon block's worth of PCM
// samples, recovers the original frame bytes, and parses the first
// verified Message from it. samples must contain at least
// blockSymbolLen()*SamplesPerSymbol() samples; a shorter buffer is an
// error, not a partial result, since block mode has no streaming
// resynchronization of its own.
func (p *Pipeline) ReceiveBlock(samples []float32) (*frame.Message, error) {
	if p.rs == nil {
		return nil, fmt.Errorf("pipeline: ReceiveBlock requires a Pipeline built with NewWithFEC")
	}
	sps := p.demod.SamplesPerSymbol()
	need := p.blockSymbolLen() * sps
	if len(samples) < need {
		return nil, fmt.Errorf("pipeline: need %d samples for one block, got %d", need, len(samples))
	}

	float64Samples := make([]float64, need)
	for i := 0; i < need; i++ {
		float64Samples[i] = float64(samples[i])
	}
	bits := p.demod.Decode(float64Samples)
	encoded := modem.BytesFromBits(bits)

	decoded, err := p.rs.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reed-solomon decode: %w", err)
	}
	if len(decoded) < 2 {
		return nil, fmt.Errorf("pipeline: reconstructed block too short")
	}
	frameLen := int(binary.BigEndian.Uint16(decoded[:2]))
	if frameLen < 0 || 2+frameLen > len(decoded) {
		return nil, fmt.Errorf("pipeline: invalid embedded frame length %d", frameLen)
	}
	frameBytes := decoded[2 : 2+frameLen]

	blockDecoder := frame.NewDecoder(frame.DefaultBufferCap)
	msgs := blockDecoder.Feed(frameBytes)
	if len(msgs) == 0 {
		return nil, fmt.Errorf("pipeline: no verified frame recovered from block")
	}
	return &msgs[0], nil
}
