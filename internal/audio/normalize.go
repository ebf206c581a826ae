package audio

import (
	"log/slog"
)

// MimeTypeWAV is the mime type assigned to normalized payloads.
const MimeTypeWAV = "audio/wav"

// EncodedAudio is a self-describing audio payload passed between the capture
// controller, the normalizer, the analysis client, and the save orchestrator.
type EncodedAudio struct {
	MimeType     string
	Payload      []byte
	SampleRate   int
	ChannelCount int
	// Normalized reports whether Payload is canonical mono 16-bit PCM WAV at
	// the normalizer's target rate. False means the original payload was
	// passed through unchanged.
	Normalized bool
}

// Normalizer converts raw recordings into canonical voice-grade WAV:
// mono, 16 kHz, 16-bit little-endian PCM.
type Normalizer struct {
	targetRate int
	logger     *slog.Logger
}

// NewNormalizer creates a normalizer for the given target sample rate.
func NewNormalizer(targetRate int, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		targetRate: targetRate,
		logger:     logger,
	}
}

// Normalize decodes a raw payload, downmixes to mono by equal-weight channel
// averaging, resamples to the target rate, and re-encodes as canonical WAV.
//
// Failures degrade silently: if the payload cannot be decoded the original is
// returned unchanged with Normalized=false. Callers must tolerate audio in
// its original container. For a given payload the output bytes are fully
// deterministic.
func (n *Normalizer) Normalize(raw []byte, mimeType string) EncodedAudio {
	passthrough := EncodedAudio{
		MimeType:   mimeType,
		Payload:    raw,
		Normalized: false,
	}

	pcm, err := DecodeWAV(raw)
	if err != nil {
		n.logger.Debug("normalization skipped, passing original through",
			slog.String("mime_type", mimeType),
			slog.Int("payload_bytes", len(raw)),
			slog.String("error", err.Error()),
		)
		return passthrough
	}

	mono := downmix(pcm.Samples, pcm.Channels)
	resampled := resampleLinear(mono, pcm.SampleRate, n.targetRate)
	out := quantize(resampled)

	encoded, err := EncodeWAV(out, n.targetRate)
	if err != nil {
		n.logger.Debug("normalization failed to encode, passing original through",
			slog.String("mime_type", mimeType),
			slog.String("error", err.Error()),
		)
		return passthrough
	}

	return EncodedAudio{
		MimeType:     MimeTypeWAV,
		Payload:      encoded,
		SampleRate:   n.targetRate,
		ChannelCount: 1,
		Normalized:   true,
	}
}

// downmix averages interleaved channels into a single float64 channel in
// [-1, 1]. Equal-weight averaging is the documented policy; the upstream
// recorder does not specify mixing weights.
func downmix(interleaved []int16, channels int) []float64 {
	if channels < 1 {
		return nil
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for f := 0; f < frames; f++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(interleaved[f*channels+ch]) / 32768.0
		}
		mono[f] = sum / float64(channels)
	}
	return mono
}

// resampleLinear converts a mono float stream between sample rates using
// linear interpolation. Output length is floor(n*to/from), computed with
// integer arithmetic so repeated runs agree byte for byte.
func resampleLinear(src []float64, from, to int) []float64 {
	if from == to || len(src) == 0 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}

	outLen := len(src) * to / from
	if outLen == 0 {
		outLen = 1
	}

	step := float64(from) / float64(to)
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(i0)
		out[i] = src[i0]*(1-frac) + src[i0+1]*frac
	}
	return out
}

// quantize converts float samples to signed 16-bit with symmetric scaling:
// samples are clamped to [-1, 1], then positive values scale by 32767 and
// negative values by 32768, so both rails are reachable without wraparound.
func quantize(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = quantizeSample(s)
	}
	return out
}

func quantizeSample(s float64) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}
