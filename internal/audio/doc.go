// Package audio handles WAV encoding/decoding and voice-note normalization.
// It decodes arbitrary-rate multi-channel PCM WAV input, downmixes to mono,
// resamples to the canonical voice rate, and re-encodes as 16-bit PCM WAV.
// It also provides local playback of fetched recordings.
package audio
