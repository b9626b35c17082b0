package decode

import "time"

// PCM constants
const (
	pcm16Scale    = 32767.0 // float to int16 full scale
	pcm16InvScale = 1.0 / 32768.0
	bytesPerPCM16 = 2
	stereoFrame   = 2 * bytesPerPCM16 // one interleaved L/R frame

	// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
	wavFormatPCM = 1

	// unsigned8Offset re-centres 8-bit WAV samples, which are unsigned.
	unsigned8Offset = 128
)

// XM rendering
const (
	// XMSampleRate is the only rate the XM player renders at.
	XMSampleRate = 44100

	// DefaultMaxDuration bounds how much of a module is rendered.
	DefaultMaxDuration = 10 * time.Minute

	// xmReadChunk must exceed the stream's bytes per tick.
	xmReadChunk = 64 * 1024
)

// Format sniffing magics
const (
	riffMagic = "RIFF"
	waveMagic = "WAVE"
	xmMagic   = "Extended Module:"
)
