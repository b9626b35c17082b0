package scope

// Configuration defaults
const (
	DefaultSampleWindowSize = 2048
	DefaultAmplitudeScale   = 1.0
	DefaultTimeScale        = 2.0
	DefaultBaseIntensity    = 1.0
	DefaultSampleRate       = 48000

	// DefaultRingCapacity holds eight default windows, ~340ms at 48kHz.
	DefaultRingCapacity = 8 * DefaultSampleWindowSize

	// DefaultTapQuantum matches the Web Audio render quantum.
	DefaultTapQuantum = 128

	// DefaultStarvationFrames is ~0.5s at 60Hz.
	DefaultStarvationFrames = 30
)

// Limits
const (
	minWindowSize = 2
	maxTapQuantum = 1 << 16
	maxSampleRate = 768000

	tapChannels = 2
	pcm16Frame  = 4 // bytes per interleaved 16-bit stereo frame
)
