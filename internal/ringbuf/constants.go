package ringbuf

// Ring sizing limits
const (
	maxCapacity = 1 << 24 // 16M frames (~6 minutes at 44.1kHz)
	maxChannels = 8       // Scope inputs are stereo; leave room for multichannel taps
)

// Concurrency constants
const (
	// cacheLinePad separates hot counters onto their own 64-byte cache lines
	// (64 bytes minus the 8-byte counter).
	cacheLinePad = 56

	// maxPeekAttempts bounds how often a peek or read retries after the
	// producer lapped the copied range.
	maxPeekAttempts = 4
)
