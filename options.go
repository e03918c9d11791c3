package statestream

// Option configures a Streamer during creation.
// Use functional options to customize Streamer behavior.
//
// Example:
//
//	// Default configuration
//	st, err := statestream.NewStreamer(caps, stream)
//
//	// Larger scratch arena for viewport-heavy workloads
//	st, err := statestream.NewStreamer(caps, stream,
//	    statestream.WithArenaCapacity(64*1024))
type Option func(*streamerOptions)

// streamerOptions holds optional configuration for Streamer creation.
type streamerOptions struct {
	arenaWords int
	forceFull  bool
}

// defaultOptions returns the default streamer options.
func defaultOptions() streamerOptions {
	return streamerOptions{
		arenaWords: defaultArenaWords,
	}
}

// WithArenaCapacity sets the scratch arena size in 32-bit words. The
// arena backs variable-length block encodings for the lifetime of one
// recording; it must be large enough for every growth step the recording
// performs. Zero or negative values keep the default.
func WithArenaCapacity(words int) Option {
	return func(o *streamerOptions) {
		if words > 0 {
			o.arenaWords = words
		}
	}
}

// WithForceFullEmission makes the first Flush emit every block even when
// nothing is dirty, exactly as ForceFullEmission would. Recordings that
// resume hardware state from an unknown baseline start this way.
func WithForceFullEmission() Option {
	return func(o *streamerOptions) {
		o.forceFull = true
	}
}
