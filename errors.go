package statestream

import "errors"

// State compiler errors. Programming errors (invalid field combinations,
// out-of-range indices) are driver defects and panic instead; these errors
// cover recoverable conditions at the recording-context granularity.
var (
	// ErrNilDescriptor is returned when baking a template from a nil
	// descriptor.
	ErrNilDescriptor = errors.New("statestream: template descriptor is nil")

	// ErrTooManyColorTargets is returned when a descriptor names more
	// color attachments than the hardware supports.
	ErrTooManyColorTargets = errors.New("statestream: too many color targets")

	// ErrNilTemplate is returned when binding a nil pipeline template.
	ErrNilTemplate = errors.New("statestream: pipeline template is nil")

	// ErrNilStream is returned when creating a streamer without a command
	// stream sink.
	ErrNilStream = errors.New("statestream: command stream is nil")

	// ErrNilCapabilities is returned when creating a streamer without a
	// capability table.
	ErrNilCapabilities = errors.New("statestream: capabilities are nil")

	// ErrNoTemplate is returned by Flush when no pipeline template has
	// been bound.
	ErrNoTemplate = errors.New("statestream: no pipeline template bound")

	// ErrStreamExhausted is returned when the command stream sink cannot
	// reserve the requested number of words.
	ErrStreamExhausted = errors.New("statestream: command stream exhausted")

	// ErrArenaExhausted is returned when the scratch arena cannot grow a
	// variable-length block's backing storage.
	ErrArenaExhausted = errors.New("statestream: scratch arena exhausted")

	// ErrRecordingFailed is returned by Flush after a previous flush
	// failed; the recording context is sticky-failed and must be
	// discarded.
	ErrRecordingFailed = errors.New("statestream: recording context failed")
)
