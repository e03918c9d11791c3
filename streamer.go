package statestream

import "fmt"

// Streamer is the incremental state compiler for one recording context.
// It owns the dynamic state mirror, the block cache, and the output
// stream, and turns SetX/BindTemplate mutations into the minimal set of
// encoded packets on each Flush.
//
// A Streamer is not safe for concurrent use. Each recording context owns
// exactly one and drives it from a single goroutine.
type Streamer struct {
	caps   *Capabilities
	stream Stream

	state    *DynamicState
	cache    *BlockCache
	template *PipelineTemplate

	renderArea        Rect
	templateChanged   bool
	attachmentChanged bool
	firstFlush        bool

	deriveTable [blockCount]deriveFunc
	packTable   [blockCount]packFunc

	arena *ScratchArena

	forceFull bool
	failed    bool
	failErr   error
}

// NewStreamer creates a Streamer targeting the given device and stream.
func NewStreamer(caps *Capabilities, stream Stream, opts ...Option) (*Streamer, error) {
	if caps == nil {
		return nil, ErrNilCapabilities
	}
	if stream == nil {
		return nil, ErrNilStream
	}

	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}

	s := &Streamer{
		caps:        caps,
		stream:      stream,
		state:       newDynamicState(),
		cache:       newBlockCache(),
		deriveTable: buildDeriveTable(caps),
		packTable:   buildPackTable(caps),
		arena:       NewScratchArena(cfg.arenaWords),
		forceFull:   cfg.forceFull,
		firstFlush:  true,
	}
	return s, nil
}

// State returns the dynamic state mirror. Mutations through its setters
// take effect on the next Flush.
func (s *Streamer) State() *DynamicState {
	return s.state
}

// Capabilities returns the device capability table the Streamer was
// created with.
func (s *Streamer) Capabilities() *Capabilities {
	return s.caps
}

// BindTemplate switches the active pipeline template. Binding the
// template that is already bound is a no-op; binding a different one
// re-derives every template-sensitive block on the next Flush, including
// the attachment-sensitive ones because the template carries the render
// target formats.
func (s *Streamer) BindTemplate(t *PipelineTemplate) error {
	if t == nil {
		return ErrNilTemplate
	}
	if t == s.template {
		return nil
	}
	s.template = t
	s.templateChanged = true
	s.attachmentChanged = true
	return nil
}

// Template returns the currently bound pipeline template, or nil before
// the first BindTemplate.
func (s *Streamer) Template() *PipelineTemplate {
	return s.template
}

// SetRenderArea sets the render target bounds the scissor derivation
// intersects against. Setting the same area again is a no-op.
func (s *Streamer) SetRenderArea(r Rect) {
	if r == s.renderArea {
		return
	}
	s.renderArea = r
	s.attachmentChanged = true
}

// ForceFullEmission makes the next Flush re-emit every block regardless
// of dirty state. Context restores and mid-stream batch splits use this
// to reconstruct hardware state from nothing.
func (s *Streamer) ForceFullEmission() {
	s.forceFull = true
}

// Failed reports whether a previous Flush failed. A failed Streamer
// rejects further flushes until Reset.
func (s *Streamer) Failed() bool {
	return s.failed
}

// Flush runs one compile cycle: derive changed field values, repack
// value-dirty blocks, apply the device workaround policy, and emit every
// encode-dirty block to the stream in fixed order. With no effective
// state change since the last Flush it emits nothing.
//
// Any failure is sticky: the Streamer records it and every later Flush
// returns ErrRecordingFailed wrapping the original cause, mirroring how a
// failed command buffer stays failed until it is reset.
func (s *Streamer) Flush() error {
	if s.failed {
		return fmt.Errorf("%w: %w", ErrRecordingFailed, s.failErr)
	}
	if s.template == nil {
		return ErrNoTemplate
	}

	s.derive()

	// The very first flush of a recording has no previous emission to be
	// incremental against: every block packs and emits.
	if s.firstFlush {
		s.cache.valueDirty.SetAll(int(blockCount))
		s.firstFlush = false
	}

	if err := s.pack(); err != nil {
		return s.fail(err)
	}

	if s.forceFull {
		s.cache.encodeDirty.SetAll(int(blockCount))
		s.forceFull = false
	}

	barriers := applyWorkarounds(s.cache, s.caps, s.template)

	stale := s.cache.encodeDirty.Count()
	if err := emitBlocks(s.stream, s.cache, barriers); err != nil {
		return s.fail(err)
	}
	if stale > 0 {
		Logger().Debug("flush emitted", "blocks", stale, "barriers", len(barriers))
	}
	return nil
}

// pack re-encodes every value-dirty block and merges the template's
// static bits over the result. Storage for a grown variable-length block
// is acquired from the arena before any cache mutation, so an exhausted
// arena leaves the cache consistent.
func (s *Streamer) pack() error {
	c := s.cache
	for _, b := range emitOrder {
		if !c.valueDirty.Test(int(b)) {
			continue
		}

		n := encodedLen(c, b)
		if len(c.packed[b]) < n {
			buf, err := s.arena.AllocWords(n)
			if err != nil {
				return err
			}
			c.packed[b] = buf
		}

		dst := c.packed[b][:n]
		clear(dst)
		s.packTable[b](c, dst)
		mergeTemplate(b, dst, s.template.staticBits(b))
		c.packedLen[b] = n

		c.valueDirty.Clear(int(b))
		c.encodeDirty.Set(int(b))
	}
	return nil
}

// fail records a sticky failure and returns it.
func (s *Streamer) fail(err error) error {
	s.failed = true
	s.failErr = err
	Logger().Error("flush failed", "error", err)
	return err
}

// Reset returns the Streamer to its just-created state for reuse with a
// new recording: defaults restored, caches emptied, arena released, and
// any sticky failure cleared. The device tables are kept; they depend
// only on capabilities.
func (s *Streamer) Reset() {
	s.state = newDynamicState()
	s.cache.Reset()
	s.template = nil
	s.renderArea = Rect{}
	s.templateChanged = false
	s.attachmentChanged = false
	s.firstFlush = true
	s.arena.Release()
	s.failed = false
	s.failErr = nil
}
