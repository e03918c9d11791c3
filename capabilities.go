package statestream

// Quirk is a set of hardware errata flags. Quirks are resolved once at
// device initialization from the generation and stepping; the derivation
// engine and the workaround policy read them as pure input and never
// branch on the generation directly.
type Quirk uint32

const (
	// QuirkStreamOutDeclStall: the stream-out declaration list must be
	// followed by a command-streamer stall (Wa_1509820217).
	QuirkStreamOutDeclStall Quirk = 1 << iota

	// QuirkStreamOutRebracket: when the declaration list is reprogrammed
	// while transform feedback is in use, the stream-out unit must be
	// reprogrammed around it (Wa_16011773973).
	QuirkStreamOutRebracket

	// QuirkStreamOutPreemption: preemption must be disabled before the
	// stream-out unit is reprogrammed (Wa_16013994831).
	QuirkStreamOutPreemption

	// QuirkTessCtrlPerDraw: the tessellation control shader block is
	// emitted in front of every draw by the draw path, so the sequencer
	// must not emit it (Wa_16011107343).
	QuirkTessCtrlPerDraw

	// QuirkTessEvalPerDraw: as QuirkTessCtrlPerDraw, for the tessellation
	// evaluation shader block (Wa_22018402687).
	QuirkTessEvalPerDraw

	// QuirkViewportScissorCoupling: the viewport block must be re-emitted
	// whenever the scissor block is (Wa_14016820455).
	QuirkViewportScissorCoupling

	// QuirkMultisampleStall: a pixel-scoreboard stall is required before
	// the fragment shader block when the multisample block changes
	// (Wa_18038825448).
	QuirkMultisampleStall
)

// Capabilities describes one device: its hardware generation, sizing
// limits, and errata quirks. It is computed once at device initialization,
// immutable afterwards, and safe for unsynchronized sharing across
// recording contexts.
type Capabilities struct {
	// Generation is the hardware generation, times ten (90 for gen9,
	// 125 for gen12.5), matching how steppings are versioned.
	Generation int

	// MaxViewports is the number of simultaneous viewports the device
	// supports. At most maxViewports.
	MaxViewports int

	// MaxColorTargets is the number of simultaneous color attachments.
	MaxColorTargets int

	// MaxFramebufferDim is the largest framebuffer width or height.
	MaxFramebufferDim int32

	// ScissorMax is the largest inclusive scissor coordinate the scissor
	// registers can hold.
	ScissorMax int32

	// DepthRangeUnrestricted reports whether depth values outside [0, 1]
	// are representable.
	DepthRangeUnrestricted bool

	// Quirks is the set of errata affecting this device.
	Quirks Quirk
}

// HasQuirk reports whether the device is affected by the given erratum.
func (c *Capabilities) HasQuirk(q Quirk) bool {
	return c.Quirks&q != 0
}

// NewCapabilities builds the capability table for a hardware generation.
// This is the only place generation numbers are interpreted; everything
// downstream dispatches on the resulting flags and limits.
func NewCapabilities(generation int) *Capabilities {
	c := &Capabilities{
		Generation:        generation,
		MaxViewports:      maxViewports,
		MaxColorTargets:   maxColorTargets,
		MaxFramebufferDim: 1 << 14,
		ScissorMax:        0x3fff,
	}

	if generation >= 110 && generation < 200 {
		c.Quirks |= QuirkStreamOutDeclStall
	}
	if generation >= 110 && generation < 125 {
		c.Quirks |= QuirkStreamOutPreemption
	}
	if generation >= 125 {
		c.Quirks |= QuirkStreamOutRebracket
		c.Quirks |= QuirkTessCtrlPerDraw
		c.Quirks |= QuirkTessEvalPerDraw
		c.Quirks |= QuirkViewportScissorCoupling
		c.Quirks |= QuirkMultisampleStall
		c.DepthRangeUnrestricted = true
	}

	return c
}
