// Package statestream compiles dynamic graphics pipeline state into
// fixed-format hardware command packets, incrementally.
//
// # Overview
//
// statestream sits between an API-level command recorder and a hardware
// command stream. The recorder mutates dynamic state freely (topology,
// rasterization, depth/stencil, blending, viewports) and binds pipeline
// templates; on each Flush the Streamer derives hardware field values for
// the blocks whose inputs changed, re-encodes the blocks whose values
// changed, and emits only the encodings that differ from what the
// hardware already holds.
//
// # Quick Start
//
//	import "github.com/gogpu/statestream"
//
//	caps := statestream.NewCapabilities(120)
//	buf := statestream.NewBatchBuffer(4096)
//	st, err := statestream.NewStreamer(caps, buf)
//	if err != nil {
//	    return err
//	}
//
//	st.BindTemplate(tmpl)
//	st.State().SetCullMode(gputypes.CullModeBack)
//	st.State().SetViewports([]statestream.Viewport{{Width: 1920, Height: 1080, MaxDepth: 1}})
//	if err := st.Flush(); err != nil {
//	    return err
//	}
//	packets := buf.Words()
//
// # Architecture
//
// The package is organized around three phases per Flush:
//   - Derivation: API values to hardware field values, compared by value
//     so redundant mutations never dirty anything.
//   - Packing: field values to dword encodings, merged with the bound
//     template's pre-packed static bits.
//   - Emission: encode-dirty blocks written to the Stream in fixed
//     pipeline order, wrapped in the barriers the device's workaround
//     policy requires.
//
// Device generation differences are resolved once at Streamer creation
// through the Capabilities table; the per-flush paths contain no
// generation conditionals.
//
// # Concurrency
//
// A Streamer serves one recording context and is not safe for concurrent
// use. The TemplateCache and the package logger are safe for concurrent
// use from any goroutine.
package statestream
