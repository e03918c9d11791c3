package statestream

// deriver bundles the pure inputs of one derivation pass. Derivation maps
// (dynamic state, template, capabilities, render targets) to hardware
// field values, comparing by value so that redundant SetX calls never mark
// anything dirty.
type deriver struct {
	cache *BlockCache
	state *DynamicState
	tmpl  *PipelineTemplate
	caps  *Capabilities

	renderArea Rect
}

// deriveFunc re-derives one block's field values into the cache.
type deriveFunc func(*deriver)

// buildDeriveTable selects the derivation strategy per block for one
// device. Generation differences are resolved here, once, through the
// capability table; the strategies themselves contain no generation
// conditionals.
func buildDeriveTable(caps *Capabilities) [blockCount]deriveFunc {
	table := [blockCount]deriveFunc{
		BlockPrimitiveConfig: (*deriver).updatePrimitiveConfig,
		BlockVertexInput:     (*deriver).updateVertexInput,
		BlockVertexShader:    (*deriver).updateVertexShader,
		BlockTessCtrlShader:  (*deriver).updateTessCtrlShader,
		BlockTessConfig:      (*deriver).updateTessConfig,
		BlockTessEvalShader:  (*deriver).updateTessEvalShader,
		BlockGeometryShader:  (*deriver).updateGeometryShader,
		BlockStreamOut:       (*deriver).updateStreamOut,
		BlockStreamOutDecls:  (*deriver).updateStreamOutDecls,
		BlockClip:            (*deriver).updateClip,
		BlockRaster:          (*deriver).updateRaster,
		BlockMultisample:     (*deriver).updateMultisample,
		BlockViewport:        (*deriver).updateViewports,
		BlockScissor:         (*deriver).updateScissors,
		BlockFragmentShader:  (*deriver).updateFragmentShader,
		BlockDepthStencil:    (*deriver).updateDepthStencil,
		BlockBlend:           (*deriver).updateBlend,
		BlockColorConstants:  (*deriver).updateColorConstants,
	}

	// Devices with unrestricted depth ranges derive viewport depth limits
	// differently; pick the strategy once instead of branching per draw.
	if caps.DepthRangeUnrestricted {
		table[BlockViewport] = (*deriver).updateViewportsUnrestricted
	}

	return table
}

// derive runs the per-block update functions for every block whose inputs
// changed: a touched dependency field, a template (stage composition or
// static bits) change, or a render target change.
func (s *Streamer) derive() {
	d := &deriver{
		cache:      s.cache,
		state:      s.state,
		tmpl:       s.template,
		caps:       s.caps,
		renderArea: s.renderArea,
	}

	for _, b := range emitOrder {
		info := &blockTable[b]

		// The first derivation computes every block: the cache starts
		// zeroed and the defaults are not zero values.
		run := s.firstFlush ||
			s.templateChanged && info.templateSensitive ||
			s.attachmentChanged && info.attachmentSensitive
		if !run {
			for _, f := range info.deps {
				if s.state.isTouched(f) {
					run = true
					break
				}
			}
		}
		if run {
			s.deriveTable[b](d)
		}
	}

	s.state.clearTouched()
	s.templateChanged = false
	s.attachmentChanged = false
}
