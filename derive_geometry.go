package statestream

import "github.com/gogpu/gputypes"

// Hardware topology encodings. Tessellated pipelines always rasterize
// patches regardless of the API topology.
const (
	hwTopologyPointList uint32 = 0x01
	hwTopologyLineList  uint32 = 0x08
	hwTopologyLineStrip uint32 = 0x09
	hwTopologyTriList   uint32 = 0x02
	hwTopologyTriStrip  uint32 = 0x03
	hwTopologyPatchList uint32 = 0x20
)

func hwTopology(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return hwTopologyPointList
	case gputypes.PrimitiveTopologyLineList:
		return hwTopologyLineList
	case gputypes.PrimitiveTopologyLineStrip:
		return hwTopologyLineStrip
	case gputypes.PrimitiveTopologyTriangleList:
		return hwTopologyTriList
	case gputypes.PrimitiveTopologyTriangleStrip:
		return hwTopologyTriStrip
	default:
		panic("statestream: primitive topology has no hardware encoding")
	}
}

func (d *deriver) updatePrimitiveConfig() {
	c := d.cache
	v := &c.values.primitiveConfig

	topo := hwTopology(d.state.Topology)
	if d.tmpl.stages.Has(StageTessCtrl) {
		topo = hwTopologyPatchList
	}

	setField(c, BlockPrimitiveConfig, &v.topology, topo)
	setField(c, BlockPrimitiveConfig, &v.restart, d.state.PrimitiveRestart)
}

func (d *deriver) updateVertexInput() {
	c := d.cache
	v := &c.values.vertexInput

	attrs := d.state.VertexAttributes
	for i, a := range attrs {
		setField(c, BlockVertexInput, &v.attrs[i], a)
	}
	c.SetActiveCount(BlockVertexInput, len(attrs))
}

// updateShaderStage derives one programmable stage block. An unbound stage
// keeps enabled=false, which packs to the stage's explicit disabled
// encoding; the sequencer never skips a stage block, because skipping
// would leave a prior pipeline's enabled state visible to the hardware.
func (d *deriver) updateShaderStage(b BlockID, stage Stage, config uint32) {
	c := d.cache
	v := stageBundle(c, b)

	bound := d.tmpl.stages.Has(stage)
	setField(c, b, &v.enabled, bound)
	setStageField(c, b, bound, &v.hash, d.tmpl.shaderHashes[stage])
	setStageField(c, b, bound, &v.config, config)
}

func stageBundle(c *BlockCache, b BlockID) *stageValues {
	switch b {
	case BlockVertexShader:
		return &c.values.vs
	case BlockTessCtrlShader:
		return &c.values.hs
	case BlockTessEvalShader:
		return &c.values.te
	case BlockGeometryShader:
		return &c.values.gs
	case BlockFragmentShader:
		return &c.values.ps
	}
	panic("statestream: block " + b.String() + " is not a shader stage")
}

func (d *deriver) updateVertexShader() {
	d.updateShaderStage(BlockVertexShader, StageVertex, 0)
}

func (d *deriver) updateTessCtrlShader() {
	d.updateShaderStage(BlockTessCtrlShader, StageTessCtrl,
		d.state.PatchControlPoints)
}

func (d *deriver) updateTessEvalShader() {
	d.updateShaderStage(BlockTessEvalShader, StageTessEval, 0)
}

func (d *deriver) updateGeometryShader() {
	d.updateShaderStage(BlockGeometryShader, StageGeometry, 0)
}

func (d *deriver) updateFragmentShader() {
	// The fragment stage config word summarizes the output-merger state
	// the shader dispatch depends on: sample count, whether any target
	// blends, and whether any target is writeable at all.
	var config uint32
	config |= log2u32(d.state.RasterSamples)

	anyBlend := false
	anyWrite := false
	for i := 0; i < d.tmpl.colorCount; i++ {
		if d.state.BlendEnables[i] {
			anyBlend = true
		}
		if d.state.ColorWriteMasks[i] != gputypes.ColorWriteMaskNone {
			anyWrite = true
		}
	}
	if anyBlend {
		config |= 1 << 4
	}
	if anyWrite {
		config |= 1 << 5
	}
	if d.state.LogicOpEnable {
		config |= 1 << 6
	}

	d.updateShaderStage(BlockFragmentShader, StageFragment, config)
}

// Tessellation partitioning per domain: triangles and quads use
// fractional-odd spacing, isolines integer spacing.
var tessPartitioning = [3]uint32{1, 1, 0}

func (d *deriver) updateTessConfig() {
	c := d.cache
	v := &c.values.tessConfig

	if !d.tmpl.stages.Has(StageTessCtrl) {
		// Tessellation disabled encoding is all zeros.
		setField(c, BlockTessConfig, &v.patchPoints, 0)
		setField(c, BlockTessConfig, &v.partitioning, 0)
		setField(c, BlockTessConfig, &v.outputTopology, 0)
		return
	}

	if d.tmpl.tessDomain >= uint8(len(tessPartitioning)) {
		panic("statestream: tessellation domain has no hardware encoding")
	}

	outputTopo := hwTopologyTriStrip
	if d.tmpl.tessDomain == 2 {
		outputTopo = hwTopologyLineStrip
	}

	setField(c, BlockTessConfig, &v.patchPoints, d.state.PatchControlPoints)
	setField(c, BlockTessConfig, &v.partitioning, tessPartitioning[d.tmpl.tessDomain])
	setField(c, BlockTessConfig, &v.outputTopology, outputTopo)
}

func (d *deriver) updateStreamOut() {
	c := d.cache
	v := &c.values.streamOut

	enabled := d.tmpl.usesStreamOut && d.state.StreamOutEnable

	// Stream-out reordering follows the provoking vertex convention so
	// captured primitives keep API vertex order.
	var reorder uint32
	if d.state.ProvokingVertex == ProvokingVertexLast {
		reorder = 1
	}

	setField(c, BlockStreamOut, &v.enabled, enabled)
	setField(c, BlockStreamOut, &v.renderDisable, d.state.RasterizerDiscard)
	setField(c, BlockStreamOut, &v.reorderMode, reorder)
}

func (d *deriver) updateStreamOutDecls() {
	c := d.cache
	v := &c.values.streamOutDecls

	if !d.tmpl.usesStreamOut {
		c.SetActiveCount(BlockStreamOutDecls, 0)
		return
	}

	decls := d.state.StreamOutDecls
	for i, decl := range decls {
		setField(c, BlockStreamOutDecls, &v.decls[i], decl)
	}
	c.SetActiveCount(BlockStreamOutDecls, len(decls))
}

func log2u32(v uint32) uint32 {
	var n uint32
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}
