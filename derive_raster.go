package statestream

import "github.com/gogpu/gputypes"

// Hardware cull mode encodings.
const (
	hwCullBoth  uint32 = 0
	hwCullNone  uint32 = 1
	hwCullFront uint32 = 2
	hwCullBack  uint32 = 3
)

func hwCullMode(m gputypes.CullMode) uint32 {
	switch m {
	case gputypes.CullModeNone:
		return hwCullNone
	case gputypes.CullModeFront:
		return hwCullFront
	case gputypes.CullModeBack:
		return hwCullBack
	default:
		panic("statestream: cull mode has no hardware encoding")
	}
}

// Hardware fill mode encodings.
const (
	hwFillSolid     uint32 = 0
	hwFillWireframe uint32 = 1
	hwFillPoint     uint32 = 2
)

func hwFillMode(m PolygonMode) uint32 {
	switch m {
	case PolygonModeFill:
		return hwFillSolid
	case PolygonModeLine:
		return hwFillWireframe
	case PolygonModePoint:
		return hwFillPoint
	default:
		panic("statestream: polygon mode has no hardware encoding")
	}
}

// lineAAPair is the tie-break table combining the polygon fill mode with
// the line rasterization mode into the hardware's single
// "antialiasing + API mode" pair. The upper nibble is the antialiasing
// region selector, the lower nibble the API mode. A sentinel marks
// combinations with no valid hardware encoding; requesting one is a
// driver defect and aborts rather than silently substituting a mode.
const lineAAPairInvalid uint32 = 0xffffffff

var lineAAPairTable = [3][3]uint32{
	PolygonModeFill: {
		LineModeDefault:           0x00,
		LineModeBresenham:         0x01,
		LineModeRectangularSmooth: 0x10,
	},
	PolygonModeLine: {
		LineModeDefault:           0x02,
		LineModeBresenham:         0x03,
		LineModeRectangularSmooth: 0x12,
	},
	PolygonModePoint: {
		LineModeDefault:           0x02,
		LineModeBresenham:         0x03,
		LineModeRectangularSmooth: lineAAPairInvalid,
	},
}

func hwLineAAPair(poly PolygonMode, line LineMode) uint32 {
	if int(poly) >= len(lineAAPairTable) || int(line) >= len(lineAAPairTable[0]) {
		panic("statestream: polygon/line mode out of range")
	}
	pair := lineAAPairTable[poly][line]
	if pair == lineAAPairInvalid {
		panic("statestream: polygon/line mode combination has no hardware encoding")
	}
	return pair
}

// provokingSelectsFor maps the API provoking vertex convention to the
// per-primitive-type vertex selects the clip unit wants.
func provokingSelectsFor(pv ProvokingVertex) provokingSelects {
	switch pv {
	case ProvokingVertexFirst:
		return provokingSelects{triStrip: 0, lineStrip: 0, triFan: 1}
	case ProvokingVertexLast:
		return provokingSelects{triStrip: 2, lineStrip: 1, triFan: 2}
	default:
		panic("statestream: provoking vertex mode has no hardware encoding")
	}
}

func (d *deriver) updateClip() {
	c := d.cache
	v := &c.values.clip

	// The clip unit is bypassed entirely when primitives are discarded
	// before rasterization.
	enable := !d.state.RasterizerDiscard

	var apiMode uint32
	if d.state.NegativeOneToOne {
		apiMode = 1
	}

	setField(c, BlockClip, &v.enable, enable)
	setField(c, BlockClip, &v.apiMode, apiMode)
	setField(c, BlockClip, &v.viewportCount, d.state.ViewportCount)
	setField(c, BlockClip, &v.negOneToOne, d.state.NegativeOneToOne)
	setField(c, BlockClip, &v.provoking, provokingSelectsFor(d.state.ProvokingVertex))
}

func (d *deriver) updateRaster() {
	c := d.cache
	v := &c.values.raster

	setField(c, BlockRaster, &v.cullMode, hwCullMode(d.state.CullMode))
	setField(c, BlockRaster, &v.frontCW, d.state.FrontFace == gputypes.FrontFaceCW)
	setField(c, BlockRaster, &v.fillMode, hwFillMode(d.state.PolygonMode))
	setField(c, BlockRaster, &v.lineAAPair,
		hwLineAAPair(d.state.PolygonMode, d.state.LineMode))

	// Line width is programmed in U11.7 fixed point.
	width := d.state.LineWidth
	if width < 0 {
		panic("statestream: negative line width")
	}
	setField(c, BlockRaster, &v.lineWidth, uint32(width*128+0.5))

	setField(c, BlockRaster, &v.biasEnable, d.state.DepthBiasEnable)
	setField(c, BlockRaster, &v.biasConst, d.state.DepthBiasConstant)
	setField(c, BlockRaster, &v.biasSlope, d.state.DepthBiasSlope)
	setField(c, BlockRaster, &v.biasClamp, d.state.DepthBiasClamp)

	setField(c, BlockRaster, &v.depthClip, d.state.DepthClipEnable)
	setField(c, BlockRaster, &v.depthClamp, d.state.DepthClampEnable)
	setField(c, BlockRaster, &v.msRaster, d.state.RasterSamples > 1)
}

func (d *deriver) updateMultisample() {
	c := d.cache
	v := &c.values.multisample

	samples := d.state.RasterSamples
	if samples == 0 || samples&(samples-1) != 0 || samples > 16 {
		panic("statestream: sample count has no hardware encoding")
	}

	setField(c, BlockMultisample, &v.samplesLog2, log2u32(samples))
	setField(c, BlockMultisample, &v.mask, d.state.SampleMask)
	setField(c, BlockMultisample, &v.alphaToCoverage, d.state.AlphaToCoverage)
	setField(c, BlockMultisample, &v.alphaToOne, d.state.AlphaToOne)
}
