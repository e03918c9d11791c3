package statestream

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/statestream/internal/bitset"
)

// Hardware limits shared by every supported generation. Per-device limits
// (viewport count in use, framebuffer bounds) live in Capabilities; these
// are the sizing constants for the cached state arrays.
const (
	maxViewports        = 16
	maxColorTargets     = 8
	maxVertexAttributes = 32
	maxStreamOutDecls   = 64
)

// Stage identifies one programmable pipeline stage.
type Stage uint8

const (
	StageNone Stage = iota
	StageVertex
	StageTessCtrl
	StageTessEval
	StageGeometry
	StageFragment
)

// StageMask is a set of bound pipeline stages.
type StageMask uint8

const (
	StageMaskVertex   StageMask = 1 << 0
	StageMaskTessCtrl StageMask = 1 << 1
	StageMaskTessEval StageMask = 1 << 2
	StageMaskGeometry StageMask = 1 << 3
	StageMaskFragment StageMask = 1 << 4
)

// Has reports whether the mask contains the given stage.
func (m StageMask) Has(s Stage) bool {
	switch s {
	case StageVertex:
		return m&StageMaskVertex != 0
	case StageTessCtrl:
		return m&StageMaskTessCtrl != 0
	case StageTessEval:
		return m&StageMaskTessEval != 0
	case StageGeometry:
		return m&StageMaskGeometry != 0
	case StageFragment:
		return m&StageMaskFragment != 0
	}
	return false
}

// PolygonMode selects how filled primitives are rasterized.
type PolygonMode uint8

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
	PolygonModePoint
)

// LineMode selects the line rasterization algorithm.
type LineMode uint8

const (
	LineModeDefault LineMode = iota
	LineModeBresenham
	LineModeRectangularSmooth
)

// ProvokingVertex selects which primitive vertex carries flat-shaded
// attributes.
type ProvokingVertex uint8

const (
	ProvokingVertexFirst ProvokingVertex = iota
	ProvokingVertexLast
)

// LogicOp is the framebuffer logical operation applied when logic ops are
// enabled instead of blending.
type LogicOp uint8

const (
	LogicOpClear LogicOp = iota
	LogicOpAnd
	LogicOpAndReverse
	LogicOpCopy
	LogicOpAndInverted
	LogicOpNoop
	LogicOpXor
	LogicOpOr
	LogicOpNor
	LogicOpEquivalent
	LogicOpInvert
	LogicOpOrReverse
	LogicOpCopyInverted
	LogicOpOrInverted
	LogicOpNand
	LogicOpSet
)

// Viewport is one viewport rectangle with its depth range.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is an integer rectangle in framebuffer coordinates.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// StencilFace holds the stencil operations for one face.
type StencilFace struct {
	Fail      gputypes.StencilOperation
	Pass      gputypes.StencilOperation
	DepthFail gputypes.StencilOperation
	Compare   gputypes.CompareFunction
}

// BlendEquation is the blend configuration for one color target.
type BlendEquation struct {
	SrcColor gputypes.BlendFactor
	DstColor gputypes.BlendFactor
	ColorOp  gputypes.BlendOperation
	SrcAlpha gputypes.BlendFactor
	DstAlpha gputypes.BlendFactor
	AlphaOp  gputypes.BlendOperation
}

// StreamOutDecl declares one transform-feedback output slot.
type StreamOutDecl struct {
	Buffer        uint8
	Slot          uint8
	ComponentMask uint8
	HoleSize      uint8
}

// fieldID identifies one independently settable dynamic state field. The
// touched bitset in DynamicState is indexed by fieldID.
type fieldID uint8

const (
	fieldTopology fieldID = iota
	fieldPrimitiveRestart
	fieldPatchControlPoints
	fieldVertexAttributes
	fieldProvokingVertex
	fieldRasterizerDiscard
	fieldCullMode
	fieldFrontFace
	fieldPolygonMode
	fieldLineMode
	fieldLineWidth
	fieldDepthBiasEnable
	fieldDepthBias
	fieldDepthClipEnable
	fieldDepthClampEnable
	fieldDepthClampRange
	fieldViewports
	fieldScissors
	fieldNegativeOneToOne
	fieldRasterSamples
	fieldSampleMask
	fieldAlphaToCoverage
	fieldAlphaToOne
	fieldDepthTestEnable
	fieldDepthWriteEnable
	fieldDepthCompare
	fieldDepthBoundsTestEnable
	fieldDepthBounds
	fieldStencilTestEnable
	fieldStencilOps
	fieldStencilCompareMask
	fieldStencilWriteMask
	fieldStencilReference
	fieldLogicOpEnable
	fieldLogicOp
	fieldBlendEnables
	fieldBlendEquations
	fieldColorWriteMasks
	fieldBlendConstants
	fieldStreamOutEnable
	fieldStreamOutDecls

	fieldCount
)

// DynamicState holds the current value of every per-draw parameter plus a
// per-field touched marker. Setters record the touch unconditionally, even
// when the assigned value equals the current one; the derivation engine
// compares by value and decides whether anything actually changed.
type DynamicState struct {
	touched bitset.Set

	Topology           gputypes.PrimitiveTopology
	PrimitiveRestart   bool
	PatchControlPoints uint32

	VertexAttributes []gputypes.VertexAttribute

	ProvokingVertex   ProvokingVertex
	RasterizerDiscard bool
	CullMode          gputypes.CullMode
	FrontFace         gputypes.FrontFace
	PolygonMode       PolygonMode
	LineMode          LineMode
	LineWidth         float32

	DepthBiasEnable     bool
	DepthBiasConstant   float32
	DepthBiasSlope      float32
	DepthBiasClamp      float32
	DepthClipEnable     bool
	DepthClampEnable    bool
	DepthClampUserRange bool
	DepthClampMin       float32
	DepthClampMax       float32

	ViewportCount    uint32
	Viewports        [maxViewports]Viewport
	ScissorCount     uint32
	Scissors         [maxViewports]Rect
	NegativeOneToOne bool

	RasterSamples   uint32
	SampleMask      uint32
	AlphaToCoverage bool
	AlphaToOne      bool

	DepthTestEnable       bool
	DepthWriteEnable      bool
	DepthCompare          gputypes.CompareFunction
	DepthBoundsTestEnable bool
	DepthBoundsMin        float32
	DepthBoundsMax        float32

	StencilTestEnable  bool
	StencilFront       StencilFace
	StencilBack        StencilFace
	StencilCompareMask [2]uint32
	StencilWriteMask   [2]uint32
	StencilReference   [2]uint32

	LogicOpEnable bool
	LogicOp       LogicOp

	BlendEnables    [maxColorTargets]bool
	BlendEquations  [maxColorTargets]BlendEquation
	ColorWriteMasks [maxColorTargets]gputypes.ColorWriteMask
	BlendConstants  [4]float32

	StreamOutEnable bool
	StreamOutDecls  []StreamOutDecl
}

// newDynamicState returns a state source with API default values.
func newDynamicState() *DynamicState {
	s := &DynamicState{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		CullMode:       gputypes.CullModeNone,
		LineWidth:      1,
		RasterSamples:  1,
		SampleMask:     0xffffffff,
		DepthCompare:   gputypes.CompareFunctionAlways,
		DepthClampMax:  1,
		DepthBoundsMax: 1,
	}
	for i := range s.ColorWriteMasks {
		s.ColorWriteMasks[i] = gputypes.ColorWriteMaskAll
	}
	return s
}

func (s *DynamicState) touch(f fieldID) {
	s.touched.Set(int(f))
}

func (s *DynamicState) isTouched(f fieldID) bool {
	return s.touched.Test(int(f))
}

func (s *DynamicState) clearTouched() {
	s.touched.Reset()
}

// SetTopology sets the primitive topology.
func (s *DynamicState) SetTopology(t gputypes.PrimitiveTopology) {
	s.Topology = t
	s.touch(fieldTopology)
}

// SetPrimitiveRestart toggles primitive restart for indexed draws.
func (s *DynamicState) SetPrimitiveRestart(enable bool) {
	s.PrimitiveRestart = enable
	s.touch(fieldPrimitiveRestart)
}

// SetPatchControlPoints sets the tessellation patch size.
func (s *DynamicState) SetPatchControlPoints(n uint32) {
	s.PatchControlPoints = n
	s.touch(fieldPatchControlPoints)
}

// SetVertexAttributes replaces the vertex attribute layout.
func (s *DynamicState) SetVertexAttributes(attrs []gputypes.VertexAttribute) {
	if len(attrs) > maxVertexAttributes {
		panic("statestream: vertex attribute count exceeds hardware limit")
	}
	s.VertexAttributes = attrs
	s.touch(fieldVertexAttributes)
}

// SetProvokingVertex selects the provoking vertex convention.
func (s *DynamicState) SetProvokingVertex(pv ProvokingVertex) {
	s.ProvokingVertex = pv
	s.touch(fieldProvokingVertex)
}

// SetRasterizerDiscard toggles discarding primitives before rasterization.
func (s *DynamicState) SetRasterizerDiscard(enable bool) {
	s.RasterizerDiscard = enable
	s.touch(fieldRasterizerDiscard)
}

// SetCullMode sets the face culling mode.
func (s *DynamicState) SetCullMode(m gputypes.CullMode) {
	s.CullMode = m
	s.touch(fieldCullMode)
}

// SetFrontFace sets the front-facing winding order.
func (s *DynamicState) SetFrontFace(f gputypes.FrontFace) {
	s.FrontFace = f
	s.touch(fieldFrontFace)
}

// SetPolygonMode sets the polygon fill mode.
func (s *DynamicState) SetPolygonMode(m PolygonMode) {
	s.PolygonMode = m
	s.touch(fieldPolygonMode)
}

// SetLineMode sets the line rasterization mode.
func (s *DynamicState) SetLineMode(m LineMode) {
	s.LineMode = m
	s.touch(fieldLineMode)
}

// SetLineWidth sets the rasterized line width in pixels.
func (s *DynamicState) SetLineWidth(w float32) {
	s.LineWidth = w
	s.touch(fieldLineWidth)
}

// SetDepthBiasEnable toggles depth biasing.
func (s *DynamicState) SetDepthBiasEnable(enable bool) {
	s.DepthBiasEnable = enable
	s.touch(fieldDepthBiasEnable)
}

// SetDepthBias sets the depth bias parameters.
func (s *DynamicState) SetDepthBias(constant, slope, clamp float32) {
	s.DepthBiasConstant = constant
	s.DepthBiasSlope = slope
	s.DepthBiasClamp = clamp
	s.touch(fieldDepthBias)
}

// SetDepthClipEnable toggles near/far plane clipping.
func (s *DynamicState) SetDepthClipEnable(enable bool) {
	s.DepthClipEnable = enable
	s.touch(fieldDepthClipEnable)
}

// SetDepthClampEnable toggles depth clamping.
func (s *DynamicState) SetDepthClampEnable(enable bool) {
	s.DepthClampEnable = enable
	s.touch(fieldDepthClampEnable)
}

// SetDepthClampRange sets a user-defined depth clamp range, overriding the
// viewport depth range while depth clamping is enabled.
func (s *DynamicState) SetDepthClampRange(min, max float32) {
	s.DepthClampUserRange = true
	s.DepthClampMin = min
	s.DepthClampMax = max
	s.touch(fieldDepthClampRange)
}

// SetViewports replaces the active viewport array.
func (s *DynamicState) SetViewports(vps []Viewport) {
	if len(vps) > maxViewports {
		panic("statestream: viewport count exceeds hardware limit")
	}
	copy(s.Viewports[:], vps)
	s.ViewportCount = uint32(len(vps))
	s.touch(fieldViewports)
}

// SetScissors replaces the active scissor array.
func (s *DynamicState) SetScissors(rects []Rect) {
	if len(rects) > maxViewports {
		panic("statestream: scissor count exceeds hardware limit")
	}
	copy(s.Scissors[:], rects)
	s.ScissorCount = uint32(len(rects))
	s.touch(fieldScissors)
}

// SetNegativeOneToOne selects the [-1, 1] depth clip convention instead of
// the default [0, 1].
func (s *DynamicState) SetNegativeOneToOne(enable bool) {
	s.NegativeOneToOne = enable
	s.touch(fieldNegativeOneToOne)
}

// SetRasterSamples sets the rasterization sample count.
func (s *DynamicState) SetRasterSamples(n uint32) {
	s.RasterSamples = n
	s.touch(fieldRasterSamples)
}

// SetSampleMask sets the coverage sample mask.
func (s *DynamicState) SetSampleMask(mask uint32) {
	s.SampleMask = mask
	s.touch(fieldSampleMask)
}

// SetAlphaToCoverage toggles alpha-to-coverage.
func (s *DynamicState) SetAlphaToCoverage(enable bool) {
	s.AlphaToCoverage = enable
	s.touch(fieldAlphaToCoverage)
}

// SetAlphaToOne toggles alpha-to-one.
func (s *DynamicState) SetAlphaToOne(enable bool) {
	s.AlphaToOne = enable
	s.touch(fieldAlphaToOne)
}

// SetDepthTestEnable toggles the depth test.
func (s *DynamicState) SetDepthTestEnable(enable bool) {
	s.DepthTestEnable = enable
	s.touch(fieldDepthTestEnable)
}

// SetDepthWriteEnable toggles depth buffer writes.
func (s *DynamicState) SetDepthWriteEnable(enable bool) {
	s.DepthWriteEnable = enable
	s.touch(fieldDepthWriteEnable)
}

// SetDepthCompare sets the depth comparison function.
func (s *DynamicState) SetDepthCompare(f gputypes.CompareFunction) {
	s.DepthCompare = f
	s.touch(fieldDepthCompare)
}

// SetDepthBoundsTestEnable toggles the depth bounds test.
func (s *DynamicState) SetDepthBoundsTestEnable(enable bool) {
	s.DepthBoundsTestEnable = enable
	s.touch(fieldDepthBoundsTestEnable)
}

// SetDepthBounds sets the depth bounds test range.
func (s *DynamicState) SetDepthBounds(min, max float32) {
	s.DepthBoundsMin = min
	s.DepthBoundsMax = max
	s.touch(fieldDepthBounds)
}

// SetStencilTestEnable toggles the stencil test.
func (s *DynamicState) SetStencilTestEnable(enable bool) {
	s.StencilTestEnable = enable
	s.touch(fieldStencilTestEnable)
}

// SetStencilOps sets the per-face stencil operations.
func (s *DynamicState) SetStencilOps(front, back StencilFace) {
	s.StencilFront = front
	s.StencilBack = back
	s.touch(fieldStencilOps)
}

// SetStencilCompareMask sets the front and back stencil compare masks.
func (s *DynamicState) SetStencilCompareMask(front, back uint32) {
	s.StencilCompareMask = [2]uint32{front, back}
	s.touch(fieldStencilCompareMask)
}

// SetStencilWriteMask sets the front and back stencil write masks.
func (s *DynamicState) SetStencilWriteMask(front, back uint32) {
	s.StencilWriteMask = [2]uint32{front, back}
	s.touch(fieldStencilWriteMask)
}

// SetStencilReference sets the front and back stencil reference values.
func (s *DynamicState) SetStencilReference(front, back uint32) {
	s.StencilReference = [2]uint32{front, back}
	s.touch(fieldStencilReference)
}

// SetLogicOpEnable toggles framebuffer logic ops.
func (s *DynamicState) SetLogicOpEnable(enable bool) {
	s.LogicOpEnable = enable
	s.touch(fieldLogicOpEnable)
}

// SetLogicOp sets the framebuffer logic operation.
func (s *DynamicState) SetLogicOp(op LogicOp) {
	s.LogicOp = op
	s.touch(fieldLogicOp)
}

// SetBlendEnable toggles blending for one color target.
func (s *DynamicState) SetBlendEnable(target int, enable bool) {
	if target < 0 || target >= maxColorTargets {
		panic("statestream: color target index out of range")
	}
	s.BlendEnables[target] = enable
	s.touch(fieldBlendEnables)
}

// SetBlendEquation sets the blend equation for one color target.
func (s *DynamicState) SetBlendEquation(target int, eq BlendEquation) {
	if target < 0 || target >= maxColorTargets {
		panic("statestream: color target index out of range")
	}
	s.BlendEquations[target] = eq
	s.touch(fieldBlendEquations)
}

// SetColorWriteMask sets the channel write mask for one color target.
func (s *DynamicState) SetColorWriteMask(target int, mask gputypes.ColorWriteMask) {
	if target < 0 || target >= maxColorTargets {
		panic("statestream: color target index out of range")
	}
	s.ColorWriteMasks[target] = mask
	s.touch(fieldColorWriteMasks)
}

// SetBlendConstants sets the constant blend color.
func (s *DynamicState) SetBlendConstants(rgba [4]float32) {
	s.BlendConstants = rgba
	s.touch(fieldBlendConstants)
}

// SetStreamOutEnable toggles transform feedback.
func (s *DynamicState) SetStreamOutEnable(enable bool) {
	s.StreamOutEnable = enable
	s.touch(fieldStreamOutEnable)
}

// SetStreamOutDecls replaces the transform feedback output declarations.
func (s *DynamicState) SetStreamOutDecls(decls []StreamOutDecl) {
	if len(decls) > maxStreamOutDecls {
		panic("statestream: stream-out declaration count exceeds hardware limit")
	}
	s.StreamOutDecls = decls
	s.touch(fieldStreamOutDecls)
}
