package statestream

// BlockID identifies one hardware configuration block: a hardware-defined
// group of registers with a single fixed wire encoding, tracked and
// re-emitted as a unit.
type BlockID uint8

// Hardware blocks, in emission order. The hardware requires command order
// to match logical pipeline stage order, so the declaration order below is
// also the emission order: vertex-input blocks, then geometry-stage blocks,
// then rasterizer blocks, then fragment blocks, then output-merger blocks.
const (
	// Vertex input stage.
	BlockPrimitiveConfig BlockID = iota
	BlockVertexInput

	// Geometry stages.
	BlockVertexShader
	BlockTessCtrlShader
	BlockTessConfig
	BlockTessEvalShader
	BlockGeometryShader
	BlockStreamOut
	BlockStreamOutDecls

	// Rasterizer.
	BlockClip
	BlockRaster
	BlockMultisample
	BlockViewport
	BlockScissor

	// Fragment stage.
	BlockFragmentShader
	BlockDepthStencil

	// Output merger.
	BlockBlend
	BlockColorConstants

	blockCount
)

var blockNames = [blockCount]string{
	BlockPrimitiveConfig: "primitive-config",
	BlockVertexInput:     "vertex-input",
	BlockVertexShader:    "vertex-shader",
	BlockTessCtrlShader:  "tess-ctrl-shader",
	BlockTessConfig:      "tess-config",
	BlockTessEvalShader:  "tess-eval-shader",
	BlockGeometryShader:  "geometry-shader",
	BlockStreamOut:       "stream-out",
	BlockStreamOutDecls:  "stream-out-decls",
	BlockClip:            "clip",
	BlockRaster:          "raster",
	BlockMultisample:     "multisample",
	BlockViewport:        "viewport",
	BlockScissor:         "scissor",
	BlockFragmentShader:  "fragment-shader",
	BlockDepthStencil:    "depth-stencil",
	BlockBlend:           "blend",
	BlockColorConstants:  "color-constants",
}

// String returns the block's name for logging and diagnostics.
func (b BlockID) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return "unknown-block"
}

// Fixed encoded lengths in 32-bit words. Variable-length blocks report the
// per-element length instead; their total length is header + count*element.
const (
	lenPrimitiveConfig = 2
	lenShaderStage     = 6
	lenTessConfig      = 3
	lenStreamOut       = 4
	lenClip            = 3
	lenRaster          = 6
	lenMultisample     = 3
	lenDepthStencil    = 5
	lenColorConstants  = 8

	// Variable blocks: one header word plus elemLen words per element.
	elemLenVertexInput   = 2
	elemLenStreamOutDecl = 2
	elemLenViewport      = 14
	elemLenScissor       = 2
	elemLenBlend         = 2
)

// blockInfo is the static per-block metadata: how large the encoding is,
// which pipeline stage the block belongs to (for the disabled-encoding rule
// on shader blocks), and which dynamic state fields it reads.
type blockInfo struct {
	// fixedLen is the encoded length in words for fixed-size blocks, and
	// zero for variable-length blocks.
	fixedLen int

	// elemLen is the per-element encoded length for variable-length blocks.
	elemLen int

	// maxElems bounds the element count for variable-length blocks.
	maxElems int

	// stage is the shader stage the block programs, or StageNone for
	// fixed-function blocks. Shader-stage blocks are never skipped when the
	// stage is unbound; they emit the stage's disabled encoding instead.
	stage Stage

	// deps lists the dynamic state fields whose mutation triggers
	// re-derivation of this block.
	deps []fieldID

	// templateSensitive marks blocks that must be re-derived whenever the
	// bound pipeline template changes (stage composition or static bits).
	templateSensitive bool

	// attachmentSensitive marks blocks that must be re-derived when the
	// render target formats or render area change.
	attachmentSensitive bool
}

var blockTable = [blockCount]blockInfo{
	BlockPrimitiveConfig: {
		fixedLen: lenPrimitiveConfig,
		deps:     []fieldID{fieldTopology, fieldPrimitiveRestart},
		// The patch-list override depends on the bound tessellation
		// stages.
		templateSensitive: true,
	},
	BlockVertexInput: {
		elemLen:  elemLenVertexInput,
		maxElems: maxVertexAttributes,
		deps:     []fieldID{fieldVertexAttributes},
	},
	BlockVertexShader: {
		fixedLen:          lenShaderStage,
		stage:             StageVertex,
		templateSensitive: true,
	},
	BlockTessCtrlShader: {
		fixedLen:          lenShaderStage,
		stage:             StageTessCtrl,
		deps:              []fieldID{fieldPatchControlPoints},
		templateSensitive: true,
	},
	BlockTessConfig: {
		fixedLen:          lenTessConfig,
		deps:              []fieldID{fieldPatchControlPoints, fieldTopology},
		templateSensitive: true,
	},
	BlockTessEvalShader: {
		fixedLen:          lenShaderStage,
		stage:             StageTessEval,
		templateSensitive: true,
	},
	BlockGeometryShader: {
		fixedLen:          lenShaderStage,
		stage:             StageGeometry,
		templateSensitive: true,
	},
	BlockStreamOut: {
		fixedLen: lenStreamOut,
		deps: []fieldID{
			fieldStreamOutEnable, fieldRasterizerDiscard, fieldProvokingVertex,
		},
		templateSensitive: true,
	},
	BlockStreamOutDecls: {
		elemLen:           elemLenStreamOutDecl,
		maxElems:          maxStreamOutDecls,
		deps:              []fieldID{fieldStreamOutDecls},
		templateSensitive: true,
	},
	BlockClip: {
		fixedLen: lenClip,
		deps: []fieldID{
			fieldTopology, fieldProvokingVertex, fieldRasterizerDiscard,
			fieldViewports, fieldNegativeOneToOne,
		},
		templateSensitive: true,
	},
	BlockRaster: {
		fixedLen: lenRaster,
		deps: []fieldID{
			fieldCullMode, fieldFrontFace, fieldPolygonMode, fieldLineMode,
			fieldLineWidth, fieldDepthBiasEnable, fieldDepthBias,
			fieldDepthClipEnable, fieldDepthClampEnable, fieldRasterSamples,
		},
	},
	BlockMultisample: {
		fixedLen: lenMultisample,
		deps: []fieldID{
			fieldRasterSamples, fieldSampleMask, fieldAlphaToCoverage,
			fieldAlphaToOne,
		},
	},
	BlockViewport: {
		elemLen:  elemLenViewport,
		maxElems: maxViewports,
		deps: []fieldID{
			fieldViewports, fieldNegativeOneToOne, fieldDepthClampEnable,
			fieldDepthClampRange, fieldScissors,
		},
		attachmentSensitive: true,
	},
	BlockScissor: {
		elemLen:             elemLenScissor,
		maxElems:            maxViewports,
		deps:                []fieldID{fieldScissors, fieldViewports},
		attachmentSensitive: true,
	},
	BlockFragmentShader: {
		fixedLen: lenShaderStage,
		stage:    StageFragment,
		deps: []fieldID{
			fieldRasterSamples, fieldBlendEnables, fieldColorWriteMasks,
			fieldLogicOpEnable,
		},
		templateSensitive: true,
	},
	BlockDepthStencil: {
		fixedLen: lenDepthStencil,
		deps: []fieldID{
			fieldDepthTestEnable, fieldDepthWriteEnable, fieldDepthCompare,
			fieldDepthBoundsTestEnable, fieldStencilTestEnable,
			fieldStencilOps, fieldStencilCompareMask, fieldStencilWriteMask,
		},
		attachmentSensitive: true,
	},
	BlockBlend: {
		elemLen:  elemLenBlend,
		maxElems: maxColorTargets,
		deps: []fieldID{
			fieldBlendEnables, fieldBlendEquations, fieldColorWriteMasks,
			fieldLogicOpEnable, fieldLogicOp,
		},
		attachmentSensitive: true,
	},
	BlockColorConstants: {
		fixedLen: lenColorConstants,
		deps: []fieldID{
			fieldBlendConstants, fieldStencilReference, fieldDepthBounds,
		},
	},
}

// variable reports whether the block has a variable-length encoding.
func (b BlockID) variable() bool {
	return blockTable[b].elemLen != 0
}

// maxLen returns the largest encoding the block can produce, in words.
func (b BlockID) maxLen() int {
	info := &blockTable[b]
	if b.variable() {
		return 1 + info.elemLen*info.maxElems
	}
	return info.fixedLen
}

// emitOrder lists every block in the order the sequencer walks them.
// It mirrors the declaration order of the BlockID constants.
var emitOrder = func() [blockCount]BlockID {
	var order [blockCount]BlockID
	for i := range order {
		order[i] = BlockID(i)
	}
	return order
}()
