package statestream

import (
	"github.com/gogpu/gputypes"
)

// TemplateDescriptor describes the compile-time portion of a graphics
// pipeline: which stages exist, the program identity per stage, and the
// attachment formats. Everything else is dynamic state.
type TemplateDescriptor struct {
	// Stages is the set of programmable stages bound by the pipeline.
	Stages StageMask

	// ShaderHashes gives the program identity per stage, indexed by Stage.
	// Unbound stages must be zero.
	ShaderHashes [StageFragment + 1]uint64

	// UsesStreamOut reports whether any stage writes transform feedback.
	UsesStreamOut bool

	// TessDomain selects the tessellation domain when tessellation stages
	// are present: 0 triangles, 1 quads, 2 isolines.
	TessDomain uint8

	// ColorFormats lists the color attachment formats, in target order.
	ColorFormats []gputypes.TextureFormat

	// DepthFormat is the depth/stencil attachment format, or
	// TextureFormatUndefined when there is none.
	DepthFormat gputypes.TextureFormat
}

// templateBits is the prepacked static portion of one block's encoding.
// words holds the static dword values and mask marks the bits owned by the
// template; pack-time merging asserts that dynamically packed bits never
// land inside mask.
type templateBits struct {
	words []uint32
	mask  []uint32
}

// PipelineTemplate is the immutable, compile-time-baked partial encoding
// for one pipeline. It is produced once at pipeline creation, shared
// read-only across any number of recording contexts, and never mutated by
// the state compiler.
type PipelineTemplate struct {
	stages        StageMask
	usesStreamOut bool
	tessDomain    uint8
	shaderHashes  [StageFragment + 1]uint64
	soLayout      uint32

	colorCount   int
	colorFormats [maxColorTargets]gputypes.TextureFormat
	depthFormat  gputypes.TextureFormat

	static [blockCount]templateBits
}

// NewPipelineTemplate bakes the static encoding bits for a pipeline.
// The result is a pure function of the descriptor.
func NewPipelineTemplate(desc *TemplateDescriptor) (*PipelineTemplate, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}
	if len(desc.ColorFormats) > maxColorTargets {
		return nil, ErrTooManyColorTargets
	}
	if desc.Stages.Has(StageTessCtrl) != desc.Stages.Has(StageTessEval) {
		// Tessellation stages come in pairs; a pipeline with only one is a
		// compiler front-end defect.
		panic("statestream: pipeline binds only one tessellation stage")
	}

	t := &PipelineTemplate{
		stages:        desc.Stages,
		usesStreamOut: desc.UsesStreamOut,
		tessDomain:    desc.TessDomain,
		shaderHashes:  desc.ShaderHashes,
		soLayout:      streamOutLayoutWord(desc),
		colorCount:    len(desc.ColorFormats),
		depthFormat:   desc.DepthFormat,
	}
	copy(t.colorFormats[:], desc.ColorFormats)

	for stage, block := range stageBlocks {
		if !desc.Stages.Has(stage) {
			continue
		}
		hash := desc.ShaderHashes[stage]
		// Words 0..1 of a shader stage block are dynamic (enable and
		// per-draw configuration); words 2..5 carry the program identity
		// and are baked here.
		bits := templateBits{
			words: make([]uint32, lenShaderStage),
			mask:  make([]uint32, lenShaderStage),
		}
		bits.words[2] = uint32(hash)
		bits.words[3] = uint32(hash >> 32)
		bits.words[4] = stageDispatchWord(stage)
		bits.words[5] = stageBindingWord(stage, hash)
		for w := 2; w < lenShaderStage; w++ {
			bits.mask[w] = 0xffffffff
		}
		t.static[block] = bits
	}

	if desc.Stages.Has(StageTessCtrl) {
		bits := templateBits{
			words: make([]uint32, lenTessConfig),
			mask:  make([]uint32, lenTessConfig),
		}
		// Word 2 bakes the domain; words 0..1 stay dynamic (patch size and
		// topology-derived partitioning).
		bits.words[2] = uint32(desc.TessDomain) << 1
		bits.mask[2] = 0xffffffff
		t.static[BlockTessConfig] = bits
	}

	if desc.UsesStreamOut {
		bits := templateBits{
			words: make([]uint32, lenStreamOut),
			mask:  make([]uint32, lenStreamOut),
		}
		// Word 3 bakes the buffer binding layout chosen at link time.
		bits.words[3] = t.soLayout
		bits.mask[3] = 0xffffffff
		t.static[BlockStreamOut] = bits
	}

	return t, nil
}

// stageBlocks maps each programmable stage to its shader block.
var stageBlocks = map[Stage]BlockID{
	StageVertex:   BlockVertexShader,
	StageTessCtrl: BlockTessCtrlShader,
	StageTessEval: BlockTessEvalShader,
	StageGeometry: BlockGeometryShader,
	StageFragment: BlockFragmentShader,
}

// Stages returns the set of programmable stages the pipeline binds.
func (t *PipelineTemplate) Stages() StageMask {
	return t.stages
}

// UsesStreamOut reports whether the pipeline writes transform feedback.
func (t *PipelineTemplate) UsesStreamOut() bool {
	return t.usesStreamOut
}

// ColorTargetCount returns the number of color attachments.
func (t *PipelineTemplate) ColorTargetCount() int {
	return t.colorCount
}

// staticBits returns the template's prepacked bits for a block, or nil
// when the template contributes nothing to that block.
func (t *PipelineTemplate) staticBits(b BlockID) *templateBits {
	bits := &t.static[b]
	if bits.words == nil {
		return nil
	}
	return bits
}

func stageDispatchWord(s Stage) uint32 {
	// Fixed per-stage dispatch configuration; real values come from the
	// shader compiler, which is outside this subsystem.
	return 0x80000000 | uint32(s)<<24
}

func stageBindingWord(s Stage, hash uint64) uint32 {
	return uint32(s)<<28 | uint32(hash>>36)&0x0fffffff
}

func streamOutLayoutWord(desc *TemplateDescriptor) uint32 {
	var w uint32
	for s := StageVertex; s <= StageFragment; s++ {
		if desc.Stages.Has(s) {
			w ^= uint32(desc.ShaderHashes[s] >> 48)
		}
	}
	return w<<8 | uint32(desc.TessDomain)
}
