package statestream

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/statestream/internal/bitset"
)

// Derived field-value bundles, one per hardware block. These hold hardware
// register values, not API values: the derivation engine translates API
// enums into them and the packers turn them into dwords. Every field is
// comparable so the compare-and-set in setField works across all of them.

type primitiveConfigValues struct {
	topology uint32
	restart  bool
}

type stageValues struct {
	enabled bool
	hash    uint64
	config  uint32
}

type tessConfigValues struct {
	patchPoints    uint32
	partitioning   uint32
	outputTopology uint32
}

type streamOutValues struct {
	enabled       bool
	renderDisable bool
	reorderMode   uint32
}

type streamOutDeclValues struct {
	decls [maxStreamOutDecls]StreamOutDecl
}

type provokingSelects struct {
	triStrip  uint8
	lineStrip uint8
	triFan    uint8
}

type clipValues struct {
	enable        bool
	apiMode       uint32
	viewportCount uint32
	negOneToOne   bool
	provoking     provokingSelects
}

type rasterValues struct {
	cullMode   uint32
	frontCW    bool
	fillMode   uint32
	lineAAPair uint32
	lineWidth  uint32

	biasEnable bool
	biasConst  float32
	biasSlope  float32
	biasClamp  float32

	depthClip  bool
	depthClamp bool
	msRaster   bool
}

type multisampleValues struct {
	samplesLog2     uint32
	mask            uint32
	alphaToCoverage bool
	alphaToOne      bool
}

type viewportElem struct {
	m00, m11, m22 float32
	m30, m31, m32 float32

	gbXMin, gbXMax float32
	gbYMin, gbYMax float32

	xMin, xMax float32
	yMin, yMax float32

	minDepth, maxDepth float32
}

type viewportValues struct {
	count uint32
	elems [maxViewports]viewportElem
}

type scissorElem struct {
	xMin, yMin int32
	xMax, yMax int32
}

type scissorValues struct {
	count uint32
	elems [maxViewports]scissorElem
}

type stencilFaceHW struct {
	fail      uint32
	pass      uint32
	depthFail uint32
	fn        uint32
}

type depthStencilValues struct {
	depthTest   bool
	depthWrite  bool
	depthFunc   uint32
	boundsTest  bool
	stencilTest bool
	front       stencilFaceHW
	back        stencilFaceHW
	cmpMask     [2]uint32
	wrMask      [2]uint32
}

type blendTargetHW struct {
	enable    bool
	srcColor  uint32
	dstColor  uint32
	colorOp   uint32
	srcAlpha  uint32
	dstAlpha  uint32
	alphaOp   uint32
	writeMask uint32
}

type blendValues struct {
	logicOpEnable bool
	logicOp       uint32
	targets       [maxColorTargets]blendTargetHW
}

type colorConstantValues struct {
	blend       [4]float32
	stencilRef  [2]uint32
	depthBounds [2]float32
}

type vertexInputValues struct {
	attrs [maxVertexAttributes]gputypes.VertexAttribute
}

// hwValues is the full derived-state mirror for one recording context.
type hwValues struct {
	primitiveConfig primitiveConfigValues
	vertexInput     vertexInputValues
	vs, hs, te, gs  stageValues
	ps              stageValues
	tessConfig      tessConfigValues
	streamOut       streamOutValues
	streamOutDecls  streamOutDeclValues
	clip            clipValues
	raster          rasterValues
	multisample     multisampleValues
	viewport        viewportValues
	scissor         scissorValues
	depthStencil    depthStencilValues
	blend           blendValues
	colorConstants  colorConstantValues
}

// BlockCache holds, for one recording context, every block's derived field
// values, its cached encoded dwords, and the two dirty bits that drive the
// incremental flush: valueDirty (derived values changed since the last
// pack) and encodeDirty (encoded dwords changed since the last emission).
//
// The cache is created when command recording begins, mutated only by the
// flush cycle, and reset when the context is reused. It is not safe for
// concurrent use; each recording context owns exactly one.
type BlockCache struct {
	values hwValues

	valueDirty  bitset.Set
	encodeDirty bitset.Set

	// packed holds each block's most recently packed encoding. Fixed
	// blocks get storage at construction; variable blocks grow theirs from
	// the scratch arena as their high-water mark rises.
	packed    [blockCount][]uint32
	packedLen [blockCount]int

	// activeCount and highWater track variable-length block occupancy.
	// The packed encoding always covers highWater elements, so shrinking
	// activeCount reuses stale tail entries without repacking.
	activeCount [blockCount]int
	highWater   [blockCount]int
}

// newBlockCache allocates a cache with storage for every fixed block.
// Variable-length blocks start with no storage; it is acquired from the
// scratch arena the first time they pack.
func newBlockCache() *BlockCache {
	c := &BlockCache{}
	for b := BlockID(0); b < blockCount; b++ {
		if !b.variable() {
			c.packed[b] = make([]uint32, b.maxLen())
		}
	}
	return c
}

// Reset returns the cache to its just-constructed state. Variable-length
// storage is dropped because the arena that backed it is released with the
// recording.
func (c *BlockCache) Reset() {
	c.values = hwValues{}
	c.valueDirty.Reset()
	c.encodeDirty.Reset()
	for b := BlockID(0); b < blockCount; b++ {
		if b.variable() {
			c.packed[b] = nil
		} else {
			clear(c.packed[b])
		}
		c.packedLen[b] = 0
		c.activeCount[b] = 0
		c.highWater[b] = 0
	}
}

// ValueDirty reports whether a block's derived values are stale relative
// to its packed encoding.
func (c *BlockCache) ValueDirty(b BlockID) bool {
	return c.valueDirty.Test(int(b))
}

// EncodeDirty reports whether a block's packed encoding has not been
// emitted yet.
func (c *BlockCache) EncodeDirty(b BlockID) bool {
	return c.encodeDirty.Test(int(b))
}

// SetActiveCount updates a variable-length block's element count under the
// high-water-mark rule: shrinking reuses stale tail entries without
// dirtying, growing past the previous high-water mark always dirties and
// raises the mark.
func (c *BlockCache) SetActiveCount(b BlockID, n int) {
	if !b.variable() {
		panic("statestream: SetActiveCount on fixed-length block " + b.String())
	}
	if n < 0 || n > blockTable[b].maxElems {
		panic("statestream: active count out of range for block " + b.String())
	}
	c.activeCount[b] = n
	if n > c.highWater[b] {
		c.highWater[b] = n
		c.valueDirty.Set(int(b))
	}
}

// ActiveCount returns a variable-length block's current element count.
func (c *BlockCache) ActiveCount(b BlockID) int {
	return c.activeCount[b]
}

// HighWaterMark returns the largest element count the block has held.
func (c *BlockCache) HighWaterMark(b BlockID) int {
	return c.highWater[b]
}

// markValueDirty flags a block for repacking.
func (c *BlockCache) markValueDirty(b BlockID) {
	c.valueDirty.Set(int(b))
}

// setField compares a derived field against its cached value and, on
// difference, updates the cache and marks the owning block value-dirty.
// Setting a field to its current value is a no-op. This is the single
// compare-and-set used for every fixed field in the derivation engine.
func setField[T comparable](c *BlockCache, b BlockID, dst *T, v T) {
	if *dst != v {
		*dst = v
		c.valueDirty.Set(int(b))
	}
}

// setStageField is setField for values that only reach the hardware while
// their stage is bound. When the stage is unbound the cache is updated
// silently: the stage block's disabled encoding does not depend on the
// value, so there is nothing to re-emit.
func setStageField[T comparable](c *BlockCache, b BlockID, bound bool, dst *T, v T) {
	if !bound {
		*dst = v
		return
	}
	setField(c, b, dst, v)
}
