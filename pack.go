package statestream

import (
	"fmt"
	"math"
)

// packFunc encodes one block's cached field values into its dword buffer.
// Packers are pure: the same values always produce the same dwords. The
// buffer is pre-cleared and sized by the caller.
type packFunc func(c *BlockCache, dst []uint32)

// headerWord builds the packet header every block encoding starts with.
// Variable-length blocks carry a count in bits 16..23. For declaration
// lists (vertex input, stream-out decls) that is the high-water entry
// count, since every packed element is part of the value; for viewports
// and scissors it is the derived active count, while the packet body
// still covers high-water-mark entries so the ones past the count stay
// programmed.
func headerWord(b BlockID, count, length int) uint32 {
	return uint32(b)<<24 | uint32(count)<<16 | uint32(length)&0xffff
}

// buildPackTable selects the packing strategy per block for one device.
// Like the derivation table, generation differences are resolved once
// here through capability flags.
func buildPackTable(caps *Capabilities) [blockCount]packFunc {
	table := [blockCount]packFunc{
		BlockPrimitiveConfig: packPrimitiveConfig,
		BlockVertexInput:     packVertexInput,
		BlockVertexShader:    packShaderStage(BlockVertexShader),
		BlockTessCtrlShader:  packShaderStage(BlockTessCtrlShader),
		BlockTessConfig:      packTessConfig,
		BlockTessEvalShader:  packShaderStage(BlockTessEvalShader),
		BlockGeometryShader:  packShaderStage(BlockGeometryShader),
		BlockStreamOut:       packStreamOut,
		BlockStreamOutDecls:  packStreamOutDecls,
		BlockClip:            packClip,
		BlockRaster:          packRaster,
		BlockMultisample:     packMultisample,
		BlockViewport:        packViewports,
		BlockScissor:         packScissors,
		BlockFragmentShader:  packShaderStage(BlockFragmentShader),
		BlockDepthStencil:    packDepthStencil,
		BlockBlend:           packBlend,
		BlockColorConstants:  packColorConstants,
	}

	// Newer generations moved the depth bias words into the extended
	// raster layout.
	if caps.Generation >= 125 {
		table[BlockRaster] = packRasterExtended
	}

	return table
}

// encodedLen returns the current encoded length of a block in words.
// Variable-length blocks always encode high-water-mark entries so that
// shrinking the active count can reuse the stale tail without repacking.
func encodedLen(c *BlockCache, b BlockID) int {
	info := &blockTable[b]
	if b.variable() {
		return 1 + info.elemLen*c.highWater[b]
	}
	return info.fixedLen
}

// mergeTemplate ORs the pipeline template's static bits into a freshly
// packed encoding. Static and dynamic bit ranges must never intersect for
// the same block; an overlap means the packer and the template disagree
// about ownership of a field, which is a driver defect.
func mergeTemplate(b BlockID, dst []uint32, bits *templateBits) {
	if bits == nil {
		return
	}
	for i := range dst {
		if i >= len(bits.words) {
			break
		}
		if dst[i]&bits.mask[i] != 0 {
			panic(fmt.Sprintf(
				"statestream: block %s word %d: dynamic bits %#x overlap template mask %#x",
				b, i, dst[i], bits.mask[i]))
		}
		dst[i] |= bits.words[i]
	}
}

func boolBit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}
	return 0
}

func f32bits(f float32) uint32 {
	return math.Float32bits(f)
}

func packPrimitiveConfig(c *BlockCache, dst []uint32) {
	v := &c.values.primitiveConfig
	dst[0] = headerWord(BlockPrimitiveConfig, 0, lenPrimitiveConfig)
	dst[1] = v.topology | boolBit(v.restart, 8)
}

func packVertexInput(c *BlockCache, dst []uint32) {
	n := c.highWater[BlockVertexInput]
	dst[0] = headerWord(BlockVertexInput, n, len(dst))
	for i := 0; i < n; i++ {
		a := &c.values.vertexInput.attrs[i]
		w := dst[1+i*elemLenVertexInput:]
		w[0] = a.ShaderLocation<<24 | uint32(a.Format)
		w[1] = uint32(a.Offset)
	}
}

// packShaderStage returns the packer for one programmable stage block.
// Word 1 carries the enable bit and per-draw configuration; words 2..5
// belong to the pipeline template (program identity) and stay zero here.
// A disabled stage packs to the explicit all-zero payload, the hardware's
// stage-off encoding.
func packShaderStage(b BlockID) packFunc {
	return func(c *BlockCache, dst []uint32) {
		v := stageBundle(c, b)
		dst[0] = headerWord(b, 0, lenShaderStage)
		if !v.enabled {
			return
		}
		dst[1] = 1 | v.config<<8
	}
}

func packTessConfig(c *BlockCache, dst []uint32) {
	v := &c.values.tessConfig
	dst[0] = headerWord(BlockTessConfig, 0, lenTessConfig)
	dst[1] = v.patchPoints | v.partitioning<<8 | v.outputTopology<<16
}

func packStreamOut(c *BlockCache, dst []uint32) {
	v := &c.values.streamOut
	dst[0] = headerWord(BlockStreamOut, 0, lenStreamOut)
	dst[1] = boolBit(v.enabled, 0) | boolBit(v.renderDisable, 1) | v.reorderMode<<2
}

func packStreamOutDecls(c *BlockCache, dst []uint32) {
	n := c.highWater[BlockStreamOutDecls]
	dst[0] = headerWord(BlockStreamOutDecls, n, len(dst))
	for i := 0; i < n; i++ {
		d := &c.values.streamOutDecls.decls[i]
		w := dst[1+i*elemLenStreamOutDecl:]
		w[0] = uint32(d.Buffer) | uint32(d.Slot)<<8 | uint32(d.ComponentMask)<<16
		w[1] = uint32(d.HoleSize)
	}
}

func packClip(c *BlockCache, dst []uint32) {
	v := &c.values.clip
	dst[0] = headerWord(BlockClip, 0, lenClip)
	dst[1] = boolBit(v.enable, 0) | v.apiMode<<1 | boolBit(v.negOneToOne, 3) |
		uint32(v.provoking.triStrip)<<8 |
		uint32(v.provoking.lineStrip)<<10 |
		uint32(v.provoking.triFan)<<12
	dst[2] = v.viewportCount
}

func packRaster(c *BlockCache, dst []uint32) {
	v := &c.values.raster
	dst[0] = headerWord(BlockRaster, 0, lenRaster)
	dst[1] = v.cullMode | boolBit(v.frontCW, 2) | v.fillMode<<3 |
		v.lineAAPair<<8 | boolBit(v.biasEnable, 16) |
		boolBit(v.depthClip, 17) | boolBit(v.depthClamp, 18) |
		boolBit(v.msRaster, 19)
	dst[2] = f32bits(v.biasConst)
	dst[3] = f32bits(v.biasSlope)
	dst[4] = f32bits(v.biasClamp)
	dst[5] = v.lineWidth
}

// packRasterExtended is the layout for generations that moved the line
// width next to the control word and widened the bias fields.
func packRasterExtended(c *BlockCache, dst []uint32) {
	v := &c.values.raster
	dst[0] = headerWord(BlockRaster, 0, lenRaster)
	dst[1] = v.cullMode | boolBit(v.frontCW, 2) | v.fillMode<<3 |
		v.lineAAPair<<8 | boolBit(v.biasEnable, 16) |
		boolBit(v.depthClip, 17) | boolBit(v.depthClamp, 18) |
		boolBit(v.msRaster, 19)
	dst[2] = v.lineWidth
	dst[3] = f32bits(v.biasConst)
	dst[4] = f32bits(v.biasSlope)
	dst[5] = f32bits(v.biasClamp)
}

func packMultisample(c *BlockCache, dst []uint32) {
	v := &c.values.multisample
	dst[0] = headerWord(BlockMultisample, 0, lenMultisample)
	dst[1] = v.samplesLog2 | boolBit(v.alphaToCoverage, 4) | boolBit(v.alphaToOne, 5)
	dst[2] = v.mask
}

func packViewports(c *BlockCache, dst []uint32) {
	v := &c.values.viewport
	dst[0] = headerWord(BlockViewport, int(v.count), len(dst))
	for i := 0; i < c.highWater[BlockViewport]; i++ {
		e := &v.elems[i]
		w := dst[1+i*elemLenViewport:]
		w[0] = f32bits(e.m00)
		w[1] = f32bits(e.m11)
		w[2] = f32bits(e.m22)
		w[3] = f32bits(e.m30)
		w[4] = f32bits(e.m31)
		w[5] = f32bits(e.m32)
		w[6] = f32bits(e.gbXMin)
		w[7] = f32bits(e.gbXMax)
		w[8] = f32bits(e.gbYMin)
		w[9] = f32bits(e.gbYMax)
		w[10] = f32bits(e.xMin)
		w[11] = f32bits(e.xMax)
		w[12] = f32bits(e.minDepth)
		w[13] = f32bits(e.maxDepth)
	}
}

func packScissors(c *BlockCache, dst []uint32) {
	v := &c.values.scissor
	dst[0] = headerWord(BlockScissor, int(v.count), len(dst))
	for i := 0; i < c.highWater[BlockScissor]; i++ {
		e := &v.elems[i]
		w := dst[1+i*elemLenScissor:]
		w[0] = uint32(e.xMin)&0xffff | uint32(e.yMin)<<16
		w[1] = uint32(e.xMax)&0xffff | uint32(e.yMax)<<16
	}
}

func packDepthStencil(c *BlockCache, dst []uint32) {
	v := &c.values.depthStencil
	dst[0] = headerWord(BlockDepthStencil, 0, lenDepthStencil)
	dst[1] = boolBit(v.depthTest, 0) | boolBit(v.depthWrite, 1) |
		boolBit(v.boundsTest, 2) | boolBit(v.stencilTest, 3) |
		v.depthFunc<<8
	dst[2] = v.front.fail | v.front.pass<<4 | v.front.depthFail<<8 | v.front.fn<<12
	dst[3] = v.back.fail | v.back.pass<<4 | v.back.depthFail<<8 | v.back.fn<<12
	dst[4] = v.cmpMask[0]&0xff | (v.cmpMask[1]&0xff)<<8 |
		(v.wrMask[0]&0xff)<<16 | (v.wrMask[1]&0xff)<<24
}

func packBlend(c *BlockCache, dst []uint32) {
	v := &c.values.blend
	n := c.highWater[BlockBlend]
	dst[0] = headerWord(BlockBlend, n, len(dst))
	for i := 0; i < n; i++ {
		t := &v.targets[i]
		w := dst[1+i*elemLenBlend:]
		w[0] = boolBit(t.enable, 0) | t.srcColor<<8 | t.dstColor<<16 | t.colorOp<<24
		w[1] = t.srcAlpha | t.dstAlpha<<8 | t.alphaOp<<16 |
			boolBit(v.logicOpEnable, 19) | v.logicOp<<20 | t.writeMask<<24
	}
}

func packColorConstants(c *BlockCache, dst []uint32) {
	v := &c.values.colorConstants
	dst[0] = headerWord(BlockColorConstants, 0, lenColorConstants)
	dst[1] = f32bits(v.blend[0])
	dst[2] = f32bits(v.blend[1])
	dst[3] = f32bits(v.blend[2])
	dst[4] = f32bits(v.blend[3])
	dst[5] = v.stencilRef[0] | v.stencilRef[1]<<8
	dst[6] = f32bits(v.depthBounds[0])
	dst[7] = f32bits(v.depthBounds[1])
}
