package statestream

import "github.com/gogpu/gputypes"

// Hardware comparison function encodings. ALWAYS is the hardware default
// of zero.
func hwCompareFunc(f gputypes.CompareFunction) uint32 {
	switch f {
	case gputypes.CompareFunctionAlways:
		return 0
	case gputypes.CompareFunctionNever:
		return 1
	case gputypes.CompareFunctionLess:
		return 2
	case gputypes.CompareFunctionEqual:
		return 3
	case gputypes.CompareFunctionLessEqual:
		return 4
	case gputypes.CompareFunctionGreater:
		return 5
	case gputypes.CompareFunctionNotEqual:
		return 6
	case gputypes.CompareFunctionGreaterEqual:
		return 7
	default:
		panic("statestream: compare function has no hardware encoding")
	}
}

func hwStencilOp(op gputypes.StencilOperation) uint32 {
	switch op {
	case gputypes.StencilOperationKeep:
		return 0
	case gputypes.StencilOperationZero:
		return 1
	case gputypes.StencilOperationReplace:
		return 2
	case gputypes.StencilOperationIncrementClamp:
		return 3
	case gputypes.StencilOperationDecrementClamp:
		return 4
	case gputypes.StencilOperationIncrementWrap:
		return 5
	case gputypes.StencilOperationDecrementWrap:
		return 6
	case gputypes.StencilOperationInvert:
		return 7
	default:
		panic("statestream: stencil operation has no hardware encoding")
	}
}

func hwBlendFactor(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0x11
	case gputypes.BlendFactorOne:
		return 0x01
	case gputypes.BlendFactorSrc:
		return 0x02
	case gputypes.BlendFactorOneMinusSrc:
		return 0x12
	case gputypes.BlendFactorSrcAlpha:
		return 0x03
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 0x13
	case gputypes.BlendFactorDst:
		return 0x09
	case gputypes.BlendFactorOneMinusDst:
		return 0x19
	case gputypes.BlendFactorDstAlpha:
		return 0x0a
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 0x1a
	case gputypes.BlendFactorSrcAlphaSaturated:
		return 0x04
	case gputypes.BlendFactorConstant:
		return 0x05
	case gputypes.BlendFactorOneMinusConstant:
		return 0x15
	default:
		panic("statestream: blend factor has no hardware encoding")
	}
}

func hwBlendOp(op gputypes.BlendOperation) uint32 {
	switch op {
	case gputypes.BlendOperationAdd:
		return 0
	case gputypes.BlendOperationSubtract:
		return 1
	case gputypes.BlendOperationReverseSubtract:
		return 2
	case gputypes.BlendOperationMin:
		return 3
	case gputypes.BlendOperationMax:
		return 4
	default:
		panic("statestream: blend operation has no hardware encoding")
	}
}

func hwStencilFace(f StencilFace) stencilFaceHW {
	return stencilFaceHW{
		fail:      hwStencilOp(f.Fail),
		pass:      hwStencilOp(f.Pass),
		depthFail: hwStencilOp(f.DepthFail),
		fn:        hwCompareFunc(f.Compare),
	}
}

func (d *deriver) updateDepthStencil() {
	c := d.cache
	v := &c.values.depthStencil

	// Without a depth/stencil attachment the whole unit is forced off;
	// leaving a stale enable bit set reads garbage memory on some
	// generations.
	hasDS := d.tmpl.depthFormat != gputypes.TextureFormatUndefined

	depthTest := hasDS && d.state.DepthTestEnable
	stencilTest := hasDS && d.state.StencilTestEnable

	setField(c, BlockDepthStencil, &v.depthTest, depthTest)
	setField(c, BlockDepthStencil, &v.depthWrite, hasDS && d.state.DepthWriteEnable)
	if depthTest {
		setField(c, BlockDepthStencil, &v.depthFunc, hwCompareFunc(d.state.DepthCompare))
	} else {
		setField(c, BlockDepthStencil, &v.depthFunc, uint32(0))
	}
	setField(c, BlockDepthStencil, &v.boundsTest, hasDS && d.state.DepthBoundsTestEnable)
	setField(c, BlockDepthStencil, &v.stencilTest, stencilTest)

	if stencilTest {
		setField(c, BlockDepthStencil, &v.front, hwStencilFace(d.state.StencilFront))
		setField(c, BlockDepthStencil, &v.back, hwStencilFace(d.state.StencilBack))
		setField(c, BlockDepthStencil, &v.cmpMask, d.state.StencilCompareMask)
		setField(c, BlockDepthStencil, &v.wrMask, d.state.StencilWriteMask)
	} else {
		setField(c, BlockDepthStencil, &v.front, stencilFaceHW{})
		setField(c, BlockDepthStencil, &v.back, stencilFaceHW{})
		setField(c, BlockDepthStencil, &v.cmpMask, [2]uint32{})
		setField(c, BlockDepthStencil, &v.wrMask, [2]uint32{})
	}
}

func (d *deriver) updateBlend() {
	c := d.cache
	v := &c.values.blend

	setField(c, BlockBlend, &v.logicOpEnable, d.state.LogicOpEnable)
	if d.state.LogicOpEnable {
		setField(c, BlockBlend, &v.logicOp, uint32(d.state.LogicOp))
	} else {
		setField(c, BlockBlend, &v.logicOp, uint32(LogicOpCopy))
	}

	for i := 0; i < d.tmpl.colorCount; i++ {
		var t blendTargetHW

		// Logic ops and blending are mutually exclusive; logic ops win,
		// matching the API rule that blending is ignored while they are
		// enabled.
		enable := d.state.BlendEnables[i] && !d.state.LogicOpEnable
		if enable {
			eq := &d.state.BlendEquations[i]
			t = blendTargetHW{
				enable:   true,
				srcColor: hwBlendFactor(eq.SrcColor),
				dstColor: hwBlendFactor(eq.DstColor),
				colorOp:  hwBlendOp(eq.ColorOp),
				srcAlpha: hwBlendFactor(eq.SrcAlpha),
				dstAlpha: hwBlendFactor(eq.DstAlpha),
				alphaOp:  hwBlendOp(eq.AlphaOp),
			}
		}
		t.writeMask = uint32(d.state.ColorWriteMasks[i])

		setField(c, BlockBlend, &v.targets[i], t)
	}
	c.SetActiveCount(BlockBlend, d.tmpl.colorCount)
}

func (d *deriver) updateColorConstants() {
	c := d.cache
	v := &c.values.colorConstants

	setField(c, BlockColorConstants, &v.blend, d.state.BlendConstants)
	setField(c, BlockColorConstants, &v.stencilRef, d.state.StencilReference)
	setField(c, BlockColorConstants, &v.depthBounds,
		[2]float32{d.state.DepthBoundsMin, d.state.DepthBoundsMax})
}
