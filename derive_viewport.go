package statestream

import (
	"math"

	"github.com/gogpu/statestream/internal/imath"
)

// Guard band registers hold 8.8 fixed point, so the widest representable
// extent is just under 256 in NDC units.
const guardbandCap = 255.875

// guardbandAxis maps one axis of the visible screen bounds back through
// the viewport transform into NDC. The result always covers at least the
// [-1, 1] clip volume and never exceeds the register range.
func guardbandAxis(lo, hi, scale, translate float32) (float32, float32) {
	if scale == 0 {
		return -1, 1
	}
	a := (lo - translate) / scale
	b := (hi - translate) / scale
	min := imath.Min(a, b)
	max := imath.Max(a, b)
	min = imath.Clamp(min, -guardbandCap, -1)
	max = imath.Clamp(max, 1, guardbandCap)
	return min, max
}

func (d *deriver) updateViewports() {
	d.updateViewportsLimited(0, 1)
}

// updateViewportsUnrestricted is the strategy for devices that can hold
// depth values outside [0, 1].
func (d *deriver) updateViewportsUnrestricted() {
	d.updateViewportsLimited(-math.MaxFloat32, math.MaxFloat32)
}

func (d *deriver) updateViewportsLimited(minDepthLimit, maxDepthLimit float32) {
	c := d.cache
	v := &c.values.viewport
	maxDim := float32(d.caps.MaxFramebufferDim)

	depthScale := float32(1)
	if d.state.NegativeOneToOne {
		depthScale = 0.5
	}

	n := d.state.ViewportCount
	for i := uint32(0); i < n; i++ {
		vp := &d.state.Viewports[i]

		elem := viewportElem{
			m00: vp.Width / 2,
			m11: vp.Height / 2,
			m22: (vp.MaxDepth - vp.MinDepth) * depthScale,
			m30: vp.X + vp.Width/2,
			m31: vp.Y + vp.Height/2,
			m32: vp.MinDepth,

			gbXMin: -1, gbXMax: 1,
			gbYMin: -1, gbYMax: 1,

			xMin: vp.X,
			xMax: vp.X + vp.Width - 1,
			yMin: imath.Min(vp.Y, vp.Y+vp.Height),
			yMax: imath.Max(vp.Y, vp.Y+vp.Height) - 1,
		}
		if d.state.NegativeOneToOne {
			elem.m32 = (vp.MinDepth + vp.MaxDepth) * depthScale
		}

		// Bound the visible area by the render area and, when one exists
		// for this index, the scissor. The guard band is only computed
		// when the known bounds are strictly inside the maximum
		// framebuffer size; otherwise it would come out as [-1, 1] anyway,
		// possibly with precision loss.
		xMin, xMax := float32(0), maxDim
		yMin, yMax := float32(0), maxDim
		if d.renderArea.Width > 0 && d.renderArea.Height > 0 {
			xMin = imath.Max(xMin, float32(d.renderArea.X))
			xMax = imath.Min(xMax, float32(d.renderArea.X+d.renderArea.Width))
			yMin = imath.Max(yMin, float32(d.renderArea.Y))
			yMax = imath.Min(yMax, float32(d.renderArea.Y+d.renderArea.Height))
		}
		if i < d.state.ScissorCount {
			sc := &d.state.Scissors[i]
			xMin = imath.Max(xMin, float32(sc.X))
			xMax = imath.Min(xMax, float32(sc.X+sc.Width))
			yMin = imath.Max(yMin, float32(sc.Y))
			yMax = imath.Min(yMax, float32(sc.Y+sc.Height))
		}
		if xMin > 0 || xMax < maxDim || yMin > 0 || yMax < maxDim {
			elem.gbXMin, elem.gbXMax = guardbandAxis(xMin, xMax, elem.m00, elem.m30)
			elem.gbYMin, elem.gbYMax = guardbandAxis(yMin, yMax, elem.m11, elem.m31)
		}

		// Depth limits: unclamped rendering uses the device limits, depth
		// clamping narrows to the viewport range or a user-provided one.
		minDepth, maxDepth := minDepthLimit, maxDepthLimit
		if d.state.DepthClampEnable {
			minDepth = imath.Min(vp.MinDepth, vp.MaxDepth)
			maxDepth = imath.Max(vp.MinDepth, vp.MaxDepth)
			if d.state.DepthClampUserRange {
				minDepth = d.state.DepthClampMin
				maxDepth = d.state.DepthClampMax
			}
		}
		elem.minDepth = minDepth
		elem.maxDepth = maxDepth

		setField(c, BlockViewport, &v.elems[i], elem)
	}

	v.count = variableCount(c, BlockViewport, v.count, n)
	c.SetActiveCount(BlockViewport, int(n))
}

func (d *deriver) updateScissors() {
	c := d.cache
	v := &c.values.scissor

	n := d.state.ScissorCount
	for i := uint32(0); i < n; i++ {
		s := &d.state.Scissors[i]

		var elem scissorElem
		if s.Width <= 0 || s.Height <= 0 {
			// The register maxes are inclusive, so an empty clip needs
			// max < min. Degenerate input coordinates of all zeros would
			// otherwise clamp to a one-pixel rectangle at the origin, so
			// empty rectangles are canonicalized instead.
			elem = scissorElem{xMin: 1, yMin: 1, xMax: 0, yMax: 0}
		} else {
			var vp Viewport
			if i < d.state.ViewportCount {
				vp = d.state.Viewports[i]
			}

			// Inclusive bounds, intersected with the viewport rectangle.
			// The math runs in int64 so overflow clamps correctly.
			xMin := imath.Max(int64(s.X), int64(vp.X))
			yMin := imath.Max(int64(s.Y), int64(imath.Min(vp.Y, vp.Y+vp.Height)))
			xMax := imath.Min(int64(s.X)+int64(s.Width)-1,
				int64(vp.X+vp.Width)-1)
			yMax := imath.Min(int64(s.Y)+int64(s.Height)-1,
				int64(imath.Max(vp.Y, vp.Y+vp.Height))-1)

			scMax := int64(d.caps.ScissorMax)
			xMax = imath.Clamp(xMax, 0, scMax)
			yMax = imath.Clamp(yMax, 0, scMax)

			if d.renderArea.Width > 0 && d.renderArea.Height > 0 {
				xMin = imath.Clamp(xMin, int64(d.renderArea.X), scMax)
				yMin = imath.Clamp(yMin, int64(d.renderArea.Y), scMax)
				xMax = imath.Clamp(xMax, 0,
					int64(d.renderArea.X)+int64(d.renderArea.Width)-1)
				yMax = imath.Clamp(yMax, 0,
					int64(d.renderArea.Y)+int64(d.renderArea.Height)-1)
			}
			xMin = imath.Clamp(xMin, 0, scMax)
			yMin = imath.Clamp(yMin, 0, scMax)

			elem = scissorElem{
				xMin: int32(xMin), yMin: int32(yMin),
				xMax: int32(xMax), yMax: int32(yMax),
			}
		}

		setField(c, BlockScissor, &v.elems[i], elem)
	}

	v.count = variableCount(c, BlockScissor, v.count, n)
	c.SetActiveCount(BlockScissor, int(n))
}

// variableCount applies the count rule for viewport-style blocks, where
// the valid-entry count is itself a derived register. Shrinking the count
// is a value change and dirties; growing it back within the high-water
// mark is not, because the emitted encoding always covers high-water-mark
// entries and the stale tail is still valid in hardware. Growth past the
// mark dirties through SetActiveCount. A block that is already dirty
// reprograms the count along with everything else.
func variableCount(c *BlockCache, b BlockID, cached, n uint32) uint32 {
	switch {
	case n < cached:
		c.markValueDirty(b)
	case n > cached && c.ValueDirty(b):
		// Count rides along with the repack.
	case n > cached && int(n) > c.HighWaterMark(b):
		c.markValueDirty(b)
	}
	return n
}
