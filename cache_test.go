package statestream

import "testing"

func TestSetFieldDirtiesOnChange(t *testing.T) {
	c := newBlockCache()

	setField(c, BlockRaster, &c.values.raster.lineWidth, uint32(128))
	if !c.ValueDirty(BlockRaster) {
		t.Error("changing a field should mark the block value-dirty")
	}
	if c.ValueDirty(BlockClip) {
		t.Error("other blocks should stay clean")
	}
}

func TestSetFieldRedundantIsNoop(t *testing.T) {
	c := newBlockCache()
	c.values.raster.lineWidth = 128

	setField(c, BlockRaster, &c.values.raster.lineWidth, uint32(128))
	if c.ValueDirty(BlockRaster) {
		t.Error("setting a field to its current value should not dirty")
	}
}

func TestSetStageFieldUnbound(t *testing.T) {
	c := newBlockCache()

	// An unbound stage records the value but never dirties: the disabled
	// encoding does not depend on it.
	setStageField(c, BlockGeometryShader, false, &c.values.gs.hash, uint64(0xdead))
	if c.ValueDirty(BlockGeometryShader) {
		t.Error("unbound stage field change should not dirty")
	}
	if c.values.gs.hash != 0xdead {
		t.Error("unbound stage field change should still update the cache")
	}

	setStageField(c, BlockGeometryShader, true, &c.values.gs.hash, uint64(0xbeef))
	if !c.ValueDirty(BlockGeometryShader) {
		t.Error("bound stage field change should dirty")
	}
}

func TestSetActiveCountHighWaterMark(t *testing.T) {
	c := newBlockCache()

	c.SetActiveCount(BlockViewport, 4)
	if !c.ValueDirty(BlockViewport) {
		t.Fatal("growth past the mark should dirty")
	}
	if c.HighWaterMark(BlockViewport) != 4 {
		t.Fatalf("HighWaterMark = %d, want 4", c.HighWaterMark(BlockViewport))
	}
	c.valueDirty.Clear(int(BlockViewport))

	// Shrinking never dirties at the cache level; the stale tail stays
	// valid because the encoding covers high-water-mark entries.
	c.SetActiveCount(BlockViewport, 1)
	if c.ValueDirty(BlockViewport) {
		t.Error("shrink should not dirty")
	}
	if c.HighWaterMark(BlockViewport) != 4 {
		t.Error("shrink should not lower the high-water mark")
	}

	// Growing back within the mark reuses the stale tail.
	c.SetActiveCount(BlockViewport, 3)
	if c.ValueDirty(BlockViewport) {
		t.Error("growth within the mark should not dirty")
	}

	// Growth past the mark dirties and raises it.
	c.SetActiveCount(BlockViewport, 6)
	if !c.ValueDirty(BlockViewport) {
		t.Error("growth past the mark should dirty")
	}
	if c.HighWaterMark(BlockViewport) != 6 {
		t.Errorf("HighWaterMark = %d, want 6", c.HighWaterMark(BlockViewport))
	}
}

func TestSetActiveCountPanics(t *testing.T) {
	c := newBlockCache()

	t.Run("fixed block", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("SetActiveCount on a fixed block should panic")
			}
		}()
		c.SetActiveCount(BlockRaster, 1)
	})

	t.Run("out of range", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("out-of-range count should panic")
			}
		}()
		c.SetActiveCount(BlockViewport, maxViewports+1)
	})
}

func TestCacheReset(t *testing.T) {
	c := newBlockCache()
	setField(c, BlockRaster, &c.values.raster.lineWidth, uint32(128))
	c.SetActiveCount(BlockViewport, 4)
	c.encodeDirty.Set(int(BlockRaster))

	c.Reset()

	if !c.valueDirty.Empty() || !c.encodeDirty.Empty() {
		t.Error("dirty sets should be empty after Reset")
	}
	if c.values.raster.lineWidth != 0 {
		t.Error("cached values should be zeroed after Reset")
	}
	if c.HighWaterMark(BlockViewport) != 0 || c.ActiveCount(BlockViewport) != 0 {
		t.Error("variable block occupancy should be zeroed after Reset")
	}
	if c.packed[BlockViewport] != nil {
		t.Error("variable block storage should be dropped after Reset")
	}
	if c.packed[BlockRaster] == nil {
		t.Error("fixed block storage should survive Reset")
	}
}

func TestVariableCountRule(t *testing.T) {
	// The derivation-level count rule: shrinking the derived count
	// dirties (the count register changes), growing within the mark while
	// clean dirties only past the mark.
	c := newBlockCache()
	c.SetActiveCount(BlockScissor, 4)
	c.valueDirty.Clear(int(BlockScissor))

	got := variableCount(c, BlockScissor, 4, 2)
	if got != 2 {
		t.Fatalf("variableCount returned %d, want 2", got)
	}
	if !c.ValueDirty(BlockScissor) {
		t.Error("shrinking the derived count should dirty the block")
	}
	c.valueDirty.Clear(int(BlockScissor))

	got = variableCount(c, BlockScissor, 2, 4)
	if got != 4 {
		t.Fatalf("variableCount returned %d, want 4", got)
	}
	if c.ValueDirty(BlockScissor) {
		t.Error("growing back within the high-water mark should not dirty")
	}

	got = variableCount(c, BlockScissor, 4, 6)
	if got != 6 {
		t.Fatalf("variableCount returned %d, want 6", got)
	}
	if !c.ValueDirty(BlockScissor) {
		t.Error("growing past the high-water mark should dirty")
	}
}
