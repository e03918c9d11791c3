package statestream

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/statestream/internal/bitset"
)

func streamOutTemplate(t *testing.T) *PipelineTemplate {
	t.Helper()
	desc := &TemplateDescriptor{
		Stages:        StageMaskVertex | StageMaskFragment,
		UsesStreamOut: true,
		ColorFormats:  []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm},
	}
	tmpl, err := NewPipelineTemplate(desc)
	if err != nil {
		t.Fatalf("NewPipelineTemplate() = %v", err)
	}
	return tmpl
}

func tessTemplate(t *testing.T) *PipelineTemplate {
	t.Helper()
	desc := &TemplateDescriptor{
		Stages: StageMaskVertex | StageMaskTessCtrl | StageMaskTessEval |
			StageMaskFragment,
	}
	tmpl, err := NewPipelineTemplate(desc)
	if err != nil {
		t.Fatalf("NewPipelineTemplate() = %v", err)
	}
	return tmpl
}

func TestWorkaroundsNoQuirks(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockScissor), int(BlockStreamOutDecls))
	before := cache.encodeDirty

	barriers := applyWorkarounds(cache, NewCapabilities(90), streamOutTemplate(t))
	if len(barriers) != 0 {
		t.Errorf("quirk-free device got %d barriers", len(barriers))
	}
	if !cache.encodeDirty.Equal(before) {
		t.Error("quirk-free device should not change the dirty set")
	}
}

func TestViewportScissorCoupling(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockScissor))

	applyWorkarounds(cache, NewCapabilities(125), newColorTemplate(t))
	if !cache.EncodeDirty(BlockViewport) {
		t.Error("a dirty scissor block should force the viewport block dirty")
	}
	if !cache.EncodeDirty(BlockScissor) {
		t.Error("the scissor block itself must stay dirty")
	}
}

func TestTessBlocksForcedCleanPerDraw(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty.SetAll(int(blockCount))

	applyWorkarounds(cache, NewCapabilities(125), tessTemplate(t))
	if cache.EncodeDirty(BlockTessCtrlShader) {
		t.Error("tess control block must be forced clean on per-draw devices")
	}
	if cache.EncodeDirty(BlockTessEvalShader) {
		t.Error("tess eval block must be forced clean on per-draw devices")
	}
	if !cache.EncodeDirty(BlockTessConfig) {
		t.Error("tess config block is not covered by the per-draw rule")
	}
}

func TestTessForcedCleanNeedsBoundStage(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty.SetAll(int(blockCount))

	applyWorkarounds(cache, NewCapabilities(125), newColorTemplate(t))
	if !cache.EncodeDirty(BlockTessCtrlShader) {
		t.Error("per-draw rule must not fire without tessellation stages")
	}
}

func TestStreamOutRebracket(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockStreamOutDecls))

	applyWorkarounds(cache, NewCapabilities(125), streamOutTemplate(t))
	if !cache.EncodeDirty(BlockStreamOut) {
		t.Error("dirty declarations should force the stream-out block dirty")
	}

	// Without transform feedback in the pipeline the rule must not fire.
	cache2 := newBlockCache()
	cache2.encodeDirty = bitset.Of(int(BlockStreamOutDecls))
	applyWorkarounds(cache2, NewCapabilities(125), newColorTemplate(t))
	if cache2.EncodeDirty(BlockStreamOut) {
		t.Error("rebracket rule fired for a pipeline without stream-out")
	}
}

func TestStreamOutDeclStallBarrier(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockStreamOutDecls))

	barriers := applyWorkarounds(cache, NewCapabilities(110), streamOutTemplate(t))

	found := false
	for _, b := range barriers {
		if b.block == BlockStreamOutDecls && b.after && b.kind == barrierCSStall {
			found = true
		}
	}
	if !found {
		t.Errorf("barriers = %+v, want CS stall after the declaration block", barriers)
	}
}

func TestStreamOutPreemptionBarrier(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockStreamOut))

	barriers := applyWorkarounds(cache, NewCapabilities(110), streamOutTemplate(t))

	found := false
	for _, b := range barriers {
		if b.block == BlockStreamOut && !b.after && b.kind == barrierPreemptionOff {
			found = true
		}
	}
	if !found {
		t.Errorf("barriers = %+v, want preemption-off before the stream-out block", barriers)
	}
}

func TestMultisampleStallBarrier(t *testing.T) {
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(int(BlockMultisample), int(BlockFragmentShader))

	barriers := applyWorkarounds(cache, NewCapabilities(125), newColorTemplate(t))

	found := false
	for _, b := range barriers {
		if b.block == BlockFragmentShader && !b.after &&
			b.kind == barrierPixelScoreboardStall {
			found = true
		}
	}
	if !found {
		t.Errorf("barriers = %+v, want scoreboard stall before the fragment block", barriers)
	}
}

func TestWorkaroundsIdempotent(t *testing.T) {
	// Running the policy on its own output must change nothing: every
	// predicate evaluates against a snapshot, so the fixed point is
	// reached after one application.
	cache := newBlockCache()
	cache.encodeDirty = bitset.Of(
		int(BlockScissor), int(BlockStreamOutDecls), int(BlockMultisample),
		int(BlockTessCtrlShader), int(BlockFragmentShader),
	)
	caps := NewCapabilities(125)
	tmpl := streamOutTemplate(t)

	first := applyWorkarounds(cache, caps, tmpl)
	afterFirst := cache.encodeDirty

	second := applyWorkarounds(cache, caps, tmpl)
	if !cache.encodeDirty.Equal(afterFirst) {
		t.Error("second application changed the dirty set")
	}
	if len(first) != len(second) {
		t.Errorf("barrier count changed between applications: %d then %d",
			len(first), len(second))
	}
}
