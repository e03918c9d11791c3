package statestream

import "testing"

func TestNewCapabilitiesQuirks(t *testing.T) {
	tests := []struct {
		generation int
		has        []Quirk
		lacks      []Quirk
	}{
		{
			generation: 90,
			lacks: []Quirk{
				QuirkStreamOutDeclStall, QuirkStreamOutPreemption,
				QuirkStreamOutRebracket, QuirkTessCtrlPerDraw,
				QuirkViewportScissorCoupling, QuirkMultisampleStall,
			},
		},
		{
			generation: 110,
			has:        []Quirk{QuirkStreamOutDeclStall, QuirkStreamOutPreemption},
			lacks:      []Quirk{QuirkStreamOutRebracket, QuirkViewportScissorCoupling},
		},
		{
			generation: 120,
			has:        []Quirk{QuirkStreamOutDeclStall, QuirkStreamOutPreemption},
			lacks:      []Quirk{QuirkTessCtrlPerDraw, QuirkTessEvalPerDraw},
		},
		{
			generation: 125,
			has: []Quirk{
				QuirkStreamOutDeclStall, QuirkStreamOutRebracket,
				QuirkTessCtrlPerDraw, QuirkTessEvalPerDraw,
				QuirkViewportScissorCoupling, QuirkMultisampleStall,
			},
			lacks: []Quirk{QuirkStreamOutPreemption},
		},
		{
			generation: 200,
			has: []Quirk{
				QuirkStreamOutRebracket, QuirkTessCtrlPerDraw,
			},
			lacks: []Quirk{QuirkStreamOutDeclStall, QuirkStreamOutPreemption},
		},
	}

	for _, tt := range tests {
		caps := NewCapabilities(tt.generation)
		for _, q := range tt.has {
			if !caps.HasQuirk(q) {
				t.Errorf("gen %d: missing quirk %#x", tt.generation, q)
			}
		}
		for _, q := range tt.lacks {
			if caps.HasQuirk(q) {
				t.Errorf("gen %d: unexpected quirk %#x", tt.generation, q)
			}
		}
	}
}

func TestNewCapabilitiesDepthRange(t *testing.T) {
	if NewCapabilities(120).DepthRangeUnrestricted {
		t.Error("gen 12.0 should not report unrestricted depth")
	}
	if !NewCapabilities(125).DepthRangeUnrestricted {
		t.Error("gen 12.5 should report unrestricted depth")
	}
}

func TestNewCapabilitiesLimits(t *testing.T) {
	caps := NewCapabilities(120)
	if caps.MaxViewports != maxViewports {
		t.Errorf("MaxViewports = %d, want %d", caps.MaxViewports, maxViewports)
	}
	if caps.ScissorMax != 0x3fff {
		t.Errorf("ScissorMax = %#x, want 0x3fff", caps.ScissorMax)
	}
}
