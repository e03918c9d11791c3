package statestream

import "github.com/gogpu/statestream/internal/bitset"

// barrierKind selects the synchronization primitive a workaround inserts
// into the emission order.
type barrierKind uint8

const (
	barrierCSStall barrierKind = iota + 1
	barrierPreemptionOff
	barrierPixelScoreboardStall
)

// barrierNote is a side annotation on the emission order: a barrier to be
// emitted immediately before or after one block. Barriers are not blocks;
// they have no cached bytes and no dirty bits.
type barrierNote struct {
	block  BlockID
	after  bool
	kind   barrierKind
}

// waContext is the read-only view a workaround predicate sees: the
// post-pack encode-dirty set and the bound stage composition.
type waContext struct {
	encodeDirty bitset.Set
	stages      StageMask
	streamOut   bool
}

func (w *waContext) dirty(b BlockID) bool {
	return w.encodeDirty.Test(int(b))
}

// waRule is one corrective rule of the workaround policy: when its quirk
// is present and its predicate holds, the rule forces blocks dirty, forces
// blocks clean, and/or annotates the emission order with barriers.
//
// The rules are data, not code paths: trigger conditions come from the
// hardware errata sheets and nothing beyond the documented conditions is
// encoded here.
type waRule struct {
	id    string
	quirk Quirk
	when  func(*waContext) bool

	forceDirty []BlockID
	forceClean []BlockID
	barriers   []barrierNote
}

// waRules is the ordered policy table. Ordering only matters when two
// rules target the same block, and even then a forced-dirty decision from
// any rule wins over any forced-clean decision.
var waRules = []waRule{
	{
		// Reprogramming the declaration list while transform feedback is
		// in use requires bracketing it with stream-out reprogramming.
		id:    "Wa_16011773973",
		quirk: QuirkStreamOutRebracket,
		when: func(w *waContext) bool {
			return w.streamOut && w.dirty(BlockStreamOutDecls)
		},
		forceDirty: []BlockID{BlockStreamOut},
	},
	{
		// The declaration list must be followed by a command-streamer
		// stall before any dependent state is consumed.
		id:    "Wa_1509820217",
		quirk: QuirkStreamOutDeclStall,
		when: func(w *waContext) bool {
			return w.dirty(BlockStreamOutDecls)
		},
		barriers: []barrierNote{
			{block: BlockStreamOutDecls, after: true, kind: barrierCSStall},
		},
	},
	{
		// Preemption must be off while the stream-out unit is
		// reprogrammed.
		id:    "Wa_16013994831",
		quirk: QuirkStreamOutPreemption,
		when: func(w *waContext) bool {
			return w.dirty(BlockStreamOut)
		},
		barriers: []barrierNote{
			{block: BlockStreamOut, kind: barrierPreemptionOff},
		},
	},
	{
		// The draw path emits the tessellation control shader block in
		// front of every draw on affected parts; the sequencer must not.
		id:    "Wa_16011107343",
		quirk: QuirkTessCtrlPerDraw,
		when: func(w *waContext) bool {
			return w.stages.Has(StageTessCtrl)
		},
		forceClean: []BlockID{BlockTessCtrlShader},
	},
	{
		id:    "Wa_22018402687",
		quirk: QuirkTessEvalPerDraw,
		when: func(w *waContext) bool {
			return w.stages.Has(StageTessEval)
		},
		forceClean: []BlockID{BlockTessEvalShader},
	},
	{
		// The viewport block must accompany every scissor reprogramming.
		id:    "Wa_14016820455",
		quirk: QuirkViewportScissorCoupling,
		when: func(w *waContext) bool {
			return w.dirty(BlockScissor)
		},
		forceDirty: []BlockID{BlockViewport},
	},
	{
		// Multisample changes need the pixel scoreboard drained before
		// the fragment shader block is consumed.
		id:    "Wa_18038825448",
		quirk: QuirkMultisampleStall,
		when: func(w *waContext) bool {
			return w.dirty(BlockMultisample) && w.stages.Has(StageFragment)
		},
		barriers: []barrierNote{
			{block: BlockFragmentShader, kind: barrierPixelScoreboardStall},
		},
	},
}

// applyWorkarounds runs the policy once over the post-pack encode-dirty
// set and returns the barrier annotations for this flush. All predicates
// evaluate against a snapshot of the incoming set, which makes the policy
// idempotent: feeding its own output back through it produces the same
// set and the same annotations.
func applyWorkarounds(cache *BlockCache, caps *Capabilities, tmpl *PipelineTemplate) []barrierNote {
	ctx := waContext{
		encodeDirty: cache.encodeDirty,
		stages:      tmpl.stages,
		streamOut:   tmpl.usesStreamOut,
	}

	var forcedDirty, forcedClean bitset.Set
	var barriers []barrierNote

	for i := range waRules {
		rule := &waRules[i]
		if !caps.HasQuirk(rule.quirk) || !rule.when(&ctx) {
			continue
		}
		for _, b := range rule.forceDirty {
			forcedDirty.Set(int(b))
		}
		for _, b := range rule.forceClean {
			forcedClean.Set(int(b))
		}
		if len(rule.barriers) > 0 {
			barriers = append(barriers, rule.barriers...)
			Logger().Debug("workaround barrier", "rule", rule.id)
		}
	}

	// Forced dirty always wins: a block forced dirty by one rule cannot
	// be un-dirtied by another rule's forced-clean decision.
	forcedClean.Subtract(forcedDirty)

	cache.encodeDirty.Union(forcedDirty)
	cache.encodeDirty.Subtract(forcedClean)

	return barriers
}
