package statestream

import "fmt"

// defaultArenaWords sizes the scratch arena so that every variable-length
// block can reach its maximum encoding a few times over before the arena
// runs out.
const defaultArenaWords = 16 * 1024

// ScratchArena is a bump allocator for variable-length block storage. Its
// allocations live as long as the submitted work that references them, not
// one flush cycle: a block that grew keeps its storage until the recording
// context is reset, at which point the whole arena is released at once.
//
// The arena performs no I/O and never reclaims individual allocations;
// running out of words is the resource-exhaustion case of a recording
// context and fails the recording.
type ScratchArena struct {
	backing []uint32
	used    int
}

// NewScratchArena creates an arena holding capacity words.
func NewScratchArena(capacity int) *ScratchArena {
	if capacity <= 0 {
		capacity = defaultArenaWords
	}
	return &ScratchArena{backing: make([]uint32, capacity)}
}

// AllocWords hands out n zeroed words. It fails with ErrArenaExhausted
// when fewer than n words remain; the arena is left unchanged in that
// case.
func (a *ScratchArena) AllocWords(n int) ([]uint32, error) {
	if n < 0 {
		panic("statestream: negative arena allocation")
	}
	if a.used+n > len(a.backing) {
		return nil, fmt.Errorf("%w: need %d words, %d free",
			ErrArenaExhausted, n, len(a.backing)-a.used)
	}
	s := a.backing[a.used : a.used+n : a.used+n]
	a.used += n
	return s, nil
}

// Used returns the number of words handed out so far.
func (a *ScratchArena) Used() int {
	return a.used
}

// Release returns every allocation to the arena. Only valid once the work
// referencing the storage has completed or been abandoned.
func (a *ScratchArena) Release() {
	a.used = 0
}
