package statestream

import (
	"fmt"

	"honnef.co/go/safeish"
)

// Stream is the destination for encoded state packets. Reserve returns a
// writable window of exactly n words inside the stream, or an error when
// the stream cannot grow. A failed Reserve leaves the stream unchanged.
type Stream interface {
	Reserve(n int) ([]uint32, error)
}

// barrierOpcode is the packet id for barrier packets. It sits above every
// BlockID so a stream consumer can tell barriers from state blocks by the
// header byte alone.
const barrierOpcode = 0xff

// barrierPacketLen is the fixed length of a barrier packet in words.
const barrierPacketLen = 2

// BatchBuffer is an in-memory Stream that accumulates packets into a
// growable word slice. It follows the recording/finished life cycle of a
// command encoder: once Finish is called, further Reserve calls fail.
type BatchBuffer struct {
	words    []uint32
	finished bool
}

// NewBatchBuffer returns an empty recording buffer with the given initial
// capacity in words.
func NewBatchBuffer(capWords int) *BatchBuffer {
	return &BatchBuffer{words: make([]uint32, 0, capWords)}
}

// Reserve implements Stream by appending n zeroed words and returning the
// window over them.
func (b *BatchBuffer) Reserve(n int) ([]uint32, error) {
	if b.finished {
		return nil, fmt.Errorf("statestream: reserve %d words: %w", n, ErrStreamExhausted)
	}
	if n < 0 {
		return nil, fmt.Errorf("statestream: reserve %d words: negative length", n)
	}
	off := len(b.words)
	b.words = append(b.words, make([]uint32, n)...)
	return b.words[off : off+n : off+n], nil
}

// Finish seals the buffer. Subsequent Reserve calls fail and the recorded
// words become stable.
func (b *BatchBuffer) Finish() {
	b.finished = true
}

// Len returns the number of recorded words.
func (b *BatchBuffer) Len() int {
	return len(b.words)
}

// Words returns the recorded packet words. The slice aliases the buffer;
// callers must not retain it across a Reset.
func (b *BatchBuffer) Words() []uint32 {
	return b.words
}

// Bytes returns the recorded packets as little-endian bytes, suitable for
// handing to a hardware submission queue.
func (b *BatchBuffer) Bytes() []byte {
	return safeish.SliceCast[[]byte](b.words)
}

// Reset returns the buffer to an empty recording state, keeping its
// backing storage.
func (b *BatchBuffer) Reset() {
	b.words = b.words[:0]
	b.finished = false
}

// emitBarrier writes one barrier packet.
func emitBarrier(stream Stream, kind barrierKind) error {
	dst, err := stream.Reserve(barrierPacketLen)
	if err != nil {
		return err
	}
	dst[0] = barrierOpcode<<24 | uint32(kind)<<16 | barrierPacketLen
	dst[1] = 0
	return nil
}

// emitBlocks walks the emission order and writes every encode-dirty
// block's cached encoding, plus the barriers the workaround policy
// annotated. Barriers are side annotations on the order, not blocks: they
// carry no dirty bit, so one anchored to a clean block is still written at
// the anchor's position. Each successfully written block has its
// encode-dirty bit cleared, so a mid-stream failure leaves the remaining
// blocks dirty for the next attempt.
func emitBlocks(stream Stream, cache *BlockCache, barriers []barrierNote) error {
	for _, b := range emitOrder {
		for _, bar := range barriers {
			if bar.block == b && !bar.after {
				if err := emitBarrier(stream, bar.kind); err != nil {
					return err
				}
			}
		}

		if cache.encodeDirty.Test(int(b)) {
			src := cache.packed[b][:cache.packedLen[b]]
			dst, err := stream.Reserve(len(src))
			if err != nil {
				return err
			}
			copy(dst, src)
			cache.encodeDirty.Clear(int(b))
		}

		for _, bar := range barriers {
			if bar.block == b && bar.after {
				if err := emitBarrier(stream, bar.kind); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
