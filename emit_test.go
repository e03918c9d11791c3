package statestream

import (
	"errors"
	"testing"

	"github.com/gogpu/statestream/internal/bitset"
)

func TestBatchBufferReserve(t *testing.T) {
	buf := NewBatchBuffer(16)

	w, err := buf.Reserve(3)
	if err != nil {
		t.Fatalf("Reserve(3) = %v", err)
	}
	w[0], w[1], w[2] = 1, 2, 3

	w2, err := buf.Reserve(1)
	if err != nil {
		t.Fatalf("Reserve(1) = %v", err)
	}
	w2[0] = 4

	want := []uint32{1, 2, 3, 4}
	got := buf.Words()
	if len(got) != len(want) {
		t.Fatalf("Len() = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBatchBufferFinish(t *testing.T) {
	buf := NewBatchBuffer(16)
	buf.Finish()
	if _, err := buf.Reserve(1); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("Reserve after Finish = %v, want ErrStreamExhausted", err)
	}

	buf.Reset()
	if _, err := buf.Reserve(1); err != nil {
		t.Errorf("Reserve after Reset = %v", err)
	}
	if buf.Len() != 1 {
		t.Errorf("Len() = %d after Reset+Reserve, want 1", buf.Len())
	}
}

func TestBatchBufferBytes(t *testing.T) {
	buf := NewBatchBuffer(4)
	w, err := buf.Reserve(1)
	if err != nil {
		t.Fatalf("Reserve(1) = %v", err)
	}
	w[0] = 0x04030201

	b := buf.Bytes()
	if len(b) != 4 {
		t.Fatalf("Bytes() length = %d, want 4", len(b))
	}
	// Little-endian byte order.
	for i, want := range []byte{1, 2, 3, 4} {
		if b[i] != want {
			t.Errorf("byte %d = %d, want %d", i, b[i], want)
		}
	}
}

func TestEmitBlocksSkipsClean(t *testing.T) {
	cache := newBlockCache()
	cache.packed[BlockRaster][0] = headerWord(BlockRaster, 0, lenRaster)
	cache.packedLen[BlockRaster] = lenRaster
	cache.encodeDirty.Set(int(BlockRaster))

	buf := NewBatchBuffer(64)
	if err := emitBlocks(buf, cache, nil); err != nil {
		t.Fatalf("emitBlocks() = %v", err)
	}

	if buf.Len() != lenRaster {
		t.Errorf("emitted %d words, want %d (one raster block)", buf.Len(), lenRaster)
	}
	if cache.EncodeDirty(BlockRaster) {
		t.Error("emitted block should be clean afterwards")
	}
}

func TestEmitBlocksBarrierPlacement(t *testing.T) {
	cache := newBlockCache()
	for _, b := range []BlockID{BlockStreamOut, BlockStreamOutDecls} {
		cache.packed[b] = []uint32{headerWord(b, 0, 1)}
		cache.packedLen[b] = 1
		cache.encodeDirty.Set(int(b))
	}

	barriers := []barrierNote{
		{block: BlockStreamOut, kind: barrierPreemptionOff},
		{block: BlockStreamOutDecls, after: true, kind: barrierCSStall},
	}

	buf := NewBatchBuffer(64)
	if err := emitBlocks(buf, cache, barriers); err != nil {
		t.Fatalf("emitBlocks() = %v", err)
	}

	words := buf.Words()
	// Expect: barrier, stream-out, decls, barrier.
	wantIDs := []uint32{barrierOpcode, uint32(BlockStreamOut),
		uint32(BlockStreamOutDecls), barrierOpcode}
	i := 0
	for _, want := range wantIDs {
		if i >= len(words) {
			t.Fatalf("stream truncated at packet for id %#x", want)
		}
		header := words[i]
		if header>>24 != want {
			t.Fatalf("packet id = %#x, want %#x", header>>24, want)
		}
		i += int(header & 0xffff)
	}
	if i != len(words) {
		t.Errorf("trailing words after expected packets: %d", len(words)-i)
	}
}

func TestEmitBlocksBarrierKind(t *testing.T) {
	cache := newBlockCache()
	cache.packed[BlockStreamOut] = []uint32{headerWord(BlockStreamOut, 0, 1)}
	cache.packedLen[BlockStreamOut] = 1
	cache.encodeDirty.Set(int(BlockStreamOut))

	buf := NewBatchBuffer(16)
	err := emitBlocks(buf, cache, []barrierNote{
		{block: BlockStreamOut, kind: barrierPreemptionOff},
	})
	if err != nil {
		t.Fatalf("emitBlocks() = %v", err)
	}

	header := buf.Words()[0]
	if header>>24 != barrierOpcode {
		t.Fatalf("first packet id = %#x, want barrier", header>>24)
	}
	if kind := barrierKind(header >> 16 & 0xff); kind != barrierPreemptionOff {
		t.Errorf("barrier kind = %d, want %d", kind, barrierPreemptionOff)
	}
	if header&0xffff != barrierPacketLen {
		t.Errorf("barrier length = %d, want %d", header&0xffff, barrierPacketLen)
	}
}

func TestEmitBlocksFailureKeepsRemainingDirty(t *testing.T) {
	cache := newBlockCache()
	for _, b := range []BlockID{BlockClip, BlockRaster} {
		cache.packed[b] = []uint32{headerWord(b, 0, 1)}
		cache.packedLen[b] = 1
		cache.encodeDirty.Set(int(b))
	}

	stream := &failAfterStream{limit: 1}
	err := emitBlocks(stream, cache, nil)
	if !errors.Is(err, ErrStreamExhausted) {
		t.Fatalf("emitBlocks() = %v, want ErrStreamExhausted", err)
	}

	if cache.EncodeDirty(BlockClip) {
		t.Error("successfully written block should be clean")
	}
	if !cache.EncodeDirty(BlockRaster) {
		t.Error("unwritten block must stay dirty for the next attempt")
	}
}

func TestEmitBlocksFollowsEmitOrder(t *testing.T) {
	cache := newBlockCache()
	// Dirty a scattered set; emission must still follow declaration order.
	dirty := bitset.Of(int(BlockBlend), int(BlockPrimitiveConfig), int(BlockViewport))
	cache.encodeDirty = dirty
	for _, b := range []BlockID{BlockBlend, BlockPrimitiveConfig, BlockViewport} {
		cache.packed[b] = []uint32{headerWord(b, 0, 1)}
		cache.packedLen[b] = 1
	}

	buf := NewBatchBuffer(16)
	if err := emitBlocks(buf, cache, nil); err != nil {
		t.Fatalf("emitBlocks() = %v", err)
	}

	words := buf.Words()
	want := []BlockID{BlockPrimitiveConfig, BlockViewport, BlockBlend}
	i := 0
	for _, b := range want {
		if BlockID(words[i]>>24) != b {
			t.Fatalf("packet %d is block %v, want %v", i, BlockID(words[i]>>24), b)
		}
		i += int(words[i] & 0xffff)
	}
}

func TestEmitBlocksBarrierOnCleanAnchor(t *testing.T) {
	cache := newBlockCache()
	cache.packed[BlockMultisample] = []uint32{headerWord(BlockMultisample, 0, 1)}
	cache.packedLen[BlockMultisample] = 1
	cache.encodeDirty.Set(int(BlockMultisample))

	// The stall is anchored to the fragment shader block, which is clean;
	// it must be written at that slot anyway.
	barriers := []barrierNote{
		{block: BlockFragmentShader, kind: barrierPixelScoreboardStall},
	}

	buf := NewBatchBuffer(16)
	if err := emitBlocks(buf, cache, barriers); err != nil {
		t.Fatalf("emitBlocks() = %v", err)
	}

	words := buf.Words()
	if len(words) != 1+barrierPacketLen {
		t.Fatalf("emitted %d words, want %d", len(words), 1+barrierPacketLen)
	}
	if words[0]>>24 != uint32(BlockMultisample) {
		t.Fatalf("first packet id = %#x, want multisample", words[0]>>24)
	}
	if words[1]>>24 != barrierOpcode {
		t.Fatalf("second packet id = %#x, want barrier", words[1]>>24)
	}
}
