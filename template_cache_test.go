package statestream

import (
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func testDescriptor() *TemplateDescriptor {
	desc := &TemplateDescriptor{
		Stages:       StageMaskVertex | StageMaskFragment,
		ColorFormats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm},
	}
	desc.ShaderHashes[StageVertex] = 0x1111
	desc.ShaderHashes[StageFragment] = 0x2222
	return desc
}

func TestTemplateCacheHit(t *testing.T) {
	c := NewTemplateCache()

	t1, err := c.GetOrCreate(testDescriptor())
	if err != nil {
		t.Fatalf("GetOrCreate() = %v", err)
	}
	t2, err := c.GetOrCreate(testDescriptor())
	if err != nil {
		t.Fatalf("GetOrCreate() = %v", err)
	}

	if t1 != t2 {
		t.Error("identical descriptors should return the same template")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1, 1", hits, misses)
	}
}

func TestTemplateCacheMiss(t *testing.T) {
	c := NewTemplateCache()

	t1, err := c.GetOrCreate(testDescriptor())
	if err != nil {
		t.Fatalf("GetOrCreate() = %v", err)
	}

	desc := testDescriptor()
	desc.ShaderHashes[StageFragment] = 0x3333
	t2, err := c.GetOrCreate(desc)
	if err != nil {
		t.Fatalf("GetOrCreate() = %v", err)
	}

	if t1 == t2 {
		t.Error("different shader hashes should bake different templates")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestTemplateCacheNilDescriptor(t *testing.T) {
	c := NewTemplateCache()
	if _, err := c.GetOrCreate(nil); err == nil {
		t.Error("GetOrCreate(nil) should fail")
	}
}

func TestTemplateCacheClear(t *testing.T) {
	c := NewTemplateCache()
	if _, err := c.GetOrCreate(testDescriptor()); err != nil {
		t.Fatalf("GetOrCreate() = %v", err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestTemplateCacheConcurrent(t *testing.T) {
	c := NewTemplateCache()

	var wg sync.WaitGroup
	const goroutines = 50

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrCreate(testDescriptor()); err != nil {
				t.Errorf("GetOrCreate() = %v", err)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Errorf("Len() = %d after concurrent identical creates, want 1", c.Len())
	}
}

func TestHashTemplateDescriptorStability(t *testing.T) {
	h1 := HashTemplateDescriptor(testDescriptor())
	h2 := HashTemplateDescriptor(testDescriptor())
	if h1 != h2 {
		t.Error("identical descriptors should hash identically")
	}

	desc := testDescriptor()
	desc.UsesStreamOut = true
	if HashTemplateDescriptor(desc) == h1 {
		t.Error("changing a descriptor field should change the hash")
	}
}
