package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string, int](DefaultConfig())
	defer c.Close()

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if v, ok := c.Get("missing"); ok || v != 0 {
		t.Errorf("Get(missing) = %v, %v; want zero miss", v, ok)
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Stats() = %d, %d, %v", hits, misses, rate)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New[string, string](Config{TTL: time.Hour, CleanupInterval: 10 * time.Millisecond})
	defer c.Close()

	c.SetWithTTL("short", "v", 5*time.Millisecond)
	c.SetWithTTL("forever", "v", 0)
	time.Sleep(50 * time.Millisecond)

	if c.Size() != 1 {
		t.Errorf("Size() = %d after sweep, want 1", c.Size())
	}
	if _, ok := c.Get("short"); ok {
		t.Error("expired entry returned")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("entry without TTL expired")
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](Config{MaxItems: 2, TTL: time.Hour})
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(time.Millisecond)
	c.Set("b", 2)
	time.Sleep(time.Millisecond)
	c.Get("a")
	time.Sleep(time.Millisecond)
	c.Set("c", 3)

	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used a was evicted")
	}

	// replacing an existing key does not evict
	c.Set("c", 30)
	if _, ok := c.Get("a"); !ok || c.Size() != 2 {
		t.Errorf("replace evicted: size %d", c.Size())
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string, string](DefaultConfig())
	defer c.Close()

	calls := 0
	load := func() (string, error) {
		calls++
		return "computed", nil
	}
	for i := 0; i < 3; i++ {
		v, hit, err := c.GetOrLoad("k", load)
		if err != nil || v != "computed" || hit != (i > 0) {
			t.Fatalf("GetOrLoad() #%d = %v, %v, %v", i, v, hit, err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times", calls)
	}

	_, _, err := c.GetOrLoad("bad", func() (string, error) { return "", errors.New("fail") })
	if err == nil || c.Size() != 1 {
		t.Errorf("failed load cached: err=%v size=%d", err, c.Size())
	}
}

func TestProgramCache(t *testing.T) {
	pc := NewProgramCache[string](DefaultProgramsConfig())
	defer pc.Close()

	if KeyOf("1 + 2") == KeyOf("1 +  2") {
		t.Error("different sources share a key")
	}

	parses := 0
	parse := func() (string, error) {
		parses++
		return "tree", nil
	}
	if _, cached, _ := pc.GetOrParse("1 + 2", parse); cached {
		t.Error("first lookup reported cached")
	}
	v, cached, _ := pc.GetOrParse("1 + 2", parse)
	if !cached || v != "tree" || parses != 1 {
		t.Errorf("second lookup = %v, %v (parses %d)", v, cached, parses)
	}

	stats := pc.Stats()
	if stats["programs_hits"] != int64(1) || stats["programs_cache_size"] != 1 {
		t.Errorf("Stats() = %v", stats)
	}
}
