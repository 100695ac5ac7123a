package engine

import (
	"testing"
)

func TestViewCache_ComputesOncePerVersion(t *testing.T) {
	cache := newViewCache()

	var calls int
	compute := func() (interface{}, error) {
		calls++
		return "view", nil
	}

	for i := 0; i < 3; i++ {
		entry, err := cache.getOrCompute(1, "kpis", compute)
		if err != nil {
			t.Fatalf("getOrCompute failed: %v", err)
		}
		if entry.view != "view" || entry.version != 1 {
			t.Fatalf("entry = %+v, want view at version 1", entry)
		}
	}

	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestViewCache_VersionMismatchRecomputes(t *testing.T) {
	cache := newViewCache()

	var calls int
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	if entry, _ := cache.getOrCompute(1, "kpis", compute); entry.view != 1 {
		t.Fatalf("first entry = %+v, want compute result 1", entry)
	}

	// Same key at a newer version must not serve the old entry.
	entry, err := cache.getOrCompute(2, "kpis", compute)
	if err != nil {
		t.Fatalf("getOrCompute failed: %v", err)
	}
	if entry.version != 2 || entry.view != 2 {
		t.Errorf("entry = %+v, want recomputed at version 2", entry)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestViewCache_InvalidateAllDropsEverything(t *testing.T) {
	cache := newViewCache()

	_, _ = cache.getOrCompute(1, "a", func() (interface{}, error) { return "a", nil })
	_, _ = cache.getOrCompute(1, "b", func() (interface{}, error) { return "b", nil })
	if cache.len() != 2 {
		t.Fatalf("len = %d, want 2", cache.len())
	}

	cache.invalidateAll()
	if cache.len() != 0 {
		t.Errorf("len after invalidate = %d, want 0", cache.len())
	}
}

func TestViewCache_DistinctKeysAreIndependent(t *testing.T) {
	cache := newViewCache()

	_, _ = cache.getOrCompute(1, "customers:5", func() (interface{}, error) { return 5, nil })
	entry, _ := cache.getOrCompute(1, "customers:10", func() (interface{}, error) { return 10, nil })

	if entry.view != 10 {
		t.Errorf("customers:10 = %v, want its own entry", entry.view)
	}
	if cache.len() != 2 {
		t.Errorf("len = %d, want 2", cache.len())
	}
}
