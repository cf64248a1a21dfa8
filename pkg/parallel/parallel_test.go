package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRangeExactlyOnce(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"single worker", 1, 100},
		{"even split", 4, 100},
		{"remainder attaches to last partition", 4, 101},
		{"more workers than elements", 8, 3},
		{"one element", 4, 1},
		{"power of two chunk", 4, 1 << 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.workers)
			hits := make([]int32, tt.n)
			e.For(tt.n, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("element %d visited %d times, want 1", i, h)
				}
			}
		})
	}
}

func TestForEmptyRange(t *testing.T) {
	e := New(4)
	called := false
	e.For(0, func(lo, hi int) { called = true })
	if called {
		t.Error("For(0) should not invoke fn")
	}
	e.For(-5, func(lo, hi int) { called = true })
	if called {
		t.Error("For with negative n should not invoke fn")
	}
}

func TestNestedForRunsInline(t *testing.T) {
	e := New(4)
	var nestedCalls atomic.Int32
	e.For(8, func(lo, hi int) {
		if !e.InParallel() {
			t.Error("InParallel() should report true inside a region")
		}
		// A nested call must collapse to a single inline invocation
		// covering the whole nested range.
		e.For(16, func(nlo, nhi int) {
			nestedCalls.Add(1)
			if nlo != 0 || nhi != 16 {
				t.Errorf("nested partition = [%d,%d), want [0,16)", nlo, nhi)
			}
		})
	})
	// One nested call per outer partition; 8 elements over 4 workers
	// gives 4 partitions.
	if got := nestedCalls.Load(); got != 4 {
		t.Errorf("nested invocations = %d, want 4", got)
	}
	if e.InParallel() {
		t.Error("InParallel() should report false after the region ends")
	}
}

func TestForShardIndexBounds(t *testing.T) {
	e := New(4)
	seen := make([]int32, e.Workers())
	e.ForShard(100, func(shard, lo, hi int) {
		if shard < 0 || shard >= e.Workers() {
			t.Errorf("shard %d out of range [0,%d)", shard, e.Workers())
			return
		}
		atomic.AddInt32(&seen[shard], 1)
	})
	for s, c := range seen {
		if c > 1 {
			t.Errorf("shard %d used %d times, want at most 1", s, c)
		}
	}
}

func TestTruncatingPartition(t *testing.T) {
	// The partition rule is lo = i*n/w, hi = (i+1)*n/w. For n=10, w=4 the
	// boundaries are 0,2,5,7,10.
	e := New(4)
	type span struct{ lo, hi int }
	var mu [4]span
	e.ForShard(10, func(shard, lo, hi int) {
		mu[shard] = span{lo, hi}
	})
	want := [4]span{{0, 2}, {2, 5}, {5, 7}, {7, 10}}
	if mu != want {
		t.Errorf("partitions = %v, want %v", mu, want)
	}
}

func TestDefaultEngineSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default() should return the same engine")
	}
	if a.Workers() < 1 {
		t.Errorf("default engine has %d workers", a.Workers())
	}
}
