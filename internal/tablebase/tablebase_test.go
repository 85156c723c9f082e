package tablebase

import (
	"testing"

	"github.com/hailam/atomicgen/internal/board"
)

// countingProber records how many probes reach it.
type countingProber struct {
	result ProbeResult
	count  int
}

func (c *countingProber) Probe(*board.Position) ProbeResult {
	c.count++
	return c.result
}
func (c *countingProber) MaxPieces() int  { return 4 }
func (c *countingProber) Available() bool { return true }

func TestNoopProber(t *testing.T) {
	var p NoopProber
	if p.Available() {
		t.Error("noop prober must not be available")
	}
	if res := p.Probe(board.NewPosition()); res.Found {
		t.Error("noop prober must not find anything")
	}
}

func TestCachedProber(t *testing.T) {
	inner := &countingProber{result: ProbeResult{Found: true, WDL: WDLWin}}
	cp := NewCachedProber(inner, 16)

	pos, err := board.ParseFEN("8/8/8/8/3kK3/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	first := cp.Probe(pos)
	second := cp.Probe(pos)
	if first != second {
		t.Error("cached result diverged")
	}
	if inner.count != 1 {
		t.Errorf("inner prober should be hit once, got %d", inner.count)
	}
	if cp.MaxPieces() != 4 || !cp.Available() {
		t.Error("cached prober must delegate metadata")
	}
}

func TestPersistentProberStoreOnly(t *testing.T) {
	pp, err := NewPersistentProber(nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer pp.Close()

	if !pp.Available() {
		t.Error("store-only oracle must report available")
	}

	pos, err := board.ParseFEN("8/8/8/8/3kK3/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if res := pp.Probe(pos); res.Found {
		t.Error("empty store must not answer")
	}

	want := ProbeResult{Found: true, WDL: WDLLoss}
	if err := pp.Store(pos, want); err != nil {
		t.Fatal(err)
	}
	if got := pp.Probe(pos); got != want {
		t.Errorf("stored result not returned: %+v", got)
	}
}

func TestPersistentProberCachesInner(t *testing.T) {
	inner := &countingProber{result: ProbeResult{Found: true, WDL: WDLDraw}}
	pp, err := NewPersistentProber(inner, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer pp.Close()

	pos := board.NewPosition()
	pp.Probe(pos)
	pp.Probe(pos)
	if inner.count != 1 {
		t.Errorf("second probe should come from the store, inner hit %d times", inner.count)
	}
}
