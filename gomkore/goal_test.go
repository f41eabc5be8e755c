package gomkore

import (
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
)

func Test_bitset_NextClear_range(t *testing.T) {
	bits := bitset.New(70)
	bits.SetAll().Clear(69)
	cIdx, ok := bits.NextClear(0)
	if !ok {
		t.Error("did not find clear bit")
	}
	if cIdx != 69 {
		t.Errorf("unexpected clear bit %d", cIdx)
	}
	cIdx, ok = bits.NextClear(70)
	if ok {
		t.Errorf("unexpected clear bit %d after end", cIdx)
	}
}

func TestGoal_CheckPreTimes(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.TempDir())
	src := &memAtf{name: "src", at: now}
	out := &memAtf{name: "out"}
	gSrc, _ := prj.Goal(src)
	gOut, _ := prj.Goal(out)
	if _, err := prj.NewAction([]*Goal{gSrc}, []*Goal{gOut}, nil); err != nil {
		t.Fatal(err)
	}
	tr := newTestTrace(t)

	chgs, _ := gOut.CheckPreTimes(tr)
	if len(chgs) != 1 {
		t.Fatalf("missing result not scheduled: %v", chgs)
	}
	out.at = now.Add(time.Second)
	if chgs, _ = gOut.CheckPreTimes(tr); len(chgs) != 0 {
		t.Errorf("up-to-date result scheduled: %v", chgs)
	}
	src.at = now.Add(2 * time.Second)
	if chgs, _ = gOut.CheckPreTimes(tr); len(chgs) != 1 {
		t.Errorf("outdated result not scheduled: %v", chgs)
	}
	src.at = time.Time{}
	if chgs, _ = gOut.CheckPreTimes(tr); len(chgs) != 1 {
		t.Errorf("result with missing premise not scheduled: %v", chgs)
	}
}

func TestGoal_AlsoClean(t *testing.T) {
	prj := NewProject(t.TempDir())
	g, _ := prj.Goal(Abstract("sources"))
	a, b := &memAtf{name: "a"}, &memAtf{name: "b"}
	g.AlsoClean(a, b)
	g.AlsoClean(&memAtf{name: "a"})
	if l := len(g.CleanAlso()); l != 2 {
		t.Errorf("%d clean associations, want 2", l)
	}
}

func TestGoal_LockPreActions(t *testing.T) {
	prj := NewProject(t.TempDir())
	g, _ := prj.Goal(Abstract("g"))
	for range 3 {
		if _, err := prj.NewAction(nil, []*Goal{g}, nil); err != nil {
			t.Fatal(err)
		}
	}
	g.LockPreActions(1)
	for i, a := range g.ResultOf() {
		if a.lockedBy != 1 {
			t.Errorf("action %d not locked", i)
		}
	}
	g.UnlockPreActions()
	for i, a := range g.ResultOf() {
		if a.lockedBy != 0 {
			t.Errorf("action %d still locked", i)
		}
	}
}
