package gomkore

import (
	"testing"
	"time"
)

func TestClean(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.TempDir())
	src := &memAtf{name: "src", at: now}
	out := &memAtf{name: "out", at: now}
	keep := &memAtf{name: "keep", at: now}
	outDir := &memAtf{name: "out-dir", at: now}
	gSrc, _ := prj.Goal(src)
	gOut, _ := prj.Goal(out)
	gKeep, _ := prj.Goal(keep)
	gOut.Removable = true
	prj.NewAction([]*Goal{gSrc}, []*Goal{gOut, gKeep}, nil)
	gSrc.AlsoClean(outDir)

	if err := Clean(prj, true, newTestTrace(t)); err != nil {
		t.Fatal(err)
	}
	if out.removed || outDir.removed {
		t.Fatal("dry-run removed artefacts")
	}
	if err := Clean(prj, false, newTestTrace(t)); err != nil {
		t.Fatal(err)
	}
	if !out.removed {
		t.Error("removable result not removed")
	}
	if !outDir.removed {
		t.Error("associated artefact not removed")
	}
	if keep.removed || src.removed {
		t.Error("removed artefact that is not removable")
	}
}

func TestCleanGoals(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.TempDir())
	a, b := &memAtf{name: "a", at: now}, &memAtf{name: "b", at: now}
	da, db := &memAtf{name: "da", at: now}, &memAtf{name: "db", at: now}
	ga, _ := prj.Goal(a)
	gb, _ := prj.Goal(b)
	ga.AlsoClean(da)
	gb.AlsoClean(db)
	if err := CleanGoals(false, newTestTrace(t), ga); err != nil {
		t.Fatal(err)
	}
	if !da.removed {
		t.Error("artefact of cleaned goal not removed")
	}
	if db.removed {
		t.Error("artefact of other goal removed")
	}
}
