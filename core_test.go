package gomk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
	"git.fractalqb.de/fractalqb/testerr"
)

func TestGoals(t *testing.T) {
	prj := gomkore.NewProject(t.Name())
	g1 := testerr.Shall1(prj.Goal(gomkore.Abstract("."))).BeNil(t)
	g2 := testerr.Shall1(prj.Goal(mkfs.File("F"))).BeNil(t)
	gs := []*gomkore.Goal{g1, g2}

	t.Run("not exclusive", func(t *testing.T) {
		res := testerr.Shall1(Goals(gs, false, Tangible, AType[mkfs.File])).BeNil(t)
		if l := len(res); l != 1 {
			t.Fatalf("filter yields %d goals", l)
		}
		if res[0] != g2 {
			t.Fatalf("filtered wrong goal: %s", res[0])
		}
	})

	t.Run("exclusive fail", func(t *testing.T) {
		_, err := Goals(gs, true, Tangible, AType[mkfs.DirTree])
		if err == nil || err.Error() != "illegal goal 1: F" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestEdit_panic(t *testing.T) {
	prj := NewProject(t.TempDir())
	err := Edit(prj, func(ProjectEd) { panic("broken") })
	if err == nil || err.Error() != "broken" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !prj.TryLock() {
		t.Fatal("project still locked")
	}
	prj.Unlock()
}

func Test_buildProject(t *testing.T) {
	dir := t.TempDir()
	testFiles(t, dir, "doc/foo.txt")
	prj := NewProject(dir)
	copyOp := OpFunc("copy", func(tr *Trace, a *Action, env *Env) error {
		in := testerr.Shall1(prj.AbsPath(a.Premise(0).Name())).BeNil(t)
		out := testerr.Shall1(prj.AbsPath(a.Result(0).Name())).BeNil(t)
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		return os.WriteFile(out, data, 0666)
	})
	testerr.Shall(Edit(prj, func(prj ProjectEd) {
		prj.Goal(mkfs.File("doc/foo.cp")).
			By(copyOp, prj.Goal(mkfs.File("doc/foo.txt")))
	})).BeNil(t)
	build := NewBuilder(
		gomkore.NewTrace(context.Background(), TestTracer{t}),
		nil,
	)
	testerr.Shall(build.Project(prj)).BeNil(t)
	testerr.Shall1(os.Stat(filepath.Join(dir, "doc/foo.cp"))).BeNil(t)
}

func TestFsGoals(t *testing.T) {
	dir := t.TempDir()
	testFiles(t, dir, "src/a.js", "src/lib/b.js")
	prj := NewProject(dir)
	var gs []GoalEd
	testerr.Shall(Edit(prj, func(prj ProjectEd) {
		gs = FsGoals(prj, mkfs.DirList{Dir: "src"}, mkfs.DirTree{})
	})).BeNil(t)
	if l := len(gs); l != 2 {
		t.Fatalf("got %d goals", l)
	}
	if _, ok := gs[0].Artefact().(mkfs.File); !ok {
		t.Errorf("a.js is %T", gs[0].Artefact())
	}
	if d, ok := gs[1].Artefact().(mkfs.DirTree); !ok || d.Dir != filepath.Join("src", "lib") {
		t.Errorf("lib is %+v", gs[1].Artefact())
	}
}
