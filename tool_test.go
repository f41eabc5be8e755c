package gomk

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
	"github.com/google/go-cmp/cmp"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

func testFiles(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		testerr.Shall(os.MkdirAll(filepath.Dir(p), 0777)).BeNil(t)
		testerr.Shall(os.WriteFile(p, []byte(f), 0666)).BeNil(t)
	}
}

func TestTool_Declare(t *testing.T) {
	dir := t.TempDir()
	testFiles(t, dir, "src/a.txt", "src/b.txt", "src/c.md", "src/sub/d.txt")
	env := new(Env)
	env.SetTags("SFX=.txt", "CAT=cat ${SOURCES}")
	var emitted []Artefact
	tool := &Tool{
		Name:      "Cat",
		Command:   "CAT",
		SrcSuffix: "$SFX",
		Emitter: func(prj *Project, env *Env, targets, sources []Artefact) ([]Artefact, []Artefact, error) {
			emitted = sources
			return targets, sources, nil
		},
		Scanner: func(env *Env, target Artefact, path string) ([]string, error) {
			return []string{filepath.Join(path, "deps.inc")}, nil
		},
	}
	prj := NewProject(dir)
	a := testerr.Shall1(tool.Declare(prj, env,
		[]Artefact{mkfs.File("out.txt")},
		[]Artefact{mkfs.DirList{Dir: "src"}, mkfs.File("extra")},
	)).BeNil(t)
	if diff := cmp.Diff([]Artefact{
		mkfs.File(filepath.Join("src", "a.txt")),
		mkfs.File(filepath.Join("src", "b.txt")),
		mkfs.File("extra.txt"),
	}, emitted); diff != "" {
		t.Errorf("emitted sources (-want +got):\n%s", diff)
	}
	if n := len(a.Premises()); n != 4 {
		t.Fatalf("expect 4 premises, got %d", n)
	}
	if n := a.Premise(3).Name(); n != "deps.inc" {
		t.Errorf("scanned premise is '%s'", n)
	}
	if !a.Result(0).Removable {
		t.Error("result is not removable")
	}
	if s := a.String(); s != "Cat:out.txt" {
		t.Errorf("action string is '%s'", s)
	}

	line := testerr.Shall1(a.Op.(*CommandOp).Line(a, env)).BeNil(t)
	want := []string{"cat", filepath.Join("src", "a.txt"), filepath.Join("src", "b.txt"), "extra.txt"}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("command line (-want +got):\n%s", diff)
	}

	h := sha256.New()
	if ok := testerr.Shall1(a.WriteHash(h, env)).BeNil(t); !ok {
		t.Error("command op has no hash")
	}
}

func TestTool_Declare_emitError(t *testing.T) {
	errBad := errors.New("bad step")
	tool := &Tool{
		Command: "COM",
		Emitter: func(*Project, *Env, []Artefact, []Artefact) ([]Artefact, []Artefact, error) {
			return nil, nil, errBad
		},
	}
	prj := NewProject(t.TempDir())
	if _, err := tool.Declare(prj, new(Env), []Artefact{mkfs.File("x")}, nil); !errors.Is(err, errBad) {
		t.Errorf("unexpected error: %v", err)
	}
	if acts := prj.Actions(); len(acts) != 0 {
		t.Errorf("actions after error: %v", acts)
	}
	if _, err := (&Tool{Command: "COM"}).Declare(prj, new(Env), nil, nil); err == nil {
		t.Error("no error without targets")
	}
}

func TestTool_Declare_targetCheck(t *testing.T) {
	errTargets := errors.New("bad targets")
	emitted := false
	tool := &Tool{
		Command:   "COM",
		SrcSuffix: ".txt",
		TargetCheck: func(_ *Project, _ *Env, targets []Artefact) error {
			if len(targets) != 1 {
				return errTargets
			}
			return nil
		},
		Emitter: func(_ *Project, _ *Env, targets, sources []Artefact) ([]Artefact, []Artefact, error) {
			emitted = true
			return targets, sources, nil
		},
	}
	prj := NewProject(t.TempDir())
	_, err := tool.Declare(prj, new(Env),
		[]Artefact{mkfs.File("a"), mkfs.File("b")},
		[]Artefact{mkfs.DirTree{Dir: "missing"}},
	)
	if !errors.Is(err, errTargets) {
		t.Errorf("targets not checked first: %v", err)
	}
	if emitted {
		t.Error("emitter called for rejected targets")
	}
}

func TestProjectEd_Step(t *testing.T) {
	env := new(Env)
	env.SetStepBuilder("Cat", &Tool{Command: "CAT"})
	sub := env.Sub()
	prj := NewProject(t.TempDir())
	testerr.Shall(Edit(prj, func(prj ProjectEd) {
		a := prj.Step(sub, "Cat", []Artefact{mkfs.File("out")}, []Artefact{mkfs.File("in")})
		if n := len(a.Results()); n != 1 {
			t.Errorf("expect 1 result, got %d", n)
		}
	})).BeNil(t)
	err := Edit(prj, func(prj ProjectEd) {
		prj.Step(env, "Nope", []Artefact{mkfs.File("out2")}, nil)
	})
	if err == nil || !strings.Contains(err.Error(), "Nope") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCommandOp_Do(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs echo")
	}
	dir := t.TempDir()
	testFiles(t, dir, "in.txt")
	env := new(Env)
	env.SetTags("COM=echo ${SOURCES} to ${TARGET}", "COMSTR=Echo ${TARGET}")
	var out strings.Builder
	env.Out = &out
	prj := NewProject(dir)
	tool := &Tool{Name: "Echo", Command: "COM", CommandStr: "COMSTR"}
	a := testerr.Shall1(tool.Declare(prj, env,
		[]Artefact{mkfs.File("out.txt")},
		[]Artefact{mkfs.File("in.txt")},
	)).BeNil(t)
	testerr.Shall(a.Op.Do(NewTrace(context.Background(), TestTracer{t}), a, env)).BeNil(t)
	if s := out.String(); s != "Echo out.txt\nin.txt to out.txt\n" {
		t.Errorf("unexpected output: %q", s)
	}

	env.SetTag("COM", "${EMPTY}")
	err := a.Op.Do(NewTrace(context.Background(), TestTracer{t}), a, env)
	if !errors.Is(err, ErrNoCommand) {
		t.Errorf("empty command: %v", err)
	}
	env.DelTag("COM")
	if _, err = a.Op.(*CommandOp).Line(a, env); !errors.Is(err, ErrNoCommand) {
		t.Errorf("unset command: %v", err)
	}
}

func TestCmdOp_prefix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	var out strings.Builder
	env := &Env{Out: &out, Err: &out}
	op := &CmdOp{Exe: "sh", Args: []string{"-c", "echo a; echo b"}, OutPrefix: "> "}
	prj := NewProject(t.TempDir())
	var a *gomkore.Action
	testerr.Shall(Edit(prj, func(prj ProjectEd) {
		prj.Goal(mkfs.File("x")).By(op)
		a = prj.Project().Actions()[0]
	})).BeNil(t)
	testerr.Shall(op.Do(NewTrace(context.Background(), TestTracer{t}), a, env)).BeNil(t)
	if s := out.String(); s != "> a\n> b\n" {
		t.Errorf("unexpected output: %q", s)
	}
}
