package mkconf

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
	"github.com/google/go-cmp/cmp"

	gomk "git.fractalqb.de/fractalqb/jsdocmk"
	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/jsdoc"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

const testConfig = `
tools: [jsdoc]
env_files: [build.env]
env:
  JSDOC_TEMPLATE: tpl
steps:
  - name: apidoc
    builder: JSDoc
    target: doc/api
    sources: [src]
    env:
      JSDOC_FLAGS: --private
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	testerr.Shall(os.MkdirAll(filepath.Dir(path), 0777)).BeNil(t)
	testerr.Shall(os.WriteFile(path, []byte(content), 0666)).BeNil(t)
}

func stepLine(t *testing.T, prj *gomk.Project, env *gomk.Env, goal string) (*gomkore.Action, []string) {
	t.Helper()
	g := prj.FindGoal(goal)
	if g == nil {
		t.Fatalf("no goal '%s'", goal)
	}
	if n := len(g.ResultOf()); n != 1 {
		t.Fatalf("goal '%s' is result of %d actions", goal, n)
	}
	doc := g.ResultOf()[0].Premise(0)
	act := doc.ResultOf()[0]
	return act, testerr.Shall1(act.Op.(*gomk.CommandOp).Line(act, env)).BeNil(t)
}

func TestParse(t *testing.T) {
	cfg := testerr.Shall1(Parse(strings.NewReader(testConfig))).BeNil(t)
	if diff := cmp.Diff([]string{"jsdoc"}, cfg.Tools); diff != "" {
		t.Errorf("tools (-want +got):\n%s", diff)
	}
	if tpl := cfg.Env["JSDOC_TEMPLATE"]; tpl != "tpl" {
		t.Errorf("template is '%s'", tpl)
	}
	want := []Step{{
		Name:    "apidoc",
		Builder: "JSDoc",
		Target:  "doc/api",
		Sources: []string{"src"},
		Env:     map[string]string{"JSDOC_FLAGS": "--private"},
	}}
	if diff := cmp.Diff(want, cfg.Steps); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}

	cfg = testerr.Shall1(Parse(strings.NewReader(""))).BeNil(t)
	if len(cfg.Steps) != 0 {
		t.Errorf("steps from empty description: %v", cfg.Steps)
	}
}

func TestParse_invalid(t *testing.T) {
	if _, err := Parse(strings.NewReader("stepz: []\n")); err == nil {
		t.Error("unknown field accepted")
	}

	_, err := Parse(strings.NewReader(`
steps:
  - name: a
    builder: JSDoc
  - name: a
    target: doc
`))
	if err == nil {
		t.Fatal("invalid steps accepted")
	}
	for _, msg := range []string{
		"step 1: no target",
		"step 2: no builder",
		"already used by step 1",
	} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("missing '%s' in: %s", msg, err)
		}
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.env"), "A=from-a\nB=from-a\n")
	writeFile(t, filepath.Join(dir, "b.env"), "B=from-b\nC=from-b\n")
	env := new(gomk.Env)
	env.SetTag("A", "explicit")
	testerr.Shall(LoadEnvFiles(env,
		filepath.Join(dir, "a.env"),
		filepath.Join(dir, "b.env"),
	)).BeNil(t)
	for k, v := range map[string]string{"A": "explicit", "B": "from-a", "C": "from-b"} {
		if got := env.TagOr(k, ""); got != v {
			t.Errorf("tag %s is '%s', want '%s'", k, got, v)
		}
	}

	if err := LoadEnvFiles(env, filepath.Join(dir, "missing.env")); err == nil {
		t.Error("no error for missing env file")
	}
}

func TestConfig_Apply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "JSDOC_SUFFIX=.mjs\nJSDOC_FLAGS=--from-file\n")
	cfg := testerr.Shall1(Parse(strings.NewReader(`
tools: [jsdoc]
env_files: [.env]
env:
  JSDOC_FLAGS: --private
`))).BeNil(t)
	env := new(gomk.Env)
	testerr.Shall(cfg.Apply(env, dir)).BeNil(t)
	if f := env.TagOr(jsdoc.KeyFlags, ""); f != "--private" {
		t.Errorf("flags are '%s'", f)
	}
	if s := env.TagOr(jsdoc.KeySuffix, ""); s != ".mjs" {
		t.Errorf("suffix is '%s'", s)
	}
	if c := env.TagOr(jsdoc.KeyCommand, ""); c != jsdoc.DefaultCommand {
		t.Errorf("command is '%s'", c)
	}
	if _, ok := env.Tag(jsdoc.KeyTemplateOpt); ok {
		t.Error("template option without template")
	}
}

func TestConfig_Declare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build.env"), "JSDOC=/opt/bin/jsdoc\n")
	writeFile(t, filepath.Join(dir, "src", "a.js"), "")
	writeFile(t, filepath.Join(dir, "src", "b.js"), "")
	writeFile(t, filepath.Join(dir, DefaultFile), testConfig)

	cfg := testerr.Shall1(Load(filepath.Join(dir, DefaultFile))).BeNil(t)
	env := new(gomk.Env)
	testerr.Shall(cfg.Apply(env, dir)).BeNil(t)
	if x := env.TagOr(jsdoc.KeyExe, ""); x != "/opt/bin/jsdoc" {
		t.Errorf("executable is '%s'", x)
	}
	if _, ok := env.Tag(jsdoc.KeyTemplateOpt); !ok {
		t.Error("no template option")
	}

	prj := gomk.NewProject(dir)
	testerr.Shall(cfg.Declare(prj, env)).BeNil(t)
	act, line := stepLine(t, prj, env, "apidoc")
	if n := act.Result(0).Name(); n != filepath.Join("doc", "api", jsdoc.MarkerFile) {
		t.Errorf("result is '%s'", n)
	}
	want := []string{
		"/opt/bin/jsdoc", "--private", "-t", "tpl", "-d", filepath.Join("doc", "api"),
		filepath.Join("src", "a.js"), filepath.Join("src", "b.js"),
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("command line (-want +got):\n%s", diff)
	}
	if f := env.TagOr(jsdoc.KeyFlags, "-"); f != "" {
		t.Errorf("step env leaked flags '%s'", f)
	}
}

func TestConfig_Declare_stepTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.js"), "")
	writeFile(t, filepath.Join(dir, "tpl", "publish.js"), "")
	cfg := testerr.Shall1(Parse(strings.NewReader(`
tools: [jsdoc]
steps:
  - name: apidoc
    builder: JSDoc
    target: doc/api
    sources: [src]
    env:
      JSDOC_TEMPLATE: tpl
`))).BeNil(t)
	env := new(gomk.Env)
	testerr.Shall(cfg.Apply(env, dir)).BeNil(t)
	prj := gomk.NewProject(dir)
	testerr.Shall(cfg.Declare(prj, env)).BeNil(t)

	act, line := stepLine(t, prj, env, "apidoc")
	want := []string{
		"jsdoc", "-t", "tpl", "-d", filepath.Join("doc", "api"),
		filepath.Join("src", "a.js"),
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("command line (-want +got):\n%s", diff)
	}
	var pres []string
	for _, p := range act.Premises() {
		pres = append(pres, p.Name())
	}
	if !slices.Contains(pres, filepath.Join("tpl", "publish.js")) {
		t.Errorf("template not a premise: %v", pres)
	}
	if _, ok := env.Tag(jsdoc.KeyTemplateOpt); ok {
		t.Error("step template leaked into env")
	}
}

func TestStep_sources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.js"), "")
	prj := gomk.NewProject(dir)
	s := Step{Sources: []string{"src", "lib/x.js"}}
	want := []gomkore.Artefact{mkfs.DirTree{Dir: "src"}, mkfs.File("lib/x.js")}
	if diff := cmp.Diff(want, s.sources(prj)); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}
}
