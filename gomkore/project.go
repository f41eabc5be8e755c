package gomkore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

type BuildID = uint64

// Project is the container for all goals and actions of one build. All
// relative artefact paths are relative to the project's Dir.
type Project struct {
	Dir string

	sync.Mutex

	parent    *Project
	goals     map[string]*Goal
	actions   []*Action
	lastBuild BuildID
}

var _ Artefact = (*Project)(nil)

func NewProject(dir string) *Project {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	prj := &Project{
		Dir:   dir,
		goals: make(map[string]*Goal),
	}
	return prj
}

// Goal returns the goal of prj for artefact atf. If prj has no goal with the
// name of atf, a new goal is created. A nil artefact creates a new goal with a
// generated [Abstract] name.
func (prj *Project) Goal(atf Artefact) (*Goal, error) {
	if atf == nil {
		n := fmt.Sprintf("artefact-%d", len(prj.goals))
		atf = Abstract(n)
	}
	name := atf.Name(prj)
	if g := prj.goals[name]; g != nil {
		return g, nil
	}
	if sub, ok := atf.(*Project); ok {
		if sub.parent != nil {
			return nil, fmt.Errorf("adding sub-project %s of %s to project %s",
				sub.Name(sub.parent),
				sub.parent.String(),
				prj.String(),
			)
		}
		sub.parent = prj
	}
	g := &Goal{
		Artefact: atf,
		prj:      prj,
	}
	prj.goals[name] = g
	return g, nil
}

// Goals appends all goals of prj to addTo, sorted by name.
func (prj *Project) Goals(addTo []*Goal) []*Goal {
	if len(prj.goals) == 0 {
		return addTo
	}
	names := make([]string, 0, len(prj.goals))
	for n := range prj.goals {
		names = append(names, n)
	}
	sort.Strings(names)
	addTo = slices.Grow(addTo, len(names))
	for _, n := range names {
		addTo = append(addTo, prj.goals[n])
	}
	return addTo
}

func (prj *Project) FindGoal(name string) *Goal {
	return prj.goals[name]
}

func (prj *Project) Actions() []*Action { return prj.actions }

func (prj *Project) Name(in *Project) string {
	if in == nil {
		return prj.String()
	}
	n, err := in.RelPath(prj.Dir)
	if err != nil {
		return prj.Dir
	}
	return n
}

func (prj *Project) String() string {
	tmp := prj.Dir
	if tmp == "" || tmp == "." {
		tmp, _ = filepath.Abs(tmp)
	}
	return filepath.Base(tmp)
}

// StateAt returns the latest state time of all leaf goals of prj.
func (prj *Project) StateAt(in *Project) time.Time {
	leafs := prj.Leafs()
	if len(leafs) == 0 {
		return time.Time{}
	}
	t := leafs[0].Artefact.StateAt(prj)
	for _, l := range leafs[1:] {
		u := l.Artefact.StateAt(prj)
		if u.IsZero() {
			return u
		}
		if u.After(t) {
			t = u
		}
	}
	return t
}

// Build returns the ID of the current or the last build of prj.
func (prj *Project) Build() BuildID { return prj.lastBuild }

// RelPath returns path p relative to the project directory. Relative paths
// are considered to be relative to the project directory already.
func (prj *Project) RelPath(p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	dir, err := prj.absDir()
	if err != nil {
		return "", err
	}
	return filepath.Rel(dir, p)
}

// AbsPath returns the absolute path of p. Relative paths are resolved
// against the project directory.
func (prj *Project) AbsPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	dir, err := prj.absDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

func (prj *Project) absDir() (string, error) {
	dir := prj.Dir
	if prj.parent != nil && !filepath.IsAbs(dir) {
		return prj.parent.AbsPath(dir)
	}
	return filepath.Abs(dir)
}

// Leafs returns all goals that are not premise of any action.
func (prj *Project) Leafs() (ls []*Goal) {
	for _, g := range prj.Goals(nil) {
		if len(g.PremiseOf()) == 0 {
			ls = append(ls, g)
		}
	}
	return ls
}

// Roots returns all goals that are not result of any action.
func (prj *Project) Roots() (rs []*Goal) {
	for _, g := range prj.Goals(nil) {
		if len(g.ResultOf()) == 0 {
			rs = append(rs, g)
		}
	}
	return rs
}

// NewAction creates a new [Action] in project prj. There must be at least one
// result. All premises and results must belong to the same project prj.
func (prj *Project) NewAction(premises, results []*Goal, op Operation) (*Action, error) {
	if len(results) == 0 {
		desc := "implicit"
		if op != nil {
			desc = op.Describe(nil, nil)
		}
		return nil, fmt.Errorf("creating action %s without result", desc)
	}
	if err := prj.consistentPrj(premises, results); err != nil {
		return nil, err
	}
	a := &Action{
		Op:       op,
		prj:      prj,
		premises: premises,
		results:  results,
	}
	for _, r := range results {
		for _, o := range results {
			if err := r.UpdateConsistency(o); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range premises {
		p.premiseOf = append(p.premiseOf, a)
	}
	for _, r := range results {
		r.resultOf = append(r.resultOf, a)
	}
	prj.actions = append(prj.actions, a)
	return a, nil
}

// LockBuild locks prj and starts a new build. The lock has to be released
// with prj.Unlock().
func (prj *Project) LockBuild() BuildID {
	prj.Lock()
	prj.lastBuild++
	return prj.lastBuild
}

func escDotID(id string) string {
	return strings.ReplaceAll(id, "\"", "\\\"")
}

// WriteDot writes a simple graphviz representation of prj to w.
func (prj *Project) WriteDot(w io.Writer) (n int, err error) {
	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			default:
				panic(p)
			}
		}
	}()
	akku := func(p int, err error) {
		n += p
		if err != nil {
			panic(err)
		}
	}
	akku(fmt.Fprintf(w, "digraph \"%s\" {\n\trankdir=\"LR\"\n", escDotID(prj.Name(nil))))
	for _, g := range prj.Goals(nil) {
		tn := reflect.Indirect(reflect.ValueOf(g.Artefact)).Type().Name()
		var style string
		if g.IsAbstract() {
			style = ",style=dashed"
		} else if len(g.ResultOf()) == 0 || len(g.PremiseOf()) == 0 {
			style = ",style=bold"
		}
		akku(fmt.Fprintf(w, "\t\"%p\" [shape=record%s,label=\"{%s|%s}\"];\n",
			g,
			style,
			tn,
			escDotID(g.Name()),
		))
	}
	for _, a := range prj.actions {
		akku(fmt.Fprintf(w, "\t\"%p\" [shape=box,style=rounded,label=\"%s\"];\n",
			a,
			escDotID(a.String()),
		))
		for _, p := range a.Premises() {
			akku(fmt.Fprintf(w, "\t\"%p\" -> \"%p\";\n", p, a))
		}
		for _, r := range a.Results() {
			akku(fmt.Fprintf(w, "\t\"%p\" -> \"%p\";\n", a, r))
		}
	}
	akku(fmt.Fprintln(w, "}"))
	return
}

func (prj *Project) consistentPrj(premises, results []*Goal) error {
	for _, g := range premises {
		if p := g.Project(); p != prj {
			return fmt.Errorf("premise '%s' not in project '%s'",
				g.String(),
				prj.String(),
			)
		}
	}
	for _, g := range results {
		if p := g.Project(); p != prj {
			return fmt.Errorf("result '%s' not in project '%s'",
				g.String(),
				prj.String(),
			)
		}
	}
	return nil
}
