package gomk

import (
	"context"
	"errors"
	"fmt"
	"hash"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

type (
	Env      = gomkore.Env
	Project  = gomkore.Project
	Goal     = gomkore.Goal
	Action   = gomkore.Action
	Artefact = gomkore.Artefact
	Trace    = gomkore.Trace

	Abstract = gomkore.Abstract
)

const (
	UpdAllActions  gomkore.UpdateMode = gomkore.UpdAllActions
	UpdSomeActions gomkore.UpdateMode = gomkore.UpdSomeActions
	UpdAnyAction   gomkore.UpdateMode = gomkore.UpdAnyAction
	UpdOneAction   gomkore.UpdateMode = gomkore.UpdOneAction

	UpdUnordered gomkore.UpdateMode = gomkore.UpdUnordered
)

func DefaultEnv(tr *Trace) *Env { return gomkore.DefaultEnv(tr) }

func NewProject(dir string) *Project { return gomkore.NewProject(dir) }

// NewTrace creates a trace for ctx that uses [DefaultTracer] if t is nil.
func NewTrace(ctx context.Context, t gomkore.Tracer) *Trace {
	if t == nil {
		t = DefaultTracer()
	}
	return gomkore.NewTrace(ctx, t)
}

// Edit locks prj and calls do to declare goals and actions in prj. The
// editing wrappers panic on errors. Edit recovers from those panics and
// returns them as error.
func Edit(prj *Project, do func(ProjectEd)) (err error) {
	prj.Lock()
	defer func() {
		prj.Unlock()
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("panic: %+v", p)
			}
		}
	}()
	do(ProjectEd{prj})
	return
}

// Goals is meant to be used when implementing [gomkore.Operation] to select
// and check linked goals gs. With exclusive set, a goal that fails the last
// predicate is an error.
//
// See also [Tangible], [AType]
func Goals(gs []*Goal, exclusive bool, matchAll ...func(*Goal) bool) ([]*Goal, error) {
	mLen1 := len(matchAll) - 1
	res := make([]*Goal, 0, len(gs))
NEXT_GOAL:
	for gi, g := range gs {
		for pi, pred := range matchAll {
			if !pred(g) {
				if exclusive && pi == mLen1 {
					return nil, fmt.Errorf("illegal goal %d: %s", gi, g.Name())
				}
				continue NEXT_GOAL
			}
		}
		res = append(res, g)
	}
	return res, nil
}

func Tangible(g *Goal) bool { return !g.IsAbstract() }

func AType[A gomkore.Artefact](g *Goal) bool {
	_, ok := g.Artefact.(A)
	return ok
}

// OpFunc wraps a Go function as operation. Its hash is not tracked.
func OpFunc(desc string, f func(*Trace, *Action, *Env) error) gomkore.Operation {
	return funcOp{desc: desc, f: f}
}

type funcOp struct {
	desc string
	f    func(*Trace, *Action, *Env) error
}

func (fo funcOp) Describe(*Action, *Env) string { return fo.desc }

func (fo funcOp) Do(tr *Trace, a *Action, env *Env) error {
	tr.Debug("call `function`", `function`, fo.desc)
	return fo.f(tr, a, env)
}

func (fo funcOp) WriteHash(hash.Hash, *Action, *Env) (bool, error) {
	return false, nil
}

func mustEd(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRet[T any](v T, err error) T {
	mustEd(err)
	return v
}
