package gomk

import (
	"context"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// NewBuilder creates a builder. If tr is nil a trace with the
// [DefaultTracer] is used.
func NewBuilder(tr *Trace, env *Env) *gomkore.Builder {
	if tr == nil {
		tr = gomkore.NewTrace(context.Background(), DefaultTracer())
	}
	res, _ := gomkore.NewBuilder(tr, env)
	return res
}

func NewChanger(tr *Trace, env *Env) *gomkore.Changer {
	if tr == nil {
		tr = gomkore.NewTrace(context.Background(), DefaultTracer())
	}
	res, _ := gomkore.NewChanger(tr, env)
	return res
}

// Clean removes the generated artefacts of prj, see [gomkore.Clean].
func Clean(prj *Project, dryrun bool, tr *Trace) error {
	if tr == nil {
		tr = gomkore.NewTrace(context.Background(), DefaultTracer())
	}
	return gomkore.Clean(prj, dryrun, tr)
}

// CleanGoals cleans only the goals gs of one project.
func CleanGoals(dryrun bool, tr *Trace, gs ...*Goal) error {
	if tr == nil {
		tr = gomkore.NewTrace(context.Background(), DefaultTracer())
	}
	return gomkore.CleanGoals(dryrun, tr, gs...)
}
