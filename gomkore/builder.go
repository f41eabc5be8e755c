package gomkore

import (
	"errors"
	"fmt"
	"time"
)

// Builder brings goals up to date by running the actions that are required
// according to the state times of the artefacts.
type Builder struct {
	updater

	// KeepGoing continues with the other goals when a goal fails. Goals that
	// depend on a failed goal are not updated. All errors are returned
	// joined.
	KeepGoing bool

	failed map[*Goal]error
}

// ErrPremiseFailed is returned for goals that were skipped because a premise
// could not be reached.
var ErrPremiseFailed = errors.New("premise failed")

// errReported marks failures that are already part of the joined error.
var errReported = fmt.Errorf("%w before", ErrPremiseFailed)

func NewBuilder(tr *Trace, env *Env) (*Builder, error) {
	if tr == nil {
		return nil, errors.New("no trace for new builder")
	}
	return &Builder{
		updater: updater{
			trace: tr,
			env:   env,
		},
	}, nil
}

// Project builds all leafs in prj.
func (bd *Builder) Project(prj *Project) error {
	bd.start(prj)
	defer prj.Unlock()
	start := time.Now()
	tr := bd.trace.pushProject(prj)
	tr.startProject(prj, "building")
	err := bd.buildAll(tr, prj.Leafs())
	tr.doneProject(prj, "building", time.Since(start))
	return err
}

// Goals builds all goals gs. Goals of the same project should be passed
// next to each other.
func (bd *Builder) Goals(gs ...*Goal) error {
	var errs []error
	for len(gs) > 0 {
		prj := gs[0].Project()
		n := 1
		for n < len(gs) && gs[n].Project() == prj {
			n++
		}
		if err := bd.projectGoals(prj, gs[:n]); err != nil {
			if !bd.KeepGoing {
				return err
			}
			errs = append(errs, err)
		}
		gs = gs[n:]
	}
	return errors.Join(errs...)
}

func (bd *Builder) projectGoals(prj *Project, gs []*Goal) error {
	bd.start(prj)
	defer prj.Unlock()
	start := time.Now()
	tr := bd.trace.pushProject(prj)
	tr.startProject(prj, "building")
	err := bd.buildAll(tr, gs)
	tr.doneProject(prj, "building", time.Since(start))
	return err
}

// NamedGoals builds the goals of prj with the given names. Unknown names are
// reported all at once before anything is built.
func (bd *Builder) NamedGoals(prj *Project, names ...string) error {
	var (
		gs   []*Goal
		errs []error
	)
	for _, n := range names {
		if g := prj.FindGoal(n); g == nil {
			errs = append(errs, fmt.Errorf("no goal named '%s' in project '%s'", n, prj.String()))
		} else {
			gs = append(gs, g)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return bd.Goals(gs...)
}

// start locks prj for a new build and resets the state of the last build.
// The caller must unlock prj.
func (bd *Builder) start(prj *Project) {
	bd.bid = prj.LockBuild()
	bd.stats = BuildStats{}
	bd.failed = nil
	if bd.env == nil {
		bd.env = DefaultEnv(bd.trace)
	}
}

func (bd *Builder) buildAll(tr *Trace, gs []*Goal) error {
	var errs []error
	for _, g := range gs {
		err := bd.buildGoal(tr, g)
		switch {
		case err == nil:
		case !bd.KeepGoing:
			return err
		case !errors.Is(err, errReported):
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (bd *Builder) buildGoal(tr *Trace, g *Goal) error {
	if err := tr.Ctx().Err(); err != nil {
		return err
	}
	if g.LockBuild() == 0 {
		if bd.failed[g] != nil {
			return fmt.Errorf("%s: %w", g, errReported)
		}
		return nil
	}
	defer g.Unlock()

	tr = tr.pushGoal(g)
	tr.checkGoal(g)
	if len(g.ResultOf()) == 0 {
		return nil
	}
	var (
		errs    []error
		skipped bool
	)
	for _, act := range g.ResultOf() {
		for _, pre := range act.Premises() {
			err := bd.buildGoal(tr, pre)
			switch {
			case err == nil:
			case !bd.KeepGoing:
				return err
			case errors.Is(err, errReported):
				skipped = true
			default:
				errs = append(errs, err)
			}
		}
	}
	switch {
	case len(errs) > 0:
		tr.Warn("skip `goal` after failed premises", `goal`, g.String())
		return bd.fail(g, fmt.Errorf("%s: %w: %w", g, ErrPremiseFailed, errors.Join(errs...)))
	case skipped:
		tr.Warn("skip `goal` after failed premises", `goal`, g.String())
		return bd.fail(g, fmt.Errorf("%s: %w", g, errReported))
	}
	if _, err := bd.updateGoal(tr, g); err != nil {
		return bd.fail(g, err)
	}
	return nil
}

func (bd *Builder) fail(g *Goal, err error) error {
	if bd.failed == nil {
		bd.failed = make(map[*Goal]error)
	}
	bd.failed[g] = err
	bd.stats.Failed++
	return err
}

type BuildTracer interface {
	TracerCommon

	RunAction(*Trace, *Action)
	RunImplicitAction(*Trace, *Action)

	ScheduleResTimeZero(t *Trace, a *Action, res *Goal)
	ScheduleNotPremises(t *Trace, a *Action, res *Goal)
	SchedulePreTimeZero(t *Trace, a *Action, res, pre *Goal)
	ScheduleOutdated(t *Trace, a *Action, res, pre *Goal)

	CheckGoal(t *Trace, g *Goal)
	GoalUpToDate(t *Trace, g *Goal)
	GoalNeedsActions(t *Trace, g *Goal, n int)
}
