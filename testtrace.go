package gomk

import (
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// TestTracer logs all trace events to a test's log.
type TestTracer struct{ TB testing.TB }

var _ gomkore.Tracer = TestTracer{}

func (tr TestTracer) Debug(t *gomkore.Trace, msg string, args ...any) {
	tr.TB.Log("gomk-DEBUG:", t, msg, args)
}

func (tr TestTracer) Info(t *gomkore.Trace, msg string, args ...any) {
	tr.TB.Log("gomk-INFO:", t, msg, args)
}

func (tr TestTracer) Warn(t *gomkore.Trace, msg string, args ...any) {
	tr.TB.Log("gomk-WARN:", t, msg, args)
}

func (tr TestTracer) StartProject(t *gomkore.Trace, p *gomkore.Project, activity string) {
	tr.TB.Logf("gomk-StartProject: %s %s", p, activity)
}

func (tr TestTracer) DoneProject(t *gomkore.Trace, p *gomkore.Project, activity string, dt time.Duration) {
	tr.TB.Logf("gomk-DoneProject: %s %s %s", p, activity, dt)
}

func (tr TestTracer) RunAction(_ *gomkore.Trace, a *gomkore.Action) {
	tr.TB.Logf("gomk-RunAction: %s", a)
}

func (tr TestTracer) RunImplicitAction(_ *gomkore.Trace, a *gomkore.Action) {
	tr.TB.Logf("gomk-RunImplicitAction: %s", a)
}

func (tr TestTracer) ScheduleResTimeZero(_ *gomkore.Trace, a *gomkore.Action, res *gomkore.Goal) {
	tr.TB.Logf("gomk-ScheduleResTimeZero: %s:> %s", a, res)
}

func (tr TestTracer) ScheduleNotPremises(_ *gomkore.Trace, a *gomkore.Action, res *gomkore.Goal) {
	tr.TB.Logf("gomk-ScheduleNotPremises: %s:> %s", a, res)
}

func (tr TestTracer) SchedulePreTimeZero(_ *gomkore.Trace, a *gomkore.Action, res, pre *gomkore.Goal) {
	tr.TB.Logf("gomk-SchedulePreTimeZero: %s: %s > %s", a, pre, res)
}

func (tr TestTracer) ScheduleOutdated(_ *gomkore.Trace, a *gomkore.Action, res, pre *gomkore.Goal) {
	tr.TB.Logf("gomk-ScheduleOutdated: %s: %s > %s", a, pre, res)
}

func (tr TestTracer) CheckGoal(_ *gomkore.Trace, g *gomkore.Goal) {
	tr.TB.Logf("gomk-CheckGoal: %s", g)
}

func (tr TestTracer) GoalUpToDate(_ *gomkore.Trace, g *gomkore.Goal) {
	tr.TB.Logf("gomk-GoalUpToDate: %s", g)
}

func (tr TestTracer) GoalNeedsActions(_ *gomkore.Trace, g *gomkore.Goal, n int) {
	tr.TB.Logf("gomk-GoalNeedsActions: %s %d", g, n)
}

func (tr TestTracer) RemoveArtefact(_ *gomkore.Trace, g *gomkore.Goal, atf gomkore.RemovableArtefact) {
	tr.TB.Logf("gomk-RemoveArtefact: %s of %s", atf.Name(g.Project()), g)
}
