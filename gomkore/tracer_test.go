package gomkore

import (
	"context"
	"testing"
	"time"
)

type testTracer struct{ t *testing.T }

func newTestTrace(t *testing.T) *Trace {
	return NewTrace(context.Background(), testTracer{t})
}

func (tr testTracer) Debug(_ *Trace, msg string, args ...any) { tr.t.Log("DEBUG", msg, args) }
func (tr testTracer) Info(_ *Trace, msg string, args ...any)  { tr.t.Log("INFO", msg, args) }
func (tr testTracer) Warn(_ *Trace, msg string, args ...any)  { tr.t.Log("WARN", msg, args) }

func (tr testTracer) StartProject(_ *Trace, p *Project, activity string) {
	tr.t.Logf("start %s %s", activity, p)
}

func (tr testTracer) DoneProject(_ *Trace, p *Project, activity string, dt time.Duration) {
	tr.t.Logf("done %s %s %s", activity, p, dt)
}

func (tr testTracer) RunAction(_ *Trace, a *Action)         { tr.t.Logf("run %s", a) }
func (tr testTracer) RunImplicitAction(_ *Trace, a *Action) { tr.t.Logf("implicit %s", a) }

func (tr testTracer) ScheduleResTimeZero(_ *Trace, a *Action, res *Goal) {
	tr.t.Logf("schedule %s: %s has no time", a, res)
}

func (tr testTracer) ScheduleNotPremises(_ *Trace, a *Action, res *Goal) {
	tr.t.Logf("schedule %s: %s without premises", a, res)
}

func (tr testTracer) SchedulePreTimeZero(_ *Trace, a *Action, res, pre *Goal) {
	tr.t.Logf("schedule %s: %s premise %s has no time", a, res, pre)
}

func (tr testTracer) ScheduleOutdated(_ *Trace, a *Action, res, pre *Goal) {
	tr.t.Logf("schedule %s: %s older than %s", a, res, pre)
}

func (tr testTracer) CheckGoal(_ *Trace, g *Goal)               { tr.t.Logf("check %s", g) }
func (tr testTracer) GoalUpToDate(_ *Trace, g *Goal)            { tr.t.Logf("up-to-date %s", g) }
func (tr testTracer) GoalNeedsActions(_ *Trace, g *Goal, n int) { tr.t.Logf("%s needs %d", g, n) }

func (tr testTracer) RemoveArtefact(_ *Trace, g *Goal, atf RemovableArtefact) {
	tr.t.Logf("remove %s of %s", atf.Name(g.Project()), g)
}

// memAtf is an in-memory artefact with a settable state time.
type memAtf struct {
	name    string
	at      time.Time
	removed bool
}

func (m *memAtf) Name(*Project) string       { return m.name }
func (m *memAtf) StateAt(*Project) time.Time { return m.at }

func (m *memAtf) Exists(*Project) (bool, error) { return !m.removed && !m.at.IsZero(), nil }

func (m *memAtf) Remove(*Project) error {
	m.removed = true
	m.at = time.Time{}
	return nil
}
