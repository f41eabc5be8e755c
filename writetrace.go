package gomk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/sllm/v3"
)

// WriteTracer writes a line based trace to W. Messages of Debug, Info and
// Warn are sllm templates where the arguments are given as key/value pairs
// or [slog.Attr].
type WriteTracer struct {
	W   io.Writer
	Log gomkore.TraceLog

	mu sync.Mutex
}

var _ gomkore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() gomkore.Tracer {
	return &WriteTracer{W: os.Stderr, Log: gomkore.DefaultTraceLog}
}

// ParseLogFlag sets the log level of tr from f, one of "off", "warn", "info"
// and "debug" or their first letter. The empty string keeps the level.
func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = gomkore.TraceWarn
	case "info", "i":
		tr.Log = gomkore.TraceWarn | gomkore.TraceInfo
	case "debug", "d":
		tr.Log = gomkore.TraceWarn | gomkore.TraceInfo | gomkore.TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr *WriteTracer) Debug(t *gomkore.Trace, msg string, args ...any) {
	if tr.Log&gomkore.TraceDebug != 0 {
		tr.msg(t, "DEBUG", msg, args)
	}
}

func (tr *WriteTracer) Info(t *gomkore.Trace, msg string, args ...any) {
	if tr.logActions() {
		tr.msg(t, "INFO ", msg, args)
	}
}

func (tr *WriteTracer) Warn(t *gomkore.Trace, msg string, args ...any) {
	if tr.logGoals() {
		tr.msg(t, "WARN ", msg, args)
	}
}

func (tr *WriteTracer) StartProject(t *gomkore.Trace, p *gomkore.Project, activity string) {
	if tr.logGoals() {
		tr.line(t, "{ %s project '%s' in %s", activity, p, p.Dir)
	}
}

func (tr *WriteTracer) DoneProject(t *gomkore.Trace, p *gomkore.Project, activity string, dt time.Duration) {
	if tr.logGoals() {
		tr.line(t, "} %s project '%s' took %s", activity, p, dt)
	}
}

func (tr *WriteTracer) RunAction(t *gomkore.Trace, a *gomkore.Action) {
	if tr.logActions() {
		tr.line(t, "  run action (%s)", a)
	}
}

func (tr *WriteTracer) RunImplicitAction(t *gomkore.Trace, _ *gomkore.Action) {
	if tr.Log&gomkore.TraceDebug != 0 {
		tr.line(t, "  implicit action")
	}
}

func (tr *WriteTracer) ScheduleResTimeZero(t *gomkore.Trace, a *gomkore.Action, res *gomkore.Goal) {
	if tr.logActions() {
		tr.line(t, "  schedule (%s) for result %s without state time", a, res)
	}
}

func (tr *WriteTracer) ScheduleNotPremises(t *gomkore.Trace, a *gomkore.Action, res *gomkore.Goal) {
	if tr.logActions() {
		tr.line(t, "  schedule (%s) without premise for result %s", a, res)
	}
}

func (tr *WriteTracer) SchedulePreTimeZero(t *gomkore.Trace, a *gomkore.Action, res, pre *gomkore.Goal) {
	if tr.logActions() {
		tr.line(t, "  schedule (%s) for result %s, premise %s has no state time", a, res, pre)
	}
}

func (tr *WriteTracer) ScheduleOutdated(t *gomkore.Trace, a *gomkore.Action, res, pre *gomkore.Goal) {
	if tr.logActions() {
		tr.line(t, "  schedule (%s) for result %s, premise %s is newer", a, res, pre)
	}
}

func (tr *WriteTracer) CheckGoal(t *gomkore.Trace, g *gomkore.Goal) {
	if tr.Log&gomkore.TraceDebug != 0 {
		tr.line(t, "? %s %s", g, t.Path())
	}
}

func (tr *WriteTracer) GoalUpToDate(t *gomkore.Trace, g *gomkore.Goal) {
	if tr.logActions() {
		tr.line(t, ". %s is up-to-date", g)
	}
}

func (tr *WriteTracer) GoalNeedsActions(t *gomkore.Trace, g *gomkore.Goal, n int) {
	if tr.logActions() {
		tr.line(t, "! %s needs %d actions", g, n)
	}
}

func (tr *WriteTracer) RemoveArtefact(t *gomkore.Trace, g *gomkore.Goal, atf gomkore.RemovableArtefact) {
	if tr.logGoals() {
		tr.line(t, "- remove %s of goal %s", atf.Name(g.Project()), g)
	}
}

func (tr *WriteTracer) logGoals() bool {
	return tr.Log&(gomkore.TraceWarn|gomkore.TraceInfo|gomkore.TraceDebug) != 0
}

func (tr *WriteTracer) logActions() bool {
	return tr.Log&(gomkore.TraceInfo|gomkore.TraceDebug) != 0
}

func (tr *WriteTracer) line(t *gomkore.Trace, format string, args ...any) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	fmt.Fprintf(tr.W, "%d@%s\t", t.Build(), t.TopTag())
	fmt.Fprintf(tr.W, format, args...)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) msg(t *gomkore.Trace, level, msg string, args []any) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	fmt.Fprintf(tr.W, "%d@%s\t  %s ", t.Build(), t.TopTag(), level)
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", k)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value.Any()), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
