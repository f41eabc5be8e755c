package gomkore

import (
	"fmt"
	"unsafe"
)

type updater struct {
	trace *Trace
	env   *Env
	bid   BuildID // => updater must not be used concurrently
	stats BuildStats
}

// BuildStats counts what happened during the last run of a [Builder] or
// [Changer].
type BuildStats struct {
	// Actions is the number of actions run.
	Actions int
	// UpToDate is the number of goals with actions that needed no update.
	UpToDate int
	// Failed is the number of goals that could not be reached.
	Failed int
}

// Stats returns the counters of the last run.
func (up *updater) Stats() BuildStats { return up.stats }

func (up *updater) Trace() *Trace { return up.trace }

func (up *updater) Env() *Env { return up.env }

// updateGoal runs the actions of g that are needed to reach g. It returns
// true if any action was scheduled.
func (up *updater) updateGoal(tr *Trace, g *Goal) (bool, error) {
	if len(g.ResultOf()) == 0 {
		return false, nil
	}
	gid := uintptr(unsafe.Pointer(g))
	g.LockPreActions(gid)
	defer g.UnlockPreActions()

	chgs, err := g.CheckPreTimes(tr)
	if err != nil {
		return false, err
	}
	if len(chgs) == 0 {
		tr.goalUpToDate(g)
		up.stats.UpToDate++
		return false, nil
	}
	tr.goalNeedsActions(g, len(chgs))

	switch g.UpdateMode.Actions() {
	case UpdAllActions:
		err = up.runActions(tr, g, nil)
	case UpdSomeActions:
		err = up.runActions(tr, g, chgs)
	case UpdAnyAction:
		err = up.updateAny(tr, g, chgs)
	case UpdOneAction:
		if l := len(chgs); l > 1 {
			err = fmt.Errorf("%d change actions for update mode One in goal %s",
				l,
				g.String(),
			)
		} else {
			err = up.runActions(tr, g, chgs)
		}
	default:
		err = fmt.Errorf("illegal update mode actions: %d", g.UpdateMode.Actions())
	}
	return true, err
}

// runActions runs the actions of g selected by idxs. With idxs == nil all
// actions are run.
func (up *updater) runActions(tr *Trace, g *Goal, idxs []int) error {
	run := func(act *Action) error {
		preBID, err := act.Run(tr.pushAction(act), up.env)
		if act.Op != nil {
			up.stats.Actions++
		}
		switch {
		case err != nil:
			return err
		case preBID > up.bid:
			return fmt.Errorf("action %s already run by younger build %d",
				act,
				preBID,
			)
		}
		return nil
	}
	if idxs == nil {
		for _, act := range g.ResultOf() {
			if err := run(act); err != nil {
				return err
			}
		}
		return nil
	}
	for _, i := range idxs {
		if err := run(g.PreAction(i)); err != nil {
			return err
		}
	}
	return nil
}

func (up *updater) updateAny(tr *Trace, g *Goal, chgs []int) error {
	for i, act := range g.ResultOf() {
		preBID := act.LastBuild()
		switch {
		case preBID > up.bid:
			return fmt.Errorf("action %s already run by younger build %d",
				act.String(),
				preBID,
			)
		case preBID == up.bid:
			tr.Debug("`goal` already reached by `action` `index`",
				`goal`, g.String(),
				`action`, act.String(),
				`index`, i,
			)
			return nil
		}
	}
	return up.runActions(tr, g, chgs[:1])
}
