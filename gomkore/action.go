package gomkore

import (
	"hash"
	"sync"
)

// An Action is something you can do in your [Project] to achieve at least one
// [Goal]. The actual implementation of the action is an [Operation]. An action
// without an operation is an "implicit" action, i.e. if all its premises are
// true, all results of the action are implicitly given.
type Action struct {
	Op          Operation
	IgnoreError bool

	prj      *Project
	premises []*Goal
	results  []*Goal

	mu        sync.Mutex
	lockedBy  uintptr
	lastBuild BuildID
}

func (a *Action) Project() *Project { return a.prj }

func (a *Action) Premises() []*Goal { return a.premises }

func (a *Action) Premise(i int) *Goal { return a.premises[i] }

func (a *Action) Results() []*Goal { return a.results }

func (a *Action) Result(i int) *Goal { return a.results[i] }

// LastBuild returns the ID of the last build that ran a.
func (a *Action) LastBuild() BuildID { return a.lastBuild }

// Run runs a's operation within the current build of a's project. If a
// was already run by the current build, it is not run again. Run returns the
// build ID a was run with before this call.
func (a *Action) Run(tr *Trace, env *Env) (BuildID, error) {
	bid := a.Project().Build()
	pre := a.lastBuild
	if pre >= bid {
		return pre, nil
	}
	a.lastBuild = bid
	if a.Op == nil {
		tr.runImplicitAction(a)
		return pre, nil
	}
	if env == nil {
		env = DefaultEnv(tr)
	}
	tr.runAction(a)
	if err := a.Op.Do(tr, a, env); err != nil {
		if a.IgnoreError {
			tr.Warn("ignore `error` of `action`", `error`, err, `action`, a.String())
			return pre, nil
		}
		return pre, err
	}
	return pre, nil
}

func (a *Action) String() string {
	switch {
	case a == nil:
		return "<nil:Action>"
	case a.Op == nil:
		return "implicit:" + a.Project().String()
	}
	return a.Op.Describe(a, nil)
}

func (a *Action) WriteHash(h hash.Hash, env *Env) (bool, error) {
	if a.Op == nil {
		return false, nil
	}
	return a.Op.WriteHash(h, a, env)
}

// tryLock returns 0 if a was locked for gid. Otherwise it returns the gid
// that currently holds the lock.
func (a *Action) tryLock(gid uintptr) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.lockedBy {
	case 0, gid:
		a.lockedBy = gid
		return 0
	}
	return a.lockedBy
}

func (a *Action) unlock() {
	a.mu.Lock()
	a.lockedBy = 0
	a.mu.Unlock()
}

type Operation interface {
	// The hints are optional
	Describe(actionHint *Action, envHint *Env) string
	Do(tr *Trace, a *Action, env *Env) error
	WriteHash(h hash.Hash, a *Action, env *Env) (bool, error)
}
