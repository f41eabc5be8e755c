package gomkore

import (
	"time"
)

// Clean removes the artefacts of all removable goals in prj that are the
// result of an action. Additionally all artefacts associated with any goal by
// [Goal.AlsoClean] are removed. With dryrun set, the artefacts are only
// traced.
func Clean(prj *Project, dryrun bool, tr *Trace) error {
	prj.LockBuild()
	defer prj.Unlock()
	start := time.Now()
	tr = tr.pushProject(prj)
	tr.startProject(prj, "cleaning")
	for _, g := range prj.Goals(nil) {
		cleanGoal(tr, g, dryrun)
	}
	tr.doneProject(prj, "cleaning", time.Since(start))
	return nil
}

// CleanGoals is like [Clean] but is restricted to the goals gs, which must
// belong to the same project.
func CleanGoals(dryrun bool, tr *Trace, gs ...*Goal) error {
	if len(gs) == 0 {
		return nil
	}
	prj := gs[0].Project()
	prj.LockBuild()
	defer prj.Unlock()
	start := time.Now()
	tr = tr.pushProject(prj)
	tr.startProject(prj, "cleaning")
	for _, g := range gs {
		cleanGoal(tr, g, dryrun)
	}
	tr.doneProject(prj, "cleaning", time.Since(start))
	return nil
}

func cleanGoal(tr *Trace, g *Goal, dryrun bool) {
	str := tr.pushGoal(g)
	if f, ok := g.Artefact.(RemovableArtefact); ok && g.Removable && len(g.ResultOf()) > 0 {
		removeArtefact(str, g, f, dryrun)
	}
	for _, f := range g.CleanAlso() {
		removeArtefact(str, g, f, dryrun)
	}
}

func removeArtefact(tr *Trace, g *Goal, f RemovableArtefact, dryrun bool) {
	prj := g.Project()
	if ok, err := f.Exists(prj); err != nil {
		tr.Warn(err.Error())
		return
	} else if !ok {
		return
	}
	tr.removeArtefact(g, f)
	if !dryrun {
		if err := f.Remove(prj); err != nil {
			tr.Warn(err.Error())
		}
	}
}

type CleanTracer interface {
	TracerCommon

	RemoveArtefact(t *Trace, g *Goal, atf RemovableArtefact)
}
