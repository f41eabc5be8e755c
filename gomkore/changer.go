package gomkore

import (
	"errors"
	"time"
)

// Changer propagates the change of a goal to all goals that depend on it.
type Changer struct {
	updater
}

func NewChanger(tr *Trace, env *Env) (*Changer, error) {
	if tr == nil {
		return nil, errors.New("no trace for new changer")
	}
	return &Changer{
		updater: updater{
			trace: tr,
			env:   env,
		},
	}, nil
}

// Goal updates all goals that directly or indirectly depend on g.
func (chg *Changer) Goal(g *Goal) error {
	prj := g.Project()
	chg.bid = prj.LockBuild()
	chg.stats = BuildStats{}
	defer prj.Unlock()
	if chg.env == nil {
		chg.env = DefaultEnv(chg.trace)
	}
	start := time.Now()
	tr := chg.trace.pushProject(prj)
	tr.startProject(prj, "changing")
	tr.Info("check change of `goal`", `goal`, g.String())
	for _, act := range g.PremiseOf() {
		for _, res := range act.Results() {
			if err := chg.update(tr, res); err != nil {
				return err
			}
		}
	}
	tr.doneProject(prj, "changing", time.Since(start))
	return nil
}

func (chg *Changer) update(tr *Trace, g *Goal) error {
	if g.LockBuild() == 0 {
		return nil
	}
	defer g.Unlock()
	tr = tr.pushGoal(g)
	tr.checkGoal(g)
	if ok, err := chg.updateGoal(tr, g); err != nil {
		return err
	} else if ok {
		for _, act := range g.PremiseOf() {
			for _, res := range act.Results() {
				if err := chg.update(tr, res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
