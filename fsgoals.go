package gomk

import (
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

// FsGoals creates the goals for the entries of dir. Subdirectories become
// goals of the same type as dirTmpl, a [mkfs.DirList] or [mkfs.DirTree] whose
// Filter is kept. All other entries become [mkfs.File] goals.
func FsGoals(prj ProjectEd, dir, dirTmpl mkfs.Directory) (goals []GoalEd) {
	ls := mustRet(dir.List(prj.Project()))
	for _, e := range ls {
		st := mustRet(mkfs.Stat(mkfs.File(e), prj.Project()))
		if !st.IsDir() {
			goals = append(goals, prj.Goal(mkfs.File(e)))
			continue
		}
		switch dirTmpl := dirTmpl.(type) {
		case mkfs.DirList:
			dirTmpl.Dir = e
			goals = append(goals, prj.Goal(dirTmpl))
		case mkfs.DirTree:
			dirTmpl.Dir = e
			goals = append(goals, prj.Goal(dirTmpl))
		}
	}
	return goals
}
