// Package gomk declares build projects in Go and runs them. A project is a
// graph of goals, i.e. artefacts like files or directories, that are linked
// by actions. Actions run operations, e.g. external commands, to reach their
// result goals from their premises.
//
// Besides the editing API ([Edit], [ProjectEd], [GoalEd]) gomk has tools. A
// [Tool] is a step builder that is configured through the tags of an [Env]:
// the command line of the step is a template that is expanded when the step
// runs, see [Expand]. Tools are registered in an Env by a [ToolModule]. Tool
// modules announce themselves with [RegisterToolModule] and are installed in
// an Env with [LoadTools]:
//
//	env := gomk.DefaultEnv(tr)
//	if err := gomk.LoadTools(env, "jsdoc"); err != nil {
//		return err
//	}
//	err := gomk.Edit(prj, func(prj gomk.ProjectEd) {
//		prj.Step(env, "JSDoc",
//			[]gomkore.Artefact{mkfs.DirTree{Dir: "doc/api"}},
//			[]gomkore.Artefact{mkfs.DirTree{Dir: "src"}},
//		)
//	})
//
// Once declared, a project is brought up to date with [NewBuilder] and
// cleaned with [Clean]. The [Watcher] rebuilds a project whenever files in
// the watched directories change.
package gomk
