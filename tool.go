package gomk

import (
	"errors"
	"fmt"
	"hash"
	"strings"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

// Emitter rewrites the targets and sources of a step before the step's goals
// are created. An error rejects the step.
type Emitter func(prj *Project, env *Env, targets, sources []Artefact) ([]Artefact, []Artefact, error)

// Scanner returns the paths of files a target implicitly depends on. path is
// the absolute directory the step's command is run in.
type Scanner func(env *Env, target Artefact, path string) ([]string, error)

// Tool is a [gomkore.StepBuilder] that runs a command from a template in an
// env tag. Register tools with [gomkore.Env.SetStepBuilder], usually from the
// Generate function of a [ToolModule].
type Tool struct {
	// Name is used to describe the actions of the tool.
	Name string
	// Command is the tag key of the command template, see [Expand].
	Command string
	// CommandStr is the tag key of the line printed instead of the command
	// line when the step runs. Ignored if empty or the tag is not set.
	CommandStr string
	// SrcSuffix is the suffix of source files. A value starting with '$'
	// is expanded from env tags when a step is declared.
	SrcSuffix string
	// SrcPrune selects directories that are skipped when directory
	// sources are expanded. A Prune set in a DirTree source takes
	// precedence.
	SrcPrune mkfs.Filter

	// TargetCheck validates the targets before anything else is done for a
	// step.
	TargetCheck func(prj *Project, env *Env, targets []Artefact) error
	Emitter     Emitter
	Scanner     Scanner
}

var _ gomkore.StepBuilder = (*Tool)(nil)

// Declare declares a step that reaches the targets from the sources in prj:
//
//   - Directory sources are replaced by the files below them that have the
//     source suffix, skipping directories selected by SrcPrune. File
//     sources without extension get the source suffix.
//   - The Emitter, if any, may reject or rewrite targets and sources.
//   - The files returned by the Scanner for each target become additional
//     premises of the step.
//
// Declare returns the action of the step. Its operation is a [CommandOp].
func (t *Tool) Declare(prj *Project, env *Env, targets, sources []Artefact) (*Action, error) {
	if t.TargetCheck != nil {
		if err := t.TargetCheck(prj, env, targets); err != nil {
			return nil, err
		}
	}
	sfx, err := t.srcSuffix(env)
	if err != nil {
		return nil, err
	}
	if sources, err = t.expandSources(prj, sfx, sources); err != nil {
		return nil, err
	}
	if t.Emitter != nil {
		if targets, sources, err = t.Emitter(prj, env, targets, sources); err != nil {
			return nil, err
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s: step without targets", t.name())
	}
	results := make([]*Goal, 0, len(targets))
	for _, atf := range targets {
		g, err := prj.Goal(atf)
		if err != nil {
			return nil, err
		}
		g.Removable = true
		results = append(results, g)
	}
	premises := make([]*Goal, 0, len(sources))
	for _, atf := range sources {
		g, err := prj.Goal(atf)
		if err != nil {
			return nil, err
		}
		premises = append(premises, g)
	}
	nsrc := len(premises)
	if t.Scanner != nil {
		cwd, err := prj.AbsPath("")
		if err != nil {
			return nil, err
		}
		for _, atf := range targets {
			deps, err := t.Scanner(env, atf, cwd)
			if err != nil {
				return nil, fmt.Errorf("%s: scan %s: %w", t.name(), atf.Name(prj), err)
			}
			for _, dep := range deps {
				g, err := prj.Goal(mkfs.File(dep))
				if err != nil {
					return nil, err
				}
				premises = append(premises, g)
			}
		}
	}
	return prj.NewAction(premises, results, &CommandOp{
		Name:       t.name(),
		Command:    t.Command,
		CommandStr: t.CommandStr,
		Sources:    nsrc,
		Env:        env,
	})
}

func (t *Tool) name() string {
	if t.Name == "" {
		return t.Command
	}
	return t.Name
}

func (t *Tool) srcSuffix(env *Env) (string, error) {
	if !strings.HasPrefix(t.SrcSuffix, "$") {
		return t.SrcSuffix, nil
	}
	return ExpandString(t.SrcSuffix, env, StepVars{})
}

func (t *Tool) expandSources(prj *Project, sfx string, sources []Artefact) ([]Artefact, error) {
	res := make([]Artefact, 0, len(sources))
	for _, src := range sources {
		switch src := src.(type) {
		case mkfs.Directory:
			ls, err := t.sourceFiles(prj, src, sfx)
			if err != nil {
				return nil, err
			}
			for _, f := range ls {
				res = append(res, mkfs.File(f))
			}
		case mkfs.File:
			if sfx != "" && src.Ext() == "" {
				src = mkfs.File(src.Path() + sfx)
			}
			res = append(res, src)
		default:
			res = append(res, src)
		}
	}
	return res, nil
}

func (t *Tool) sourceFiles(prj *Project, dir mkfs.Directory, sfx string) ([]string, error) {
	var f mkfs.Filter = mkfs.IsDir(false)
	if sfx != "" {
		f = mkfs.All{f, mkfs.Suffix{sfx}}
	}
	switch dir := dir.(type) {
	case mkfs.DirTree:
		dir.Filter = f
		if dir.Prune == nil {
			dir.Prune = t.SrcPrune
		}
		return dir.List(prj)
	case mkfs.DirList:
		dir.Filter = f
		return dir.List(prj)
	}
	return nil, fmt.Errorf("unsupported source directory type %T", dir)
}

// CommandOp runs the command expanded from the template in tag Command. The
// first Sources premises of the action are the explicit sources of the
// command. If Env is set, its tags are used instead of those of the env the
// action is run with, i.e. a step keeps the configuration it was declared
// with.
type CommandOp struct {
	Name       string
	Command    string
	CommandStr string
	Sources    int
	Env        *Env
}

var _ gomkore.Operation = (*CommandOp)(nil)

var ErrNoCommand = errors.New("no command")

func (op *CommandOp) Describe(a *Action, env *Env) string {
	if a == nil || len(a.Results()) == 0 {
		return op.Name
	}
	var sb strings.Builder
	sb.WriteString(op.Name)
	sb.WriteByte(':')
	for i, r := range a.Results() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r.Name())
	}
	return sb.String()
}

// Line returns the expanded command line of op for action a.
func (op *CommandOp) Line(a *Action, env *Env) ([]string, error) {
	env = op.env(env)
	tmpl, ok := env.Tag(op.Command)
	if !ok || strings.TrimSpace(tmpl) == "" {
		return nil, fmt.Errorf("%w in tag '%s'", ErrNoCommand, op.Command)
	}
	args, err := Expand(tmpl, env, Vars(a, op.Sources))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", op.Command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: '%s' expands to nothing", ErrNoCommand, op.Command)
	}
	return args, nil
}

func (op *CommandOp) Do(tr *Trace, a *Action, env *Env) error {
	env = op.env(env)
	args, err := op.Line(a, env)
	if err != nil {
		return err
	}
	echo := ""
	if op.CommandStr != "" {
		if s, ok := env.Tag(op.CommandStr); ok && s != "" {
			if echo, err = ExpandString(s, env, Vars(a, op.Sources)); err != nil {
				return err
			}
		}
	}
	if echo == "" {
		echo = strings.Join(args, " ")
	}
	if env.Out != nil {
		fmt.Fprintln(env.Out, echo)
	}
	cmd := CmdOp{
		Exe:  args[0],
		Args: args[1:],
		Desc: op.Describe(a, env),
	}
	return cmd.Do(tr, a, env)
}

func (op *CommandOp) env(run *Env) *Env {
	switch {
	case op.Env == nil:
		return run
	case run == nil || run == op.Env:
		return op.Env
	}
	env := op.Env.Sub()
	env.In, env.Out, env.Err = run.In, run.Out, run.Err
	return env
}

// WriteHash writes the expanded command line to h.
func (op *CommandOp) WriteHash(h hash.Hash, a *Action, env *Env) (bool, error) {
	if env = op.env(env); env == nil {
		return false, nil
	}
	args, err := op.Line(a, env)
	if err != nil {
		return false, err
	}
	for _, arg := range args {
		fmt.Fprintln(h, arg)
	}
	return true, nil
}

// Step looks up the step builder name in env and declares a step with it.
func (ed ProjectEd) Step(env *Env, name string, targets, sources []Artefact) ActionEd {
	b, ok := env.StepBuilder(name)
	if !ok {
		panic(fmt.Errorf("no step builder '%s'", name))
	}
	a, err := b.Declare(ed.p, env, targets, sources)
	if err != nil {
		panic(fmt.Errorf("%s step: %w", name, err))
	}
	return ActionEd{a}
}
