package jsdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	gomk "git.fractalqb.de/fractalqb/jsdocmk"
	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

const (
	// ModuleName is the name the tool module is registered with.
	ModuleName = "jsdoc"
	// BuilderName is the name of the step builder in the env.
	BuilderName = "JSDoc"

	KeyTemplate    = "JSDOC_TEMPLATE"
	KeyFlags       = "JSDOC_FLAGS"
	KeySuffix      = "JSDOC_SUFFIX"
	KeyTemplateOpt = "_JSDOC_TEMPLATE_OPT"
	KeyCommand     = "JSDOCCOM"
	KeyCommandStr  = "JSDOCCOMSTR"
	KeyExe         = "JSDOC"

	DefaultCommand = "${JSDOC} ${JSDOC_FLAGS} ${_JSDOC_TEMPLATE_OPT} -d ${TARGET.dir} ${SOURCES}"
	DefaultExe     = "jsdoc"
	DefaultSuffix  = ".js"
	TemplateOpt    = "-t ${JSDOC_TEMPLATE.quoted}"

	// MarkerFile is the file in the target directory that represents the
	// state of the generated documentation.
	MarkerFile = "index.html"
)

// SourcePrune skips dependencies and hidden directories when a source
// directory is expanded.
var SourcePrune mkfs.Filter = mkfs.Any{
	mkfs.NameMatch("node_modules"),
	mkfs.NameMatch(".*"),
}

var (
	ErrTargetCount  = errors.New("Only one target may be specified for the JSDoc builder")
	ErrTargetNotDir = errors.New("Target MUST be a directory")
)

func init() {
	gomk.RegisterToolModule(ModuleName, Module{})
}

// Module is the [gomk.ToolModule] of jsdoc.
type Module struct{}

var (
	_ gomk.ToolModule = Module{}
	_ gomk.Configurer = Module{}
)

func (Module) Generate(env *gomk.Env)    { Generate(env) }
func (Module) Exists(env *gomk.Env) bool { return Exists(env) }
func (Module) Configure(env *gomk.Env)   { Configure(env) }

// NewTool returns the step builder that is installed by [Generate].
func NewTool() *gomk.Tool {
	return &gomk.Tool{
		Name:        BuilderName,
		Command:     KeyCommand,
		CommandStr:  KeyCommandStr,
		SrcSuffix:   "$" + KeySuffix,
		SrcPrune:    SourcePrune,
		TargetCheck: checkTargets,
		Emitter:     Emit,
		Scanner:     Scan,
	}
}

// Generate installs the JSDoc step builder and the default tags in env. The
// defaults are set on each call. The template option is only set if env has
// a JSDOC_TEMPLATE. A JSDOC executable already set in env is kept.
func Generate(env *gomk.Env) {
	env.SetStepBuilder(BuilderName, NewTool())
	env.SetTag(KeyCommand, DefaultCommand)
	env.SetTag(KeySuffix, DefaultSuffix)
	env.SetTag(KeyFlags, "")
	if _, ok := env.Tag(KeyExe); !ok {
		env.SetTag(KeyExe, DefaultExe)
	}
	Configure(env)
}

// Configure sets the template option in env if env has a JSDOC_TEMPLATE. An
// empty JSDOC_TEMPLATE clears an inherited option. Call it when
// JSDOC_TEMPLATE was set after [Generate], e.g. in the env of a single step.
func Configure(env *gomk.Env) {
	if tmpl, ok := env.Tag(KeyTemplate); ok && tmpl != "" {
		env.SetTag(KeyTemplateOpt, TemplateOpt)
	} else if _, ok := env.Tag(KeyTemplateOpt); ok {
		env.SetTag(KeyTemplateOpt, "")
	}
}

// Exists is always true. Use [Detect] to check for the executable.
func Exists(*gomk.Env) bool { return true }

// Detect returns the path of the jsdoc executable configured in env.
func Detect(env *gomk.Env) (string, error) {
	exe, err := gomk.ExpandString(env.TagOr(KeyExe, DefaultExe), env, gomk.StepVars{})
	if err != nil {
		return "", err
	}
	if exe == "" {
		exe = DefaultExe
	}
	return exec.LookPath(exe)
}

// Scan returns the absolute paths of all files in the template directory
// from env tag JSDOC_TEMPLATE. Without template the result is empty. A
// relative template directory is relative to path, the directory jsdoc is
// run in. target is not used.
func Scan(env *gomk.Env, target gomkore.Artefact, path string) ([]string, error) {
	tmpl, ok := env.Tag(KeyTemplate)
	if !ok || tmpl == "" {
		return nil, nil
	}
	dir, err := gomk.ExpandString(tmpl, env, gomk.StepVars{})
	if err != nil {
		return nil, fmt.Errorf("template dir: %w", err)
	}
	if dir == "" {
		return nil, nil
	}
	if !filepath.IsAbs(dir) && path != "" {
		dir = filepath.Join(path, dir)
	}
	return TemplateFiles(dir)
}

// TemplateFiles returns the absolute paths of all files below root in the
// order of [filepath.WalkDir]. A missing root has no files.
func TemplateFiles(root string) (files []string, err error) {
	if root, err = filepath.Abs(root); err != nil {
		return nil, err
	}
	err = filepath.WalkDir(root, func(p string, e fs.DirEntry, err error) error {
		switch {
		case err != nil:
			if p == root && errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		case !e.IsDir():
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// Emit checks that there is exactly one target that is a directory. The
// target is replaced by the file index.html in that directory. The target
// directory is removed when the goal of any source is cleaned.
func Emit(prj *gomk.Project, env *gomk.Env, targets, sources []gomkore.Artefact) ([]gomkore.Artefact, []gomkore.Artefact, error) {
	dir, err := CheckTargets(prj, targets)
	if err != nil {
		return targets, sources, err
	}
	outDir := mkfs.DirTree{Dir: dir.Path()}
	for _, src := range sources {
		g, err := prj.Goal(src)
		if err != nil {
			return targets, sources, err
		}
		g.AlsoClean(outDir)
	}
	return []gomkore.Artefact{mkfs.Join(dir, MarkerFile)}, sources, nil
}

// CheckTargets returns the target directory if targets is exactly one
// directory.
func CheckTargets(prj *gomk.Project, targets []gomkore.Artefact) (mkfs.Directory, error) {
	if len(targets) != 1 {
		return nil, ErrTargetCount
	}
	dir, ok := targets[0].(mkfs.Directory)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotDir, targets[0].Name(prj))
	}
	return dir, nil
}

func checkTargets(prj *gomk.Project, _ *gomk.Env, targets []gomkore.Artefact) error {
	_, err := CheckTargets(prj, targets)
	return err
}
