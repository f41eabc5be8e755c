// Command mkjsdoc builds JavaScript API documentation with jsdoc as
// described in a YAML build description, see package mkconf.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	gomk "git.fractalqb.de/fractalqb/jsdocmk"
	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/jsdoc"
	"git.fractalqb.de/fractalqb/jsdocmk/mkconf"
)

var CLI struct {
	File    string   `short:"f" help:"Build description file, relative to the project directory" default:"mkjsdoc.yaml"`
	EnvFile []string `short:"e" help:"Additional dotenv files with env tags"`
	Trace   string   `short:"t" help:"Trace level: off, warn, info or debug" default:"warn" enum:"off,warn,info,debug,w,i,d"`
	Dir     string   `short:"C" help:"Project directory" type:"existingdir"`

	Build struct {
		Goals     []string `arg:"" optional:"" help:"Goals to build, all if none is given"`
		KeepGoing bool     `short:"k" help:"Continue with other goals when a goal fails"`
	} `cmd:"" default:"withargs" help:"Build the documentation"`

	Clean struct {
		DryRun bool `short:"n" help:"Only show what would be removed"`
	} `cmd:"" help:"Remove the generated documentation"`

	Dot struct {
		RankDir string `help:"Graphviz rank direction" default:"LR"`
	} `cmd:"" help:"Write the project as Graphviz digraph to stdout"`

	Watch struct{} `cmd:"" help:"Build and rebuild whenever sources or templates change"`
}

type session struct {
	tracer *gomk.WriteTracer
	trace  *gomk.Trace
	base   *gomk.Env
	env    *gomk.Env
	prj    *gomk.Project
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("mkjsdoc"),
		kong.Description("Build API documentation with jsdoc"),
	)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ses, err := setup(ctx)
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	switch kctx.Command() {
	case "build", "build <goals>":
		err = ses.build(CLI.Build.Goals)
	case "clean":
		err = gomk.Clean(ses.prj, CLI.Clean.DryRun, ses.trace)
	case "dot":
		dia := gomk.Diagrammer{RankDir: CLI.Dot.RankDir}
		err = dia.WriteDot(os.Stdout, ses.prj)
	case "watch":
		err = ses.watch(ctx)
	default:
		err = fmt.Errorf("unknown command '%s'", kctx.Command())
	}
	if err != nil {
		slog.Error("Failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*session, error) {
	if CLI.Dir != "" {
		if err := os.Chdir(CLI.Dir); err != nil {
			return nil, err
		}
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	ses := &session{tracer: &gomk.WriteTracer{W: os.Stderr}}
	if err := ses.tracer.ParseLogFlag(CLI.Trace); err != nil {
		return nil, err
	}
	ses.trace = gomkore.NewTrace(ctx, ses.tracer)
	ses.base = gomk.DefaultEnv(ses.trace)
	if err := ses.declare(dir); err != nil {
		return nil, err
	}
	if _, ok := ses.env.StepBuilder(jsdoc.BuilderName); ok {
		if _, err := jsdoc.Detect(ses.env); err != nil {
			ses.trace.Warn("jsdoc not found: `error`", `error`, err)
		}
	}
	return ses, nil
}

// declare reads the build description and declares a fresh project with a
// fresh env.
func (ses *session) declare(dir string) error {
	cfg, err := mkconf.Load(CLI.File)
	if err != nil {
		return err
	}
	env := ses.base.Sub()
	if err := cfg.Apply(env, filepath.Dir(CLI.File), CLI.EnvFile...); err != nil {
		return err
	}
	prj := gomk.NewProject(dir)
	if err := cfg.Declare(prj, env); err != nil {
		return err
	}
	ses.prj, ses.env = prj, env
	return nil
}

func (ses *session) build(goals []string) error {
	b := gomk.NewBuilder(ses.trace, ses.env)
	b.KeepGoing = CLI.Build.KeepGoing
	var err error
	if len(goals) == 0 {
		err = b.Project(ses.prj)
	} else {
		err = b.NamedGoals(ses.prj, goals...)
	}
	st := b.Stats()
	slog.Info("Build done",
		"actions", st.Actions,
		"up-to-date", st.UpToDate,
		"failed", st.Failed,
	)
	return err
}

func (ses *session) watch(ctx context.Context) error {
	if err := ses.build(nil); err != nil {
		slog.Warn("Initial build failed", "error", err)
	}
	srcs, outs, err := gomk.WatchDirs(ses.prj)
	if err != nil {
		return err
	}
	w := gomk.Watcher{
		Dirs:   srcs,
		Ignore: outs,
		Trace:  ses.trace,
		Rebuild: func(context.Context) error {
			if err := ses.declare(ses.prj.Dir); err != nil {
				return err
			}
			return ses.build(nil)
		},
		Refresh: func() ([]string, []string, error) {
			return gomk.WatchDirs(ses.prj)
		},
	}
	slog.Info("Watching", "dirs", w.Dirs)
	return w.Run(ctx)
}
