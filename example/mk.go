// This is an example project that builds API documentation with jsdoc.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	gomk "git.fractalqb.de/fractalqb/jsdocmk"
	"git.fractalqb.de/fractalqb/jsdocmk/jsdoc"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

var (
	tracer = &gomk.WriteTracer{W: os.Stderr}

	clean, dryrun bool
	writeDot      bool
	watch         bool
	template      string
)

func flags() {
	flag.BoolVar(&writeDot, "dot", writeDot, "Write graphviz file to stdout and exit")
	flag.BoolVar(&clean, "clean", clean, "Clean project")
	flag.BoolVar(&dryrun, "n", dryrun, "Dryrun")
	flag.BoolVar(&watch, "watch", watch, "Rebuild when sources change")
	flag.StringVar(&template, "template", template, "Use jsdoc template `dir`")
	fTrace := flag.String("trace", "warn", "Set trace level")
	flag.Parse()

	if err := tracer.ParseLogFlag(*fTrace); err != nil {
		log.Fatal(err)
	}
}

func declare(tr *gomk.Trace) (*gomk.Project, error) {
	env := gomk.DefaultEnv(tr)
	if template != "" {
		env.SetTag(jsdoc.KeyTemplate, template)
	}
	if err := gomk.LoadTools(env, jsdoc.ModuleName); err != nil {
		return nil, err
	}

	// The project in current working dir
	prj := gomk.NewProject("")

	// Start editing project, recovering panics to errors
	err := gomk.Edit(prj, func(prj gomk.ProjectEd) {
		api := prj.Step(env, jsdoc.BuilderName,
			[]gomk.Artefact{mkfs.DirTree{Dir: "dist/doc/api"}},
			[]gomk.Artefact{mkfs.DirTree{Dir: "src"}},
		)

		// Internal docs also cover private members
		intEnv := env.Sub()
		intEnv.SetTag(jsdoc.KeyFlags, "--private")
		internal := prj.Step(intEnv, jsdoc.BuilderName,
			[]gomk.Artefact{mkfs.DirTree{Dir: "dist/doc/internal"}},
			[]gomk.Artefact{mkfs.DirTree{Dir: "src"}, mkfs.DirTree{Dir: "lib"}},
		)

		goalDoc := prj.Goal(gomk.Abstract("doc")).
			ImpliedBy(append(api.Results(), internal.Results()...)...)
		goalDoc.SetUpdateMode(gomk.UpdAllActions | gomk.UpdUnordered)
	})
	return prj, err
}

func build(tr *gomk.Trace, prj *gomk.Project) error {
	bd := gomk.NewBuilder(tr, nil)
	if flag.NArg() == 0 {
		return bd.Project(prj)
	}
	return bd.NamedGoals(prj, flag.Args()...)
}

func main() {
	flags()
	tr := gomk.NewTrace(context.Background(), tracer)

	prj, err := declare(tr)
	if err != nil {
		log.Fatal("editing project:", err)
	}

	if clean {
		if err := gomk.Clean(prj, dryrun, tr); err != nil {
			log.Fatal(err)
		}
		return
	}

	if writeDot {
		dia := gomk.Diagrammer{RankDir: "LR"}
		if err := dia.WriteDot(os.Stdout, prj); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	if err := build(tr, prj); err != nil {
		slog.Error(err.Error())
		if !watch {
			os.Exit(1)
		}
	}
	if !watch {
		return
	}

	srcs, outs, err := gomk.WatchDirs(prj)
	if err != nil {
		log.Fatal(err)
	}
	w := gomk.Watcher{
		Dirs:   srcs,
		Ignore: outs,
		Trace:  tr,
		Rebuild: func(ctx context.Context) error {
			if prj, err = declare(tr); err != nil {
				return err
			}
			return build(tr, prj)
		},
		Refresh: func() ([]string, []string, error) {
			return gomk.WatchDirs(prj)
		},
	}
	if err := w.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
