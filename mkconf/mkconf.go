// Package mkconf reads build descriptions from YAML files. A build
// description names the tool modules to load, sets env tags and declares the
// steps of a project:
//
//	tools: [jsdoc]
//	env_files: [.env]
//	env:
//	  JSDOC_TEMPLATE: doc/template
//	steps:
//	  - name: apidoc
//	    builder: JSDoc
//	    target: doc/api
//	    sources: [src]
//	    env:
//	      JSDOC_FLAGS: --private
//
// Targets are directories unless target_file is set. Sources that are
// directories in the project become [mkfs.DirTree] artefacts, all other
// sources are files.
package mkconf

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	gomk "git.fractalqb.de/fractalqb/jsdocmk"
	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

// DefaultFile is the name of the build description looked up by the CLI.
const DefaultFile = "mkjsdoc.yaml"

type Config struct {
	Tools    []string          `yaml:"tools"`
	EnvFiles []string          `yaml:"env_files"`
	Env      map[string]string `yaml:"env"`
	Steps    []Step            `yaml:"steps"`
}

type Step struct {
	// Name is an optional abstract goal that is reached by the step.
	Name       string            `yaml:"name"`
	Builder    string            `yaml:"builder"`
	Target     string            `yaml:"target"`
	TargetFile bool              `yaml:"target_file"`
	Sources    []string          `yaml:"sources"`
	Env        map[string]string `yaml:"env"`
}

func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parse build description: %w", err)
	}
	return &cfg, cfg.Validate()
}

func Load(file string) (*Config, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	cfg, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, nil
}

// Validate checks that each step has a builder and a target and that step
// names are unique.
func (cfg *Config) Validate() error {
	var errs []error
	names := make(map[string]int)
	for i, s := range cfg.Steps {
		if s.Builder == "" {
			errs = append(errs, fmt.Errorf("step %d: no builder", i+1))
		}
		if s.Target == "" {
			errs = append(errs, fmt.Errorf("step %d: no target", i+1))
		}
		if s.Name == "" {
			continue
		}
		if j, ok := names[s.Name]; ok {
			errs = append(errs, fmt.Errorf("step %d: name '%s' already used by step %d", i+1, s.Name, j))
		}
		names[s.Name] = i + 1
	}
	return errors.Join(errs...)
}

// Apply sets up env: It loads the tools, then sets the tags from the env
// files and finally the tags of cfg.Env. So the env files override the
// defaults of the tools and cfg.Env overrides the env files. Relative env
// files are relative to dir. At last the tools are configured with the new
// tags.
func (cfg *Config) Apply(env *gomk.Env, dir string, envFiles ...string) error {
	if err := gomk.LoadTools(env, cfg.Tools...); err != nil {
		return err
	}
	files := slices.Concat(cfg.EnvFiles, envFiles)
	for i, f := range files {
		if !filepath.IsAbs(f) {
			files[i] = filepath.Join(dir, f)
		}
	}
	tags, err := ReadEnvFiles(files...)
	if err != nil {
		return err
	}
	maps.Copy(tags, cfg.Env)
	env.SetTagsMap(tags)
	return gomk.ConfigureTools(env, cfg.Tools...)
}

// ReadEnvFiles reads the tags from dotenv files. Earlier files take
// precedence over later ones.
func ReadEnvFiles(files ...string) (map[string]string, error) {
	res := make(map[string]string)
	for _, f := range files {
		tags, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
		for k, v := range tags {
			if _, ok := res[k]; !ok {
				res[k] = v
			}
		}
	}
	return res, nil
}

// LoadEnvFiles reads the dotenv files and sets the tags that are not yet set
// in env. Earlier files take precedence over later ones.
func LoadEnvFiles(env *gomk.Env, files ...string) error {
	tags, err := ReadEnvFiles(files...)
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		if _, ok := env.Tag(k); !ok {
			env.SetTag(k, tags[k])
		}
	}
	return nil
}

// Declare declares the steps of cfg in prj using the step builders of env.
// Steps with env overrides are declared with a sub env of env that is
// configured by the tools of cfg.
func (cfg *Config) Declare(prj *gomk.Project, env *gomk.Env) error {
	return gomk.Edit(prj, func(ped gomk.ProjectEd) {
		for _, s := range cfg.Steps {
			senv := env
			if len(s.Env) > 0 {
				senv = env.Sub()
				senv.SetTagsMap(s.Env)
				if err := gomk.ConfigureTools(senv, cfg.Tools...); err != nil {
					panic(fmt.Errorf("step %s: %w", s.Target, err))
				}
			}
			act := ped.Step(senv, s.Builder, []gomkore.Artefact{s.target()}, s.sources(prj))
			if s.Name != "" {
				ped.Goal(gomk.Abstract(s.Name)).ImpliedBy(act.Results()...)
			}
		}
	})
}

func (s *Step) target() gomkore.Artefact {
	if s.TargetFile {
		return mkfs.File(s.Target)
	}
	return mkfs.DirTree{Dir: s.Target}
}

func (s *Step) sources(prj *gomk.Project) []gomkore.Artefact {
	srcs := make([]gomkore.Artefact, 0, len(s.Sources))
	for _, src := range s.Sources {
		if st, err := mkfs.Stat(mkfs.File(src), prj); err == nil && st.IsDir() {
			srcs = append(srcs, mkfs.DirTree{Dir: src})
		} else {
			srcs = append(srcs, mkfs.File(src))
		}
	}
	return srcs
}
