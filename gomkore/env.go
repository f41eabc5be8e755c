package gomkore

import (
	"fmt"
	"io"
	"maps"
	"os"
	"sort"
	"strings"
)

// StepBuilder declares build steps, i.e. actions with their premise and result
// goals, in a project. StepBuilders are registered by name in an [Env].
type StepBuilder interface {
	Declare(prj *Project, env *Env, targets, sources []Artefact) (*Action, error)
}

// Env is the environment of a build. It holds the standard IO of actions,
// string tags that configure actions and the registry of step builders. An
// Env created with [Env.Sub] inherits tags and step builders from its parent.
type Env struct {
	In       io.Reader
	Out, Err io.Writer

	tags     map[string]string
	delt     map[string]bool
	builders map[string]StepBuilder
	xenv     []string
	xenvErr  error
	parent   *Env
}

// DefaultEnv creates an environment with the process' standard IO. The tags
// are initialised from the process environment.
func DefaultEnv(tr *Trace) *Env {
	env := &Env{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		tags: make(map[string]string),
	}
	for _, evar := range os.Environ() {
		kv := strings.SplitN(evar, "=", 2)
		if len(kv) == 0 || kv[0] == "" {
			if tr != nil {
				tr.Warn("ignoring default `env`", `env`, evar)
			}
			continue
		}
		switch len(kv) {
		case 1:
			env.tags[kv[0]] = ""
		default:
			env.tags[kv[0]] = kv[1]
		}
	}
	return env
}

func (e *Env) Sub() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		parent: e,
	}
}

func (e *Env) Clone() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		tags:     e.mergedTags(),
		builders: e.mergedBuilders(),
	}
}

func (e *Env) Tag(key string) (string, bool) {
	for e != nil {
		if e.tags != nil {
			if v, ok := e.tags[key]; ok {
				return v, true
			}
		}
		if e.delt != nil && e.delt[key] {
			break
		}
		e = e.parent
	}
	return "", false
}

// TagOr returns the value of tag key or def if the tag is not set.
func (e *Env) TagOr(key, def string) string {
	if v, ok := e.Tag(key); ok {
		return v
	}
	return def
}

func (e *Env) SetTag(key, val string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	e.tags[key] = val
	if e.delt != nil {
		delete(e.delt, key)
	}
	e.clearXEnv()
}

func (e *Env) SetTags(env ...string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	for _, evar := range env {
		kv := strings.SplitN(evar, "=", 2)
		switch len(kv) {
		case 1:
			e.tags[kv[0]] = ""
			if e.delt != nil {
				delete(e.delt, kv[0])
			}
		case 2:
			e.tags[kv[0]] = kv[1]
			if e.delt != nil {
				delete(e.delt, kv[0])
			}
		}
	}
	e.clearXEnv()
}

func (e *Env) SetTagsMap(tags map[string]string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	maps.Copy(e.tags, tags)
	if e.delt != nil {
		for k := range tags {
			delete(e.delt, k)
		}
	}
	e.clearXEnv()
}

func (e *Env) DelTag(key string) {
	delete(e.tags, key)
	if e.parent != nil {
		if e.delt == nil {
			e.delt = make(map[string]bool)
		}
		e.delt[key] = true
	}
	e.clearXEnv()
}

// TagKeys returns the sorted keys of all tags visible in e.
func (e *Env) TagKeys() []string {
	mts := e.mergedTags()
	keys := make([]string, 0, len(mts))
	for k := range mts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetStepBuilder registers b under name in e. A builder already registered
// with that name is replaced.
func (e *Env) SetStepBuilder(name string, b StepBuilder) {
	if e.builders == nil {
		e.builders = make(map[string]StepBuilder)
	}
	e.builders[name] = b
}

// StepBuilder looks up the step builder registered with name in e or its
// ancestors.
func (e *Env) StepBuilder(name string) (StepBuilder, bool) {
	for e != nil {
		if b, ok := e.builders[name]; ok {
			return b, true
		}
		e = e.parent
	}
	return nil, false
}

type NonXEnvKeys []string

func (e NonXEnvKeys) Error() string {
	return fmt.Sprintf("illegal exec env keys: %s", strings.Join(e, ", "))
}

func (NonXEnvKeys) Is(target error) bool {
	_, ok := target.(NonXEnvKeys)
	return ok
}

// ExecEnv returns the tags of e in the form "key=value" as expected by
// [os/exec.Cmd].
func (e *Env) ExecEnv() ([]string, error) {
	if e.xenv == nil {
		var errKeys []string
		for k, v := range e.mergedTags() {
			switch {
			case k == "":
				errKeys = append(errKeys, `""`)
			case strings.ContainsRune(k, '='):
				errKeys = append(errKeys, k)
			default:
				tmp := fmt.Sprintf("%s=%s", k, v)
				e.xenv = append(e.xenv, tmp)
			}
		}
		sort.Strings(e.xenv)
		if len(errKeys) > 0 {
			e.xenvErr = NonXEnvKeys(errKeys)
		}
	}
	return e.xenv, e.xenvErr
}

func (e *Env) clearXEnv() {
	e.xenv = nil
	e.xenvErr = nil
}

func (e *Env) mergedTags() map[string]string {
	if e.parent == nil {
		if e.tags == nil {
			return make(map[string]string)
		}
		return maps.Clone(e.tags)
	}
	mts := e.parent.mergedTags()
	if e.delt != nil {
		for k := range e.delt {
			delete(mts, k)
		}
	}
	if e.tags != nil {
		maps.Copy(mts, e.tags)
	}
	return mts
}

func (e *Env) mergedBuilders() map[string]StepBuilder {
	var mbs map[string]StepBuilder
	if e.parent != nil {
		mbs = e.parent.mergedBuilders()
	} else {
		mbs = make(map[string]StepBuilder)
	}
	maps.Copy(mbs, e.builders)
	return mbs
}
