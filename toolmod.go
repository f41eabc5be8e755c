package gomk

import (
	"fmt"
	"sort"
	"sync"
)

// ToolModule installs a tool in an [Env]. Exists reports whether the tool
// can be used with env. Generate registers the tool's step builders in env
// and sets the tool's default tags. Generate may be called more than once for
// the same env and then overwrites the defaults again.
type ToolModule interface {
	Generate(env *Env)
	Exists(env *Env) bool
}

// Configurer is implemented by tool modules that derive tags from other
// tags. Configure is called when tags were set after Generate, e.g. from a
// build description or for a single step.
type Configurer interface {
	Configure(env *Env)
}

var toolMods = struct {
	sync.RWMutex
	m map[string]ToolModule
}{m: make(map[string]ToolModule)}

// RegisterToolModule makes the tool module m available under name. It is
// meant to be called from the init function of the tool's package. It panics
// if name is already registered.
func RegisterToolModule(name string, m ToolModule) {
	toolMods.Lock()
	defer toolMods.Unlock()
	if _, ok := toolMods.m[name]; ok {
		panic(fmt.Errorf("tool module '%s' registered twice", name))
	}
	toolMods.m[name] = m
}

// LookupToolModule returns the tool module registered with name.
func LookupToolModule(name string) (ToolModule, bool) {
	toolMods.RLock()
	defer toolMods.RUnlock()
	m, ok := toolMods.m[name]
	return m, ok
}

// ToolModules returns the sorted names of all registered tool modules.
func ToolModules() []string {
	toolMods.RLock()
	defer toolMods.RUnlock()
	names := make([]string, 0, len(toolMods.m))
	for n := range toolMods.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadTools installs the tool modules with the given names in env. Loading
// stops with an error at the first tool that is not registered or does not
// exist for env.
func LoadTools(env *Env, names ...string) error {
	for _, n := range names {
		m, ok := LookupToolModule(n)
		if !ok {
			return fmt.Errorf("unknown tool '%s'", n)
		}
		if !m.Exists(env) {
			return fmt.Errorf("tool '%s' not available", n)
		}
		m.Generate(env)
	}
	return nil
}

// ConfigureTools calls Configure of each named tool module that is a
// [Configurer].
func ConfigureTools(env *Env, names ...string) error {
	for _, n := range names {
		m, ok := LookupToolModule(n)
		if !ok {
			return fmt.Errorf("unknown tool '%s'", n)
		}
		if c, ok := m.(Configurer); ok {
			c.Configure(env)
		}
	}
	return nil
}
