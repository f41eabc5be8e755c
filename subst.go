package gomk

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

// MaxExpandDepth limits the nesting of tag references during expansion.
var MaxExpandDepth = 32

var ErrExpandDepth = errors.New("tag expansion too deep")

// StepVars are the goals a command template refers to with TARGET, TARGETS,
// SOURCE and SOURCES.
type StepVars struct {
	Targets, Sources []*Goal
}

// Vars returns the StepVars of action a where the first nsrc premises are the
// explicit sources. Further premises, e.g. found by a [Scanner], are not
// visible in the command template.
func Vars(a *Action, nsrc int) StepVars {
	if a == nil {
		return StepVars{}
	}
	srcs := a.Premises()
	if nsrc >= 0 && nsrc < len(srcs) {
		srcs = srcs[:nsrc]
	}
	return StepVars{Targets: a.Results(), Sources: srcs}
}

// Expand expands the command template tmpl into a list of arguments. The
// template is split into words with shell quoting rules. References to the
// list variables TARGETS and SOURCES that make up a complete word yield one
// argument per goal. All other words are expanded with [ExpandString] and
// split again. Words that expand to nothing are dropped.
func Expand(tmpl string, env *Env, vars StepVars) ([]string, error) {
	words, err := shlex.Split(tmpl)
	if err != nil {
		return nil, fmt.Errorf("split command template: %w", err)
	}
	var args []string
	for _, w := range words {
		if name, ok := wholeRef(w); ok {
			if gs, attr, ok := vars.list(name); ok {
				for _, g := range gs {
					p, err := goalPath(g, attr)
					if err != nil {
						return nil, err
					}
					args = append(args, p)
				}
				continue
			}
		}
		if !strings.ContainsRune(w, '$') {
			args = append(args, w)
			continue
		}
		x, err := expand(w, env, vars, 0)
		if err != nil {
			return nil, err
		}
		xs, err := shlex.Split(x)
		if err != nil {
			return nil, fmt.Errorf("split expansion of '%s': %w", w, err)
		}
		args = append(args, xs...)
	}
	return args, nil
}

// ExpandString expands all tag and variable references in s. References have
// the form ${NAME} or $NAME. "$$" is a literal '$'. The markers "$(" and "$)"
// are dropped. Tags that are not set expand to the empty string. A reference
// NAME.quoted expands NAME and quotes the result with shell rules, e.g. to
// keep a path with blanks in one argument of a command line.
func ExpandString(s string, env *Env, vars StepVars) (string, error) {
	return expand(s, env, vars, 0)
}

func expand(s string, env *Env, vars StepVars, depth int) (string, error) {
	if depth > MaxExpandDepth {
		return "", fmt.Errorf("%w: '%s'", ErrExpandDepth, s)
	}
	var sb strings.Builder
	for {
		i := strings.IndexByte(s, '$')
		if i < 0 {
			sb.WriteString(s)
			return sb.String(), nil
		}
		sb.WriteString(s[:i])
		s = s[i+1:]
		if s == "" {
			sb.WriteByte('$')
			return sb.String(), nil
		}
		var name string
		switch s[0] {
		case '$':
			sb.WriteByte('$')
			s = s[1:]
			continue
		case '(', ')':
			s = s[1:]
			continue
		case '{':
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated reference in '%s'", s)
			}
			name, s = s[1:end], s[end+1:]
		default:
			n := refNameLen(s)
			if n == 0 {
				sb.WriteByte('$')
				continue
			}
			name, s = s[:n], s[n:]
		}
		val, err := lookup(name, env, vars, depth)
		if err != nil {
			return "", err
		}
		sb.WriteString(val)
	}
}

func lookup(name string, env *Env, vars StepVars, depth int) (string, error) {
	if gs, attr, ok := vars.list(name); ok {
		ps := make([]string, 0, len(gs))
		for _, g := range gs {
			p, err := goalPath(g, attr)
			if err != nil {
				return "", err
			}
			ps = append(ps, shellQuote(p))
		}
		return strings.Join(ps, " "), nil
	}
	if env == nil {
		return "", nil
	}
	if base, attr, ok := strings.Cut(name, "."); ok && attr == "quoted" {
		val, err := lookup(base, env, vars, depth)
		if err != nil || val == "" {
			return val, err
		}
		return shellQuote(val), nil
	}
	val, ok := env.Tag(name)
	if !ok {
		return "", nil
	}
	return expand(val, env, vars, depth+1)
}

// list returns the goals for the variable reference name and the requested
// path attribute. TARGET and SOURCE select only the first goal.
func (vs StepVars) list(name string) (gs []*Goal, attr string, ok bool) {
	base, attr, _ := strings.Cut(name, ".")
	switch base {
	case "TARGETS":
		return vs.Targets, attr, true
	case "SOURCES":
		return vs.Sources, attr, true
	case "TARGET":
		if len(vs.Targets) > 0 {
			return vs.Targets[:1], attr, true
		}
		return nil, attr, true
	case "SOURCE":
		if len(vs.Sources) > 0 {
			return vs.Sources[:1], attr, true
		}
		return nil, attr, true
	}
	return nil, "", false
}

func goalPath(g *Goal, attr string) (string, error) {
	var p string
	switch atf := g.Artefact.(type) {
	case mkfs.Artefact:
		p = atf.Path()
	case gomkore.Abstract:
		if attr != "" {
			return "", fmt.Errorf("abstract goal %s has no %s", g, attr)
		}
		return string(atf), nil
	default:
		p = g.Name()
	}
	switch attr {
	case "":
		return p, nil
	case "dir":
		return filepath.Dir(p), nil
	case "file":
		return filepath.Base(p), nil
	case "abspath":
		return g.Project().AbsPath(p)
	}
	return "", fmt.Errorf("unknown path attribute '%s' of %s", attr, g)
}

// wholeRef reports whether w is a single reference and returns its name.
func wholeRef(w string) (string, bool) {
	if len(w) < 2 || w[0] != '$' {
		return "", false
	}
	if w[1] == '{' {
		if w[len(w)-1] == '}' && strings.IndexByte(w, '}') == len(w)-1 {
			return w[2 : len(w)-1], true
		}
		return "", false
	}
	if n := refNameLen(w[1:]); n == len(w)-1 {
		return w[1:], true
	}
	return "", false
}

// refNameLen returns the length of the unbraced reference name at the start
// of s. A name may have one attribute suffix like TARGET.dir.
func refNameLen(s string) int {
	n := identLen(s)
	if n == 0 {
		return 0
	}
	if n < len(s) && s[n] == '.' {
		if m := identLen(s[n+1:]); m > 0 {
			return n + 1 + m
		}
	}
	return n
}

func identLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return i
		}
	}
	return len(s)
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
