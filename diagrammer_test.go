package gomk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

func TestDiagrammer(t *testing.T) {
	env := new(Env)
	env.SetTag("COM", "cat ${SOURCES}")
	tool := &Tool{
		Name:    "Cat",
		Command: "COM",
		Scanner: func(*Env, Artefact, string) ([]string, error) {
			return []string{"tpl/x.tmpl"}, nil
		},
	}
	env.SetStepBuilder("Cat", tool)
	prj := NewProject(t.TempDir())
	require.NoError(t, Edit(prj, func(prj ProjectEd) {
		a := prj.Step(env, "Cat", []Artefact{mkfs.File("out.txt")}, []Artefact{mkfs.File("in.txt")})
		a.Project().Goal(mkfs.File("in.txt")).AlsoClean(mkfs.DirTree{Dir: "gen"})
		prj.Goal(Abstract("all")).ImpliedBy(a.Results()...)
	}))
	var sb strings.Builder
	dia := Diagrammer{RankDir: "LR"}
	require.NoError(t, dia.WriteDot(&sb, prj))
	dot := sb.String()
	assert.True(t, strings.HasPrefix(dot, "digraph "))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `rankdir="LR"`)
	assert.Contains(t, dot, `label="Cat:out.txt"`)
	assert.Contains(t, dot, "style=dotted")
	assert.Contains(t, dot, `label="gen"`)
	assert.Contains(t, dot, "shape=point")

	sb.Reset()
	dia.NoClean = true
	require.NoError(t, dia.WriteDot(&sb, prj))
	assert.NotContains(t, sb.String(), `label="gen"`)
}
