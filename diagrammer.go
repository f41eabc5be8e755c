package gomk

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// Diagrammer writes a project as Graphviz digraph. Goals are records with the
// artefact type, actions are rounded boxes. Premises found by a tool's scanner
// are linked with dotted edges, artefacts that are removed with a goal on
// clean are shown as grey notes.
type Diagrammer struct {
	RankDir string
	// NoClean hides the clean associations of goals.
	NoClean bool
}

func (dia *Diagrammer) WriteDot(w io.Writer, prj *gomkore.Project) error {
	dw := dotWriter{w: w}
	dw.printf("digraph \"%s\" {\n", escDotID(prj.Name(nil)))
	if dia.RankDir != "" {
		dw.printf("\trankdir=\"%s\"\n", escDotID(dia.RankDir))
	}
	for _, g := range prj.Goals(nil) {
		dia.goal(&dw, g)
	}
	for _, a := range prj.Actions() {
		dia.action(&dw, a)
	}
	dw.printf("}\n")
	return dw.err
}

type dotWriter struct {
	w   io.Writer
	err error
}

func (dw *dotWriter) printf(format string, args ...any) {
	if dw.err == nil {
		_, dw.err = fmt.Fprintf(dw.w, format, args...)
	}
}

func (dia *Diagrammer) goal(w *dotWriter, g *gomkore.Goal) {
	edge := len(g.ResultOf()) == 0 || len(g.PremiseOf()) == 0
	if g.IsAbstract() {
		style := "dashed"
		if edge {
			style = "dashed,bold"
		}
		w.printf("\t\"%p\" [shape=box,style=\"%s\",label=\"%s\"];\n",
			g,
			style,
			escDotID(g.Name()),
		)
	} else {
		var style string
		if edge {
			style = ",style=bold"
		}
		w.printf("\t\"%p\" [shape=record%s,label=\"{%s%s|%s}\"];\n",
			g,
			style,
			reflect.Indirect(reflect.ValueOf(g.Artefact)).Type().Name(),
			updModeTag(g),
			escDotID(g.Name()),
		)
	}
	if dia.NoClean {
		return
	}
	for i, atf := range g.CleanAlso() {
		w.printf("\t\"%p.c%d\" [shape=note,color=grey,fontcolor=grey,label=\"%s\"];\n",
			g,
			i,
			escDotID(atf.Name(g.Project())),
		)
		w.printf("\t\"%p\" -> \"%p.c%d\" [color=grey,arrowhead=odot];\n", g, g, i)
	}
}

func updModeTag(g *gomkore.Goal) string {
	if len(g.ResultOf()) < 2 {
		return ""
	}
	switch g.UpdateMode.Actions() {
	case UpdOneAction:
		return " 1"
	case UpdAnyAction:
		return " ?"
	case UpdSomeActions:
		return " *"
	}
	return " !"
}

func (dia *Diagrammer) action(w *dotWriter, a *gomkore.Action) {
	toRes := func(res *gomkore.Goal, implicit bool) {
		var attrs []string
		if implicit {
			attrs = append(attrs, "style=dashed")
		}
		if res.UpdateMode.Ordered() {
			i := slices.Index(res.ResultOf(), a)
			attrs = append(attrs, fmt.Sprintf("label=\"%d\"", i+1))
		}
		if len(attrs) == 0 {
			w.printf("\t\"%p\" -> \"%p\";\n", a, res)
		} else {
			w.printf("\t\"%p\" -> \"%p\" [%s];\n", a, res, strings.Join(attrs, ","))
		}
	}

	if a.Op == nil {
		w.printf("\t\"%p\" [shape=point];\n", a)
		for _, pre := range a.Premises() {
			w.printf("\t\"%p\" -> \"%p\" [style=dashed,arrowhead=none];\n", pre, a)
		}
		for _, res := range a.Results() {
			toRes(res, true)
		}
		return
	}

	style := "rounded"
	if len(a.Premises()) == 0 {
		style = "rounded,bold"
	}
	w.printf("\t\"%p\" [shape=box,style=\"%s\",label=\"%s\"];\n",
		a,
		style,
		escDotID(a.String()),
	)
	nsrc := len(a.Premises())
	if cop, ok := a.Op.(*CommandOp); ok && cop.Sources < nsrc {
		nsrc = cop.Sources
	}
	for i, pre := range a.Premises() {
		if i < nsrc {
			w.printf("\t\"%p\" -> \"%p\";\n", pre, a)
		} else {
			w.printf("\t\"%p\" -> \"%p\" [style=dotted];\n", pre, a)
		}
	}
	for _, res := range a.Results() {
		toRes(res, false)
	}
}

func escDotID(id string) string {
	return strings.ReplaceAll(id, "\"", "\\\"")
}
