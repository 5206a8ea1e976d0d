// Package graphviz renders a dag.Graph as a Graphviz-language "digraph",
// adapted from the reference codebase's internal/dag/graphviz package. That
// package works over an interface{}-typed dag.Vertex with per-vertex
// attributes; here the graph is already a dag.Graph[string] of plan action
// IDs, so this package only needs a label/attribute lookup function rather
// than a parallel Node vertex type.
package graphviz

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/schell/teleform/dag"
)

// Attrs is the set of Graphviz node attributes to render for a single
// vertex, e.g. {"label": "bucket-a: Create", "color": "darkgreen"}.
type Attrs map[string]string

// AttrFunc supplies the Graphviz attributes for a vertex.
type AttrFunc func(v string) Attrs

// Write renders g as a Graphviz "digraph" to w, one line per vertex (in
// lexicographic order) followed by one line per edge (sorted by source then
// target), matching the reference implementation's choice to sort
// everything so that output is deterministic and diffable.
func Write(g *dag.Graph[string], attrsOf AttrFunc, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("digraph {\n"); err != nil {
		return err
	}

	vertices := g.Vertices()
	slices.Sort(vertices)

	for _, v := range vertices {
		if _, err := bw.WriteString("  " + quote(v)); err != nil {
			return err
		}
		attrs := attrsOf(v)
		if len(attrs) > 0 {
			if err := writeAttrList(bw, attrs); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(";\n"); err != nil {
			return err
		}
	}

	type edge struct{ from, to string }
	var edges []edge
	for _, v := range vertices {
		for _, to := range g.DownEdges(v) {
			edges = append(edges, edge{from: v, to: to})
		}
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.to, b.to)
	})
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "  %s -> %s;\n", quote(e.from), quote(e.to)); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeAttrList(bw *bufio.Writer, attrs Attrs) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	if _, err := bw.WriteString(" ["); err != nil {
		return err
	}
	for i, name := range names {
		if i != 0 {
			if _, err := bw.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s=%s", quote(name), quote(attrs[name])); err != nil {
			return err
		}
	}
	_, err := bw.WriteString("]")
	return err
}

var validUnquoteID = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// quote renders s as a Graphviz identifier, leaving it bare when it is
// already a valid unquoted identifier for readability, and otherwise
// escaping it inside double quotes.
func quote(s string) string {
	if validUnquoteID.MatchString(s) && s != "node" && s != "edge" {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
