package plan

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/schell/teleform/dag/graphviz"
)

// String renders the schedule as human-readable text (spec §4.3
// get_schedule_string()): one line per node, grouped by action and sorted
// lexicographically by resource_key, colorized when standard output is a
// terminal (github.com/fatih/color decides this from os.Stdout, whatever the
// returned string is later written to).
func (s *Schedule[P]) String() string {
	var b strings.Builder

	byAction := map[Action][]*Node[P]{}
	for _, n := range s.Nodes {
		byAction[n.Action] = append(byAction[n.Action], n)
	}
	for _, nodes := range byAction {
		sort.Slice(nodes, func(i, j int) bool {
			if nodes[i].Key != nodes[j].Key {
				return nodes[i].Key < nodes[j].Key
			}
			return nodes[i].ID < nodes[j].ID
		})
	}

	order := []Action{Create, Update, Destroy, Noop}
	for _, action := range order {
		nodes := byAction[action]
		if len(nodes) == 0 {
			continue
		}
		colorize := colorFor(action)
		for _, n := range nodes {
			suffix := ""
			if n.Inert {
				suffix = " (inert)"
			}
			fmt.Fprintf(&b, "%s (%s): %s%s\n", n.Key, n.TypeTag, colorize(action.String()), suffix)
		}
	}

	for _, key := range s.Carried {
		fmt.Fprintf(&b, "%s: unchanged (orphaned, not registered)\n", key)
	}

	return b.String()
}

func colorFor(a Action) func(string, ...any) string {
	switch a {
	case Create:
		return color.New(color.FgGreen).SprintfFunc()
	case Update:
		return color.New(color.FgYellow).SprintfFunc()
	case Destroy:
		return color.New(color.FgRed).SprintfFunc()
	default:
		return color.New(color.Faint).SprintfFunc()
	}
}

// WriteGraph renders the schedule as Graphviz-language text (spec §4.3
// save_apply_graph(path)), built on package dag/graphviz. The graph reflects
// the plan, not its execution: it is unaffected by any later Apply failure
// (spec §7 "The graph-visualization output is unaffected by errors").
func (s *Schedule[P]) WriteGraph(w io.Writer) error {
	attrs := func(id string) graphviz.Attrs {
		n := s.Nodes[id]
		if n == nil {
			return nil
		}
		label := fmt.Sprintf("%s\\n%s", n.Key, n.Action)
		a := graphviz.Attrs{"label": label}
		switch n.Action {
		case Create:
			a["color"] = "darkgreen"
		case Update:
			a["color"] = "goldenrod"
		case Destroy:
			a["color"] = "firebrick"
		case Noop:
			a["color"] = "gray"
		}
		return a
	}
	return graphviz.Write(s.graph, attrs, w)
}
