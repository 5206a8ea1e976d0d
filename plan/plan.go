// Package plan implements the dependency-aware planner described in spec
// §4.4: given a declared set and a stored set, produce a scheduled DAG of
// Create/Update/Destroy/Recreate/Noop actions with every happens-before edge
// spec §4.4 requires.
package plan

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/schell/teleform/dag"
	"github.com/schell/teleform/persist"
	"github.com/schell/teleform/resource"
	"github.com/schell/teleform/tferr"
)

// Action classifies a scheduled node (spec §4.4).
type Action int

const (
	Create Action = iota
	Update
	Destroy
	Noop
)

func (a Action) String() string {
	switch a {
	case Create:
		return "Create"
	case Update:
		return "Update"
	case Destroy:
		return "Destroy"
	case Noop:
		return "Noop"
	default:
		return "Unknown"
	}
}

// Declared is one entry of the declared set D handed to Build: a resource's
// type_tag and its capability value.
type Declared[P any] struct {
	TypeTag string
	Value   resource.Capability[P]
}

// Node is one scheduled action.
type Node[P any] struct {
	ID      string // unique within the schedule: "key" or "key#destroy"/"key#create" for a Recreate pair
	Key     string
	TypeTag string
	Action  Action

	// Value is the capability value the applier should invoke the action
	// against: the declared value for Create, the composite (merged) value
	// for Update and Noop, the stored value for Destroy. Nil only for an
	// Inert destroy, where there is no decoded value to call Delete on.
	Value resource.Capability[P]

	// StoredValue is passed to Update so the capability method can see both
	// sides, per spec §4.2 `update(&mut self, &P, stored)`.
	StoredValue resource.Capability[P]

	// Inert marks a Destroy node for a stored entry that failed schema
	// migration (spec §4.7): it is removed from the mirror without a
	// platform Delete call, since there is no decoded value to call it on.
	Inert bool
}

// Schedule is the scheduled DAG produced by Build: a set of Nodes plus every
// happens-before edge between them, already validated acyclic and reduced to
// one deterministic topological order.
type Schedule[P any] struct {
	Nodes map[string]*Node[P]
	Order []string // topological order of node IDs, ties broken lexicographically

	// Carried holds resource_keys present in the stored set but absent from
	// the declared set whose type is not registered for orphan deletion and
	// is not pending_destroy: spec §4.4 "Warn, carry stored entry through
	// unchanged." These are not scheduled nodes; the applier copies them
	// into the next mirror verbatim.
	Carried []string

	// Warnings collects one message per carried orphan, surfaced to the
	// caller (spec §9 "A warning is emitted").
	Warnings []string

	graph *dag.Graph[string]
}

// downstream edge convenience names.
func createEdgeFromDep(g *dag.Graph[string], depArrivalID, nodeID string) {
	g.Connect(depArrivalID, nodeID)
}

// Build compares declared against the stored mirror and produces a Schedule.
// registeredTypes authorizes orphan auto-deletion per type_tag (spec §4.3
// register::<T>()); pendingDestroy names stored keys slated for deletion
// even though undeclared (spec §4.3 pending_destroy::<T>(key)).
func Build[P any](declared map[string]Declared[P], stored persist.Mirror, registeredTypes map[string]bool, pendingDestroy map[string]bool) (*Schedule[P], error) {
	// Invariant 2: every remote reference in the declared set must resolve
	// to a declared resource_key. Every offending reference is collected
	// before returning, so a caller fixing up a config sees every missing
	// dependency in one pass instead of one compile-edit-replan cycle per
	// error.
	var missing *multierror.Error
	for key, d := range declared {
		for _, dep := range d.Value.Dependencies() {
			if _, ok := declared[dep]; !ok {
				missing = multierror.Append(missing, &tferr.MissingResourceError{Key: dep, ReferentOf: key})
			}
		}
	}
	if missing.ErrorOrNil() != nil {
		return nil, missing.ErrorOrNil()
	}

	sched := &Schedule[P]{
		Nodes: make(map[string]*Node[P]),
		graph: dag.New[string](),
	}

	// arrivalOf[key] names the node ID whose completion makes key's current
	// value authoritative and available to a dependent's Create/Update.
	// Keys with no scheduled mutation (Noop, carried orphan) have no entry:
	// their value is already available with no ordering needed.
	arrivalOf := make(map[string]string)

	// destroyOf[key] names the node ID that destroys key, for keys that
	// have a scheduled Destroy (standalone or as half of a Recreate).
	destroyOf := make(map[string]string)

	addNode := func(n *Node[P]) {
		sched.Nodes[n.ID] = n
		sched.graph.Add(n.ID)
	}

	// Classify every key in D union S.
	keys := make(map[string]struct{}, len(declared)+len(stored))
	for k := range declared {
		keys[k] = struct{}{}
	}
	for k := range stored {
		keys[k] = struct{}{}
	}

	for key := range keys {
		d, inD := declared[key]
		s, inS := stored[key]

		switch {
		case inD && !inS:
			id := key
			addNode(&Node[P]{ID: id, Key: key, TypeTag: d.TypeTag, Action: Create, Value: d.Value})
			arrivalOf[key] = id

		case !inD && inS:
			if s.Inert {
				id := key + "#destroy"
				addNode(&Node[P]{ID: id, Key: key, TypeTag: s.TypeTag, Action: Destroy, Inert: true})
				destroyOf[key] = id
				continue
			}
			storedVal, ok := s.Payload.(resource.Capability[P])
			if !ok {
				id := key + "#destroy"
				addNode(&Node[P]{ID: id, Key: key, TypeTag: s.TypeTag, Action: Destroy, Inert: true})
				destroyOf[key] = id
				continue
			}
			if registeredTypes[s.TypeTag] || pendingDestroy[key] {
				id := key
				addNode(&Node[P]{ID: id, Key: key, TypeTag: s.TypeTag, Action: Destroy, Value: storedVal})
				destroyOf[key] = id
			} else {
				sched.Carried = append(sched.Carried, key)
				sched.Warnings = append(sched.Warnings, fmt.Sprintf("teleform: %q (%s) is no longer declared and its type is not registered for orphan deletion; leaving it untouched", key, s.TypeTag))
			}

		case inD && inS:
			if s.Inert {
				// Stored payload could not be migrated: treat this key as
				// if nothing were stored, so it is simply (re)created.
				id := key
				addNode(&Node[P]{ID: id, Key: key, TypeTag: d.TypeTag, Action: Create, Value: d.Value})
				arrivalOf[key] = id
				continue
			}
			storedVal, ok := s.Payload.(resource.Capability[P])
			if !ok {
				id := key
				addNode(&Node[P]{ID: id, Key: key, TypeTag: d.TypeTag, Action: Create, Value: d.Value})
				arrivalOf[key] = id
				continue
			}

			mergedAny, err := resource.Merge(d.Value, storedVal)
			if err != nil {
				return nil, fmt.Errorf("teleform: merging %q: %w", key, err)
			}
			merged := mergedAny.(resource.Capability[P])

			switch {
			case d.Value.ShouldRecreate(storedVal):
				destroyID := key + "#destroy"
				createID := key + "#create"
				addNode(&Node[P]{ID: destroyID, Key: key, TypeTag: s.TypeTag, Action: Destroy, Value: storedVal})
				addNode(&Node[P]{ID: createID, Key: key, TypeTag: d.TypeTag, Action: Create, Value: d.Value})
				sched.graph.Connect(destroyID, createID)
				arrivalOf[key] = createID
				destroyOf[key] = destroyID

			case d.Value.ShouldUpdate(storedVal):
				id := key
				addNode(&Node[P]{ID: id, Key: key, TypeTag: d.TypeTag, Action: Update, Value: merged, StoredValue: storedVal})
				arrivalOf[key] = id

			default:
				id := key
				addNode(&Node[P]{ID: id, Key: key, TypeTag: d.TypeTag, Action: Noop, Value: merged})
				// A Noop is not mutated, but it still "arrives" immediately
				// with a known value, so dependents never need to wait on
				// it; deliberately no arrivalOf entry.
			}
		}
	}

	// Forward edges: every Create/Update/Recreate-create node must run
	// after the arrival of each of its dependencies.
	for _, n := range sched.Nodes {
		if n.Action == Destroy {
			continue
		}
		for _, dep := range n.Value.Dependencies() {
			if arrival, ok := arrivalOf[dep]; ok && arrival != n.ID {
				createEdgeFromDep(sched.graph, arrival, n.ID)
			}
		}
	}

	// Reverse edges: every resource that, per its last-stored shape, depended
	// on k must finish its own Destroy or Update before k's Destroy node runs
	// (dependents release k before k goes away; spec §4.4: a Destroy or
	// Recreate-destroy sub-node must be preceded by every current
	// dependent's Destroy or Update). Using storedVal.Dependencies() rather
	// than the newly declared value's is deliberate: a dependent that has
	// since dropped the reference in its declared shape still depended on k
	// as of the last apply, and nothing else orders its Update relative to
	// k's Destroy, since the forward-edge pass above only looks at the new
	// declared dependency list.
	for depender, s := range stored {
		if s.Inert {
			continue
		}
		storedVal, ok := s.Payload.(resource.Capability[P])
		if !ok {
			continue
		}
		for _, dep := range storedVal.Dependencies() {
			targetDestroy, hasTargetDestroy := destroyOf[dep]
			if !hasTargetDestroy {
				continue
			}
			if dependerDestroy, ok := destroyOf[depender]; ok {
				// depender is itself being destroyed (standalone or as half
				// of a Recreate): dependents die first.
				if targetDestroy != dependerDestroy {
					sched.graph.Connect(dependerDestroy, targetDestroy)
				}
				continue
			}
			// depender survives (Update or Noop) but used to depend on a
			// resource now being destroyed/recreated: it must finish
			// updating away from the dropped dependency before that
			// dependency's Destroy runs.
			if dependerNode, ok := sched.Nodes[depender]; ok && dependerNode.Action != Destroy && dependerNode.ID != targetDestroy {
				sched.graph.Connect(dependerNode.ID, targetDestroy)
			}
		}
	}

	order, err := dag.TopoSort(sched.graph, func(a, b string) bool { return a < b })
	if err != nil {
		var cycleErr *dag.CycleError[string]
		if cycleErrAs(err, &cycleErr) {
			keys := make([]string, 0, len(cycleErr.Members))
			for _, id := range cycleErr.Members {
				keys = append(keys, sched.Nodes[id].Key)
			}
			sort.Strings(keys)
			return nil, &tferr.CyclicPlanError{Keys: dedupe(keys)}
		}
		return nil, err
	}
	sched.Order = order
	sort.Strings(sched.Carried)
	sort.Strings(sched.Warnings)

	return sched, nil
}

func cycleErrAs(err error, target **dag.CycleError[string]) bool {
	ce, ok := err.(*dag.CycleError[string])
	if !ok {
		return false
	}
	*target = ce
	return true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
