// Package apply implements the applier described in spec §4.5: it walks a
// plan.Schedule in dependency order, resolving late-bound remote references
// across each edge, invoking the matching capability method, and checkpointing
// the working mirror after every successful node.
package apply

import (
	"context"
	"fmt"
	"reflect"

	"github.com/schell/teleform/plan"
	"github.com/schell/teleform/resource"
	"github.com/schell/teleform/tferr"
	"github.com/schell/teleform/tflog"
)

// Working is the in-memory mirror the applier mutates as it runs: the
// current, authoritative value of every resource_key known so far, seeded
// from the stored set before Apply begins and updated after every
// successful Create/Update/Destroy (spec §4.5 step 3).
type Working[P any] map[string]resource.Capability[P]

// Checkpoint is invoked after every successfully-applied node so the caller
// can persist Working to disk (spec §4.5 step 4). It is the applier's only
// interaction with package persist; apply itself never touches disk.
type Checkpoint[P any] func(ctx context.Context, working Working[P], deletedKey string) error

// Apply walks sched in topological order, calling provider-bound capability
// methods and checkpointing working after each one. It stops at the first
// failing node and returns its error immediately; working reflects exactly
// the prefix of nodes that succeeded (spec §4.5 step 5, §7 "Propagation
// policy").
//
// Between nodes, Apply honors ctx: if it has been cancelled, Apply stops
// before starting the next node without disturbing the one that just
// finished (spec §5 "Cancellation" — in-flight nodes always run to
// completion).
func Apply[P any](ctx context.Context, provider P, sched *plan.Schedule[P], working Working[P], checkpoint Checkpoint[P]) error {
	log := tflog.WithRequestID(tflog.Named("apply"))

	for _, id := range sched.Order {
		if err := ctx.Err(); err != nil {
			log.Info("apply cancelled between nodes", "remaining_node", id)
			return err
		}

		node := sched.Nodes[id]
		log.Debug("applying node", "key", node.Key, "action", node.Action.String())

		switch node.Action {
		case plan.Create:
			resolved, err := resolve[P](node.Key, node.Value, lookupFrom(working))
			if err != nil {
				return err
			}
			if err := resolved.Create(ctx, provider); err != nil {
				return tferr.NewProviderError(node.Key, "create", err)
			}
			working[node.Key] = resolved

		case plan.Update:
			resolved, err := resolve[P](node.Key, node.Value, lookupFrom(working))
			if err != nil {
				return err
			}
			if err := resolved.Update(ctx, provider, node.StoredValue); err != nil {
				return tferr.NewProviderError(node.Key, "update", err)
			}
			working[node.Key] = resolved

		case plan.Destroy:
			if node.Inert {
				log.Warn("destroying inert (unmigratable) entry without a platform call", "key", node.Key)
				delete(working, node.Key)
				if err := checkpoint(ctx, working, node.Key); err != nil {
					return err
				}
				continue
			}
			if err := node.Value.Delete(ctx, provider); err != nil {
				return tferr.NewProviderError(node.Key, "delete", err)
			}
			delete(working, node.Key)

		case plan.Noop:
			working[node.Key] = node.Value

		default:
			return fmt.Errorf("apply: unknown action %v for %q", node.Action, node.Key)
		}

		if err := checkpoint(ctx, working, ""); err != nil {
			return err
		}
	}
	return nil
}

// lookupFrom adapts a Working mirror into the lookup function resolve needs:
// given a resource_key and a field selector name, find that resource's
// current value and read the named Remote field off it via reflection,
// since resolve operates generically over every resource type.
func lookupFrom[P any](working Working[P]) lookup[P] {
	return func(resourceKey, selector string) (any, bool, error) {
		value, ok := working[resourceKey]
		if !ok {
			return nil, false, nil
		}
		return readRemoteField(value, selector)
	}
}

func readRemoteField(value any, selector string) (any, bool, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false, fmt.Errorf("apply: cannot read field %q from non-struct value %T", selector, value)
	}
	field := v.FieldByName(selector)
	if !field.IsValid() {
		return nil, false, fmt.Errorf("apply: no field %q on %T", selector, value)
	}
	getMethod := field.MethodByName("Get")
	if !getMethod.IsValid() {
		return nil, false, fmt.Errorf("apply: field %q on %T is not a Remote value", selector, value)
	}
	results := getMethod.Call(nil)
	if len(results) != 2 {
		return nil, false, fmt.Errorf("apply: field %q on %T has an unexpected Get() signature", selector, value)
	}
	known := results[1].Bool()
	if !known {
		return nil, false, nil
	}
	return results[0].Interface(), true, nil
}
