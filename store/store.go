// Package store ties together persist, plan, and apply into the embeddable
// library surface described in spec §4.3 and §6: register resources, compute
// a schedule against the on-disk mirror, and apply it, checkpointing after
// every node (or every N nodes, per Option) so a crash mid-apply loses at
// most the nodes applied since the last checkpoint.
package store

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/schell/teleform/apply"
	"github.com/schell/teleform/persist"
	"github.com/schell/teleform/plan"
	"github.com/schell/teleform/resource"
	"github.com/schell/teleform/tferr"
	"github.com/schell/teleform/tflog"
)

// Store is the top-level handle an embedder constructs once per mirror file
// (spec §4.3 Component D). It is not safe for concurrent use from multiple
// goroutines (spec §5: "A single Store instance is not safe for concurrent
// Plan/Apply calls").
type Store[P any] struct {
	path     string
	provider P

	registry        *persist.Registry
	declared        map[string]plan.Declared[P]
	registeredTypes map[string]bool
	pendingDestroy  map[string]bool
	schemaVersions  map[string]string

	checkpointInterval int
	log                hclog.Logger
}

// Option configures a Store at construction time.
type Option[P any] func(*Store[P])

// WithCheckpointEveryNode persists the mirror after every single applied node
// (the default).
func WithCheckpointEveryNode[P any]() Option[P] {
	return WithCheckpointInterval[P](1)
}

// WithCheckpointInterval persists the mirror only once every n applied nodes
// (plus always after the last one), trading crash-safety granularity for
// fewer writes on a schedule with many small nodes. n <= 0 is treated as 1.
func WithCheckpointInterval[P any](n int) Option[P] {
	if n <= 0 {
		n = 1
	}
	return func(s *Store[P]) { s.checkpointInterval = n }
}

// WithLogger overrides the hclog.Logger the Store uses for its own warnings,
// in place of the package default derived from TELEFORM_LOG. Log lines from
// package apply are not affected: they always go to tflog's default logger.
func WithLogger[P any](l hclog.Logger) Option[P] {
	return func(s *Store[P]) { s.log = l }
}

// WithSchemaVersion records the schema_version tag written alongside every
// entry of typeTag on save, so a future Decoder can call persist.SchemaAtLeast
// against it (spec §4.7).
func WithSchemaVersion[P any](typeTag, version string) Option[P] {
	return func(s *Store[P]) { s.schemaVersions[typeTag] = version }
}

// New constructs a Store backed by the mirror file at path.
func New[P any](path string, provider P, opts ...Option[P]) *Store[P] {
	s := &Store[P]{
		path:                path,
		provider:            provider,
		registry:            persist.NewRegistry(),
		declared:            make(map[string]plan.Declared[P]),
		registeredTypes:     make(map[string]bool),
		pendingDestroy:      make(map[string]bool),
		schemaVersions:      make(map[string]string),
		checkpointInterval:  1,
		log:                 tflog.Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resource declares one member of the in-memory declared set D (spec §4.3
// "resource(key, value)"). A duplicate key is a configuration error caught
// immediately rather than surfacing confusingly during Plan.
func (s *Store[P]) Resource(key, typeTag string, value resource.Capability[P]) error {
	if _, exists := s.declared[key]; exists {
		return &tferr.DuplicateKeyError{Key: key}
	}
	s.declared[key] = plan.Declared[P]{TypeTag: typeTag, Value: value}
	return nil
}

// Register associates typeTag with dec for decoding stored entries, and
// authorizes Plan to schedule a Destroy for any stored resource_key of this
// type that is no longer declared (spec §4.3 "register::<T>()").
func (s *Store[P]) Register(typeTag string, dec persist.Decoder) {
	s.registry.Register(typeTag, dec)
	s.registeredTypes[typeTag] = true
}

// PendingDestroy marks key for deletion on the next Plan even though it is
// not declared this run and its type may not be registered for automatic
// orphan deletion (spec §4.3 "pending_destroy::<T>(key)").
func (s *Store[P]) PendingDestroy(key string) {
	s.pendingDestroy[key] = true
}

// Plan loads the on-disk mirror and computes a Schedule against the declared
// set accumulated so far via Resource (spec §4.3 "plan() -> Schedule").
func (s *Store[P]) Plan(ctx context.Context) (*plan.Schedule[P], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := persist.Load(s.path, s.registry)
	if stored == nil {
		return nil, err
	}
	if err != nil {
		s.log.Warn(err.Error())
	}
	sched, err := plan.Build(s.declared, stored, s.registeredTypes, s.pendingDestroy)
	if err != nil {
		return nil, err
	}
	for _, w := range sched.Warnings {
		s.log.Warn(w)
	}
	return sched, nil
}

// Apply executes sched (normally the result of the most recent Plan call)
// against the Store's provider, checkpointing the mirror to disk as it goes
// (spec §4.3 "apply(schedule)", §4.5, §4.7).
func (s *Store[P]) Apply(ctx context.Context, sched *plan.Schedule[P]) error {
	stored, err := persist.Load(s.path, s.registry)
	if stored == nil {
		return err
	}
	if err != nil {
		s.log.Warn(err.Error())
	}

	working := make(apply.Working[P], len(stored))
	for key, entry := range stored {
		if entry.Inert {
			continue
		}
		val, ok := entry.Payload.(resource.Capability[P])
		if !ok {
			continue
		}
		working[key] = val
	}

	applied := 0
	checkpoint := func(ctx context.Context, w apply.Working[P], _ string) error {
		applied++
		remaining := len(sched.Order) - applied
		if applied%s.checkpointInterval != 0 && remaining != 0 {
			return nil
		}
		return s.save(w)
	}

	if err := apply.Apply(ctx, s.provider, sched, working, checkpoint); err != nil {
		return err
	}
	return nil
}

func (s *Store[P]) save(working apply.Working[P]) error {
	mirror := make(persist.Mirror, len(working))
	for key, val := range working {
		typeTag := val.TypeTag()
		mirror[key] = persist.Entry{
			TypeTag:       typeTag,
			SchemaVersion: s.schemaVersions[typeTag],
			Payload:       val,
		}
	}
	return persist.Save(s.path, mirror)
}

// Schedule renders sched for human consumption (spec §4.3
// "get_schedule_string()").
func (s *Store[P]) Schedule(sched *plan.Schedule[P]) string {
	return sched.String()
}

// SaveApplyGraph writes sched's DAG in Graphviz dot format to path (spec
// §4.3 "save_apply_graph(path)").
func (s *Store[P]) SaveApplyGraph(sched *plan.Schedule[P], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &tferr.PersistenceError{Op: "save-graph", Path: path, Cause: err}
	}
	defer f.Close()
	if err := sched.WriteGraph(f); err != nil {
		return &tferr.PersistenceError{Op: "save-graph", Path: path, Cause: err}
	}
	return nil
}
