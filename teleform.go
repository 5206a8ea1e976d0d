// Package teleform is the public facade of the reconciliation engine: it
// re-exports the handful of types and functions an embedder actually needs
// (spec §6), so a caller can import a single package instead of reaching
// into cell, resource, plan, apply, persist, and store individually.
package teleform

import (
	"github.com/schell/teleform/persist"
	"github.com/schell/teleform/plan"
	"github.com/schell/teleform/resource"
	"github.com/schell/teleform/store"
)

// Capability is the per-resource-type contract a caller implements (spec §4.2).
type Capability[P any] = resource.Capability[P]

// Defaults supplies fail-loudly default method bodies for Capability (spec §4.2).
type Defaults[P any] = resource.Defaults[P]

// Decoder turns a stored entry's raw payload back into a concrete resource
// value (spec §4.7).
type Decoder = persist.Decoder

// Schedule is the scheduled DAG a Plan call produces (spec §4.4).
type Schedule[P any] = plan.Schedule[P]

// Store is the top-level embeddable handle (spec §4.3).
type Store[P any] = store.Store[P]

// Option configures a Store at construction time.
type Option[P any] = store.Option[P]

// WithCheckpointEveryNode persists the mirror after every applied node
// (the default).
func WithCheckpointEveryNode[P any]() Option[P] { return store.WithCheckpointEveryNode[P]() }

// WithCheckpointInterval persists the mirror only once every n applied
// nodes.
func WithCheckpointInterval[P any](n int) Option[P] { return store.WithCheckpointInterval[P](n) }

// WithSchemaVersion records the schema_version tag written for typeTag's
// entries on save (spec §4.7).
func WithSchemaVersion[P any](typeTag, version string) Option[P] {
	return store.WithSchemaVersion[P](typeTag, version)
}

// New constructs a Store backed by the mirror file at path (spec §6).
func New[P any](path string, provider P, opts ...Option[P]) *Store[P] {
	return store.New(path, provider, opts...)
}
