// Package resource defines the per-type capability surface every resource
// implementation must provide (spec §4.2): a stable type tag, dependency
// extraction, change classification, and CRUD methods against a provider of
// type P.
package resource

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by the embeddable Defaults implementations
// of Read/Create/Update/Delete. Spec §4.2 calls for these defaults to "fail
// loudly," encouraging each resource type to opt in per method rather than
// silently no-op.
var ErrNotImplemented = errors.New("teleform: capability method not implemented")

// Capability is the per-resource-type contract, parameterized over the
// provider handle P (spec §4.2). Implementations are expected to be value
// or pointer receivers over a plain struct of cell.Local/cell.Remote/cell.Ref
// fields; Create/Read/Update operate on the receiver in place, so capability
// methods should be implemented on pointer receivers in practice.
type Capability[P any] interface {
	// TypeTag returns a stable, globally unique label used as the
	// discriminant in persisted entries.
	TypeTag() string

	// Dependencies returns every resource_key reachable from this value's
	// remote references, however deeply nested. Order is irrelevant,
	// duplicates are tolerated.
	Dependencies() []string

	// ShouldRecreate reports whether the change from stored to the receiver
	// (the declared value) requires destroy-then-create rather than an
	// in-place update.
	ShouldRecreate(stored Capability[P]) bool

	// ShouldUpdate reports whether an in-place update is required. If both
	// ShouldRecreate and ShouldUpdate are false, the planner treats the pair
	// as a no-op.
	ShouldUpdate(stored Capability[P]) bool

	// Create materializes the resource. On success every Remote field of
	// the receiver must be Known.
	Create(ctx context.Context, provider P) error

	// Read refreshes Remote fields from the platform. Optional: the
	// embeddable Defaults type returns ErrNotImplemented, and the applier
	// never calls Read itself (spec §9 leaves proactive refresh as an open
	// question); it exists for callers who want to invoke it explicitly.
	Read(ctx context.Context, provider P) error

	// Update performs an in-place update against stored, reconciling Remote
	// fields on success.
	Update(ctx context.Context, provider P, stored Capability[P]) error

	// Delete destroys the remote artifact.
	Delete(ctx context.Context, provider P) error
}

// Defaults is embedded by resource implementations to get the spec's
// "fail loudly" default bodies for Read/Create/Update/Delete and the
// "false" defaults for ShouldRecreate/ShouldUpdate, so each type only needs
// to implement the methods it actually supports.
type Defaults[P any] struct{}

func (Defaults[P]) ShouldRecreate(Capability[P]) bool { return false }
func (Defaults[P]) ShouldUpdate(Capability[P]) bool   { return false }

func (Defaults[P]) Read(context.Context, P) error {
	return fmt.Errorf("read: %w", ErrNotImplemented)
}

func (Defaults[P]) Create(context.Context, P) error {
	return fmt.Errorf("create: %w", ErrNotImplemented)
}

func (Defaults[P]) Update(context.Context, P, Capability[P]) error {
	return fmt.Errorf("update: %w", ErrNotImplemented)
}

func (Defaults[P]) Delete(context.Context, P) error {
	return fmt.Errorf("delete: %w", ErrNotImplemented)
}
