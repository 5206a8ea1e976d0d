// Package tferr implements the error taxonomy from spec §7: a fixed set of
// typed errors, each naming the offending resource_key where relevant, so
// callers can use errors.As rather than matching on message text. The types
// that carry an underlying cause (SchemaMigrationError, PersistenceError,
// ProviderError) expose it through Unwrap for errors.Is/errors.As.
package tferr

import (
	"fmt"

	"github.com/hashicorp/errwrap"
)

// DuplicateKeyError is returned by Store.Resource when a resource_key has
// already been declared in the current session (spec §3 invariant 1).
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("teleform: resource %q already declared", e.Key)
}

// MissingResourceError is returned when a remote reference names a
// resource_key that was not declared by the time the plan is built (spec §3
// invariant 2).
type MissingResourceError struct {
	Key        string
	ReferentOf string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("teleform: resource %q (referenced by %q) was not declared", e.Key, e.ReferentOf)
}

// CyclicPlanError is returned by Plan when the dependency graph induced by
// the declared set contains a cycle (spec §4.4).
type CyclicPlanError struct {
	Keys []string
}

func (e *CyclicPlanError) Error() string {
	return fmt.Sprintf("teleform: cyclic plan, cycle members: %v", e.Keys)
}

// UnresolvedDependencyError is returned by Apply when a node's declared
// value still contains an Unknown value where a remote reference should have
// already been resolved (spec §4.5 step 1). This always indicates a planner
// bug or a missing edge, never a normal runtime condition.
type UnresolvedDependencyError struct {
	Key   string
	Field string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("teleform: unresolved dependency: %s.%s is still Unknown at apply time", e.Key, e.Field)
}

// SchemaMigrationError is returned when a stored entry's payload could not be
// coerced into its type's current shape (spec §4.7).
type SchemaMigrationError struct {
	Key     string
	TypeTag string
	Detail  string
	Cause   error
}

func (e *SchemaMigrationError) Error() string {
	return fmt.Sprintf("teleform: %q (%s): could not migrate stored schema: %s", e.Key, e.TypeTag, e.Detail)
}

func (e *SchemaMigrationError) Unwrap() error {
	return e.Cause
}

// PersistenceError wraps an I/O or codec failure encountered while loading
// or saving the store mirror (spec §7).
type PersistenceError struct {
	Op    string
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("teleform: persistence %s %q: %s", e.Op, e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ProviderError wraps any capability-method failure (create/read/update/
// delete) without the core needing to know the shape of the concrete
// platform error. It uses errwrap so a caller-defined error payload can
// still be found with errwrap.Walk or errors.As against the wrapped type,
// even though tferr never inspects it itself (spec §7 "carries a
// caller-defined payload marker so concrete platform errors can surface
// without the core knowing their shape").
type ProviderError struct {
	Key    string
	Action string
	Cause  error
}

func (e *ProviderError) Error() string {
	return errwrap.Wrapf(fmt.Sprintf("teleform: provider error during %s of %q: {{err}}", e.Action, e.Key), e.Cause).Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError wraps a capability-method error with its resource_key and
// the action being performed.
func NewProviderError(key, action string, cause error) *ProviderError {
	return &ProviderError{Key: key, Action: action, Cause: cause}
}
