package cell

import "fmt"

// Ref is a remote reference: a pointer at another resource's output field,
// whose resolution is deferred until that resource has been created or read
// within the current apply (spec §3 "Remote reference").
//
// Ref implements the depwalk.Referencer contract (see package depwalk)
// without depending on that package, so cell stays leaf-level.
type Ref struct {
	ResourceKey string
	Selector    string
}

// NewRef constructs a remote reference to another resource's field.
func NewRef(resourceKey, selector string) Ref {
	return Ref{ResourceKey: resourceKey, Selector: selector}
}

// RemoteKey returns the resource_key this reference points at, satisfying
// depwalk.Referencer.
func (r Ref) RemoteKey() string {
	return r.ResourceKey
}

func (r Ref) String() string {
	return fmt.Sprintf("%s.%s", r.ResourceKey, r.Selector)
}
