package depwalk

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schell/teleform/cell"
)

type nested struct {
	Extra cell.Ref
}

type sample struct {
	Name     cell.Local[string]
	Owner    cell.Ref
	Tags     []cell.Ref
	Lookup   map[string]cell.Ref
	Nested   nested
	Id       cell.Remote[string]
	Ignored  string
	VpcInput cell.Input[string]
	NameIn   cell.Input[string]
}

func TestDependenciesFindsDirectAndNestedRefs(t *testing.T) {
	v := sample{
		Name:  cell.NewLocal("bucket-a"),
		Owner: cell.NewRef("team-b", "id"),
		Tags: []cell.Ref{
			cell.NewRef("tag-1", "name"),
			cell.NewRef("tag-2", "name"),
		},
		Lookup: map[string]cell.Ref{
			"primary": cell.NewRef("vpc-1", "cidr"),
		},
		Nested:   nested{Extra: cell.NewRef("policy-1", "arn")},
		Id:       cell.Unknown[string](),
		VpcInput: cell.FromRef[string]("vpc-2", "cidr"),
		NameIn:   cell.Of("not-a-dependency"),
	}

	got := Dependencies(v)
	sort.Strings(got)

	want := []string{"policy-1", "tag-1", "tag-2", "team-b", "vpc-1", "vpc-2"}
	assert.Equal(t, want, got)
}

func TestDependenciesNilIsEmpty(t *testing.T) {
	assert.Empty(t, Dependencies(nil))
}

func TestDependenciesIgnoresCellPayloads(t *testing.T) {
	v := struct {
		Name cell.Local[string]
		Id   cell.Remote[string]
	}{
		Name: cell.NewLocal("x"),
		Id:   cell.Known("id-1"),
	}
	assert.Empty(t, Dependencies(v))
}
