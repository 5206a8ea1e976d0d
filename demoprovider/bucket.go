package demoprovider

import (
	"context"

	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/depwalk"
	"github.com/schell/teleform/resource"
)

// BucketTypeTag is the stable type_tag persisted alongside every Bucket
// entry.
const BucketTypeTag = "demo.bucket"

// BucketSchemaVersion is the current schema_version written for new Bucket
// entries. Version "2" added OwnerTeam; entries written at version "1" (or
// with no schema_version at all) never had an owning team, so DecodeBucket
// leaves OwnerTeam unset rather than failing the load.
const BucketSchemaVersion = "2"

// Bucket is a storage-bucket resource: declaring it chooses a Name and
// whether versioning is enabled, and optionally an owning Team by reference;
// creating it produces an ID and ARN.
type Bucket struct {
	resource.Defaults[*Platform]

	Name              cell.Local[string]
	VersioningEnabled cell.Local[bool]
	OwnerTeam         cell.Input[string]

	ID  cell.Remote[string]
	ARN cell.Remote[string]
}

func (b *Bucket) TypeTag() string { return BucketTypeTag }

func (b *Bucket) Dependencies() []string { return depwalk.Dependencies(b) }

func (b *Bucket) ShouldRecreate(stored resource.Capability[*Platform]) bool {
	s, ok := stored.(*Bucket)
	return ok && !b.Name.Equal(s.Name)
}

func (b *Bucket) ShouldUpdate(stored resource.Capability[*Platform]) bool {
	s, ok := stored.(*Bucket)
	if !ok {
		return false
	}
	return b.VersioningEnabled.Value != s.VersioningEnabled.Value
}

func (b *Bucket) Create(ctx context.Context, p *Platform) error {
	ownerTeamID, _ := b.OwnerTeam.Value()
	id, arn, err := p.createBucket(b.Name.Value, b.VersioningEnabled.Value, ownerTeamID)
	if err != nil {
		return err
	}
	b.ID = cell.Known(id)
	b.ARN = cell.Known(arn)
	return nil
}

func (b *Bucket) Update(ctx context.Context, p *Platform, stored resource.Capability[*Platform]) error {
	s := stored.(*Bucket)
	id, known := s.ID.Get()
	if !known {
		return p.wrapMissingID("bucket")
	}
	if err := p.updateBucket(id, b.VersioningEnabled.Value); err != nil {
		return err
	}
	b.ID = cell.Known(id)
	arn, _ := s.ARN.Get()
	b.ARN = cell.Known(arn)
	return nil
}

func (b *Bucket) Delete(ctx context.Context, p *Platform) error {
	id, known := b.ID.Get()
	if !known {
		return p.wrapMissingID("bucket")
	}
	return p.deleteBucket(id)
}
