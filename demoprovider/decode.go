package demoprovider

import (
	"encoding/json"
	"fmt"

	"github.com/schell/teleform/persist"
)

// legacyBucketV1 is the payload shape written before OwnerTeam existed
// (schema_version "1", or unset on very old entries).
type legacyBucketV1 struct {
	Name              string `json:"name"`
	VersioningEnabled bool   `json:"versioning_enabled"`
	ID                string `json:"id"`
	ARN               string `json:"arn"`
}

type bucketWire struct {
	Name              string  `json:"name"`
	VersioningEnabled bool    `json:"versioning_enabled"`
	OwnerTeamID       *string `json:"owner_team_id,omitempty"`
	ID                string  `json:"id"`
	ARN               string  `json:"arn"`
}

// MarshalJSON gives Bucket a stable wire shape independent of cell's own
// JSON encoding, so legacy decoding (below) has a single, simple format to
// target instead of reverse-engineering cell.Local/cell.Remote's wrapper
// shape.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	w := bucketWire{
		Name:              b.Name.Value,
		VersioningEnabled: b.VersioningEnabled.Value,
	}
	if teamID, ok := b.OwnerTeam.Value(); ok && teamID != "" {
		w.OwnerTeamID = &teamID
	}
	w.ID, _ = b.ID.Get()
	w.ARN, _ = b.ARN.Get()
	return json.Marshal(w)
}

// DecodeBucket implements persist.Decoder for BucketTypeTag, migrating the
// pre-OwnerTeam (schema_version < "2") shape forward per spec §4.7.
func DecodeBucket(schemaVersion string, data json.RawMessage) (any, error) {
	atV2, err := persist.SchemaAtLeast(schemaVersion, BucketSchemaVersion)
	if err != nil {
		return nil, err
	}

	if !atV2 {
		var legacy legacyBucketV1
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("demoprovider: decoding legacy bucket: %w", err)
		}
		return legacyToBucket(legacy), nil
	}

	var w bucketWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("demoprovider: decoding bucket: %w", err)
	}
	return wireToBucket(w), nil
}

func legacyToBucket(legacy legacyBucketV1) *Bucket {
	b := &Bucket{}
	b.Name = localString(legacy.Name)
	b.VersioningEnabled = localBool(legacy.VersioningEnabled)
	if legacy.ID != "" {
		b.ID = knownString(legacy.ID)
	}
	if legacy.ARN != "" {
		b.ARN = knownString(legacy.ARN)
	}
	return b
}

func wireToBucket(w bucketWire) *Bucket {
	b := &Bucket{}
	b.Name = localString(w.Name)
	b.VersioningEnabled = localBool(w.VersioningEnabled)
	if w.OwnerTeamID != nil {
		ownerInput := ofString(*w.OwnerTeamID)
		b.OwnerTeam = ownerInput
	}
	if w.ID != "" {
		b.ID = knownString(w.ID)
	}
	if w.ARN != "" {
		b.ARN = knownString(w.ARN)
	}
	return b
}

// teamWire is Team's own stable wire shape, for the same reason as
// bucketWire above.
type teamWire struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func (t *Team) MarshalJSON() ([]byte, error) {
	w := teamWire{Name: t.Name.Value}
	w.ID, _ = t.ID.Get()
	return json.Marshal(w)
}

func DecodeTeam(_ string, data json.RawMessage) (any, error) {
	var w teamWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("demoprovider: decoding team: %w", err)
	}
	t := &Team{Name: localString(w.Name)}
	if w.ID != "" {
		t.ID = knownString(w.ID)
	}
	return t, nil
}

// RegisterAll registers both demo resource types' decoders with reg, the
// shape every real provider's setup code is expected to follow (spec §4.3
// "register::<T>()").
func RegisterAll(reg *persist.Registry) {
	reg.Register(BucketTypeTag, DecodeBucket)
	reg.Register(TeamTypeTag, DecodeTeam)
}
