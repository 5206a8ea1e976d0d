package demoprovider_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/demoprovider"
)

func TestBucketCreateUpdateDelete(t *testing.T) {
	platform := demoprovider.NewPlatform()
	ctx := context.Background()

	b := &demoprovider.Bucket{
		Name:              cell.NewLocal("bucket-a"),
		VersioningEnabled: cell.NewLocal(false),
	}
	require.NoError(t, b.Create(ctx, platform))
	id, known := b.ID.Get()
	require.True(t, known)
	assert.NotEmpty(t, id)

	stored := *b
	b2 := &demoprovider.Bucket{
		Name:              b.Name,
		VersioningEnabled: cell.NewLocal(true),
	}
	require.NoError(t, b2.Update(ctx, platform, &stored))
	gotID, _ := b2.ID.Get()
	assert.Equal(t, id, gotID)

	require.NoError(t, b2.Delete(ctx, platform))
}

func TestBucketRecreateAndUpdateClassification(t *testing.T) {
	stored := &demoprovider.Bucket{Name: cell.NewLocal("a"), VersioningEnabled: cell.NewLocal(false)}

	sameNameDifferentVersioning := &demoprovider.Bucket{Name: cell.NewLocal("a"), VersioningEnabled: cell.NewLocal(true)}
	assert.False(t, sameNameDifferentVersioning.ShouldRecreate(stored))
	assert.True(t, sameNameDifferentVersioning.ShouldUpdate(stored))

	renamed := &demoprovider.Bucket{Name: cell.NewLocal("b"), VersioningEnabled: cell.NewLocal(false)}
	assert.True(t, renamed.ShouldRecreate(stored))
}

func TestDecodeBucketMigratesLegacyShapeForward(t *testing.T) {
	legacy := []byte(`{"name":"old-bucket","versioning_enabled":true,"id":"id-123","arn":"arn:demo:bucket:id-123"}`)

	decoded, err := demoprovider.DecodeBucket("1", legacy)
	require.NoError(t, err)
	b := decoded.(*demoprovider.Bucket)

	assert.Equal(t, "old-bucket", b.Name.Value)
	assert.True(t, b.VersioningEnabled.Value)
	id, _ := b.ID.Get()
	assert.Equal(t, "id-123", id)
	_, hasOwner := b.OwnerTeam.Value()
	assert.False(t, hasOwner, "legacy entries never had an owning team")
}

func TestDecodeBucketCurrentShapeRoundTrips(t *testing.T) {
	b := &demoprovider.Bucket{
		Name:              cell.NewLocal("bucket-a"),
		VersioningEnabled: cell.NewLocal(false),
		OwnerTeam:         cell.Of("team-123"),
		ID:                cell.Known("id-1"),
		ARN:               cell.Known("arn:demo:bucket:id-1"),
	}
	raw, err := json.Marshal(b)
	require.NoError(t, err)

	decoded, err := demoprovider.DecodeBucket(demoprovider.BucketSchemaVersion, raw)
	require.NoError(t, err)
	got := decoded.(*demoprovider.Bucket)

	// cmp.Diff uses cell.Local/cell.Remote's own Equal methods, so this
	// compares by value despite their unexported fields.
	if diff := cmp.Diff(b, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTeamCreateRename(t *testing.T) {
	platform := demoprovider.NewPlatform()
	ctx := context.Background()

	team := &demoprovider.Team{Name: cell.NewLocal("payments")}
	require.NoError(t, team.Create(ctx, platform))
	id, known := team.ID.Get()
	require.True(t, known)

	stored := *team
	renamed := &demoprovider.Team{Name: cell.NewLocal("platform")}
	assert.True(t, renamed.ShouldUpdate(&stored))
	require.NoError(t, renamed.Update(ctx, platform, &stored))
	newID, _ := renamed.ID.Get()
	assert.NotEqual(t, id, newID, "this demo provider renames by delete+recreate")
}
