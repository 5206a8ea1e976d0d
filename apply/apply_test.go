package apply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schell/teleform/apply"
	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/demoprovider"
	"github.com/schell/teleform/persist"
	"github.com/schell/teleform/plan"
)

func TestApplyCreatesDependentAfterDependency(t *testing.T) {
	platform := demoprovider.NewPlatform()

	declared := map[string]plan.Declared[*demoprovider.Platform]{
		"team-a": {
			TypeTag: demoprovider.TeamTypeTag,
			Value:   &demoprovider.Team{Name: cell.NewLocal("payments")},
		},
		"bucket-a": {
			TypeTag: demoprovider.BucketTypeTag,
			Value: &demoprovider.Bucket{
				Name:              cell.NewLocal("bucket-a"),
				VersioningEnabled: cell.NewLocal(true),
				OwnerTeam:         cell.FromRef[string]("team-a", "ID"),
			},
		},
	}

	sched, err := plan.Build(declared, persist.Mirror{}, nil, nil)
	require.NoError(t, err)

	working := make(apply.Working[*demoprovider.Platform])
	checkpoints := 0
	checkpoint := func(ctx context.Context, w apply.Working[*demoprovider.Platform], deleted string) error {
		checkpoints++
		return nil
	}

	err = apply.Apply(context.Background(), platform, sched, working, checkpoint)
	require.NoError(t, err)
	assert.Equal(t, 2, checkpoints)

	bucket := working["bucket-a"].(*demoprovider.Bucket)
	id, known := bucket.ID.Get()
	assert.True(t, known)
	assert.NotEmpty(t, id)

	team := working["team-a"].(*demoprovider.Team)
	teamID, known := team.ID.Get()
	assert.True(t, known)
	assert.NotEmpty(t, teamID)
}

func TestApplyDestroysInertWithoutPlatformCall(t *testing.T) {
	platform := demoprovider.NewPlatform()

	sched := &plan.Schedule[*demoprovider.Platform]{
		Nodes: map[string]*plan.Node[*demoprovider.Platform]{
			"orphan#destroy": {ID: "orphan#destroy", Key: "orphan", Action: plan.Destroy, Inert: true},
		},
		Order: []string{"orphan#destroy"},
	}

	working := make(apply.Working[*demoprovider.Platform])
	working["orphan"] = &demoprovider.Bucket{}

	err := apply.Apply(context.Background(), platform, sched, working, func(context.Context, apply.Working[*demoprovider.Platform], string) error {
		return nil
	})
	require.NoError(t, err)
	_, stillPresent := working["orphan"]
	assert.False(t, stillPresent)
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	platform := demoprovider.NewPlatform()

	declared := map[string]plan.Declared[*demoprovider.Platform]{
		"bucket-a": {
			TypeTag: demoprovider.BucketTypeTag,
			Value: &demoprovider.Bucket{
				Name:              cell.NewLocal("bucket-a"),
				VersioningEnabled: cell.NewLocal(false),
				OwnerTeam:         cell.FromRef[string]("team-missing", "ID"),
			},
		},
	}
	sched := &plan.Schedule[*demoprovider.Platform]{
		Nodes: map[string]*plan.Node[*demoprovider.Platform]{
			"bucket-a": {ID: "bucket-a", Key: "bucket-a", Action: plan.Create, Value: declared["bucket-a"].Value},
		},
		Order: []string{"bucket-a"},
	}

	working := make(apply.Working[*demoprovider.Platform])
	err := apply.Apply(context.Background(), platform, sched, working, func(context.Context, apply.Working[*demoprovider.Platform], string) error {
		return nil
	})
	require.Error(t, err)
	assert.Empty(t, working)
}
