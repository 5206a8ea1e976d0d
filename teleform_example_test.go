package teleform_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schell/teleform"
	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/demoprovider"
)

// Example demonstrates the end-to-end library surface: declare a couple of
// resources against a fake platform, plan, and apply.
func Example() {
	platform := demoprovider.NewPlatform()
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "teleform-example-*")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	s := teleform.New[*demoprovider.Platform](
		filepath.Join(dir, "mirror.json"),
		platform,
		teleform.WithSchemaVersion[*demoprovider.Platform](demoprovider.BucketTypeTag, demoprovider.BucketSchemaVersion),
	)
	s.Register(demoprovider.TeamTypeTag, demoprovider.DecodeTeam)
	s.Register(demoprovider.BucketTypeTag, demoprovider.DecodeBucket)

	if err := s.Resource("team-platform", demoprovider.TeamTypeTag, &demoprovider.Team{
		Name: cell.NewLocal("platform"),
	}); err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := s.Resource("bucket-logs", demoprovider.BucketTypeTag, &demoprovider.Bucket{
		Name:              cell.NewLocal("logs"),
		VersioningEnabled: cell.NewLocal(true),
		OwnerTeam:         cell.FromRef[string]("team-platform", "ID"),
	}); err != nil {
		fmt.Println("error:", err)
		return
	}

	sched, err := s.Plan(ctx)
	if err != nil {
		fmt.Println("plan error:", err)
		return
	}
	fmt.Println("scheduled nodes:", len(sched.Order))

	if err := s.Apply(ctx, sched); err != nil {
		fmt.Println("apply error:", err)
		return
	}
	fmt.Println("applied")

	// Output:
	// scheduled nodes: 2
	// applied
}
