// Package demoprovider is a self-contained, in-memory provider used by this
// module's own tests and examples: a fake Platform plus two resource types
// (Team and Bucket) wired together through a cell.Input reference, so the
// planner, applier, and store can all be exercised end-to-end without a real
// cloud SDK.
package demoprovider

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Platform is a fake remote system: an in-memory registry of teams and
// buckets, keyed by the IDs it mints itself. A real provider would be a
// client for an actual API; this one exists purely to give Create/Update/
// Delete something to call.
type Platform struct {
	mu sync.Mutex

	teams   map[string]teamRecord
	buckets map[string]bucketRecord
}

type teamRecord struct {
	Name string
}

type bucketRecord struct {
	Name              string
	VersioningEnabled bool
	OwnerTeamID       string
}

// NewPlatform constructs an empty fake platform.
func NewPlatform() *Platform {
	return &Platform{
		teams:   make(map[string]teamRecord),
		buckets: make(map[string]bucketRecord),
	}
}

func (p *Platform) createTeam(name string) (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	id := u.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.teams[id] = teamRecord{Name: name}
	return id, nil
}

func (p *Platform) deleteTeam(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.teams[id]; !ok {
		return fmt.Errorf("demoprovider: team %q does not exist", id)
	}
	delete(p.teams, id)
	return nil
}

func (p *Platform) createBucket(name string, versioning bool, ownerTeamID string) (id, arn string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id = uuid.NewString()
	p.buckets[id] = bucketRecord{Name: name, VersioningEnabled: versioning, OwnerTeamID: ownerTeamID}
	return id, fmt.Sprintf("arn:demo:bucket:%s", id), nil
}

func (p *Platform) updateBucket(id string, versioning bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.buckets[id]
	if !ok {
		return fmt.Errorf("demoprovider: bucket %q does not exist", id)
	}
	rec.VersioningEnabled = versioning
	p.buckets[id] = rec
	return nil
}

// wrapMissingID reports the programmer error of calling Update/Delete on a
// value whose Remote ID was never resolved — this should be unreachable
// through the applier, which always resolves or merges a Remote ID before
// invoking these methods, but guards against direct misuse of the type.
func (p *Platform) wrapMissingID(kind string) error {
	return fmt.Errorf("demoprovider: %s has no known id", kind)
}

func (p *Platform) deleteBucket(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.buckets[id]; !ok {
		return fmt.Errorf("demoprovider: bucket %q does not exist", id)
	}
	delete(p.buckets, id)
	return nil
}
