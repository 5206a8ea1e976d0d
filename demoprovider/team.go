package demoprovider

import (
	"context"

	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/depwalk"
	"github.com/schell/teleform/resource"
)

// TeamTypeTag is the stable type_tag persisted alongside every Team entry.
const TeamTypeTag = "demo.team"

// Team is a minimal resource: a name going in, an ID coming out. Bucket
// references a Team's ID through a cell.Input to exercise the late-binding
// path described in spec §4.5.
type Team struct {
	resource.Defaults[*Platform]

	Name cell.Local[string]
	ID   cell.Remote[string]
}

func (t *Team) TypeTag() string { return TeamTypeTag }

func (t *Team) Dependencies() []string { return depwalk.Dependencies(t) }

func (t *Team) ShouldUpdate(stored resource.Capability[*Platform]) bool {
	s, ok := stored.(*Team)
	return ok && !t.Name.Equal(s.Name)
}

func (t *Team) Create(ctx context.Context, p *Platform) error {
	id, err := p.createTeam(t.Name.Value)
	if err != nil {
		return err
	}
	t.ID = cell.Known(id)
	return nil
}

// Update renames the team by deleting it on the platform and creating it
// again under the new name, so the team gets a new ID. Team does not override
// ShouldRecreate, so a rename is still planned as an Update.
func (t *Team) Update(ctx context.Context, p *Platform, stored resource.Capability[*Platform]) error {
	s := stored.(*Team)
	id, known := s.ID.Get()
	if !known {
		return p.wrapMissingID("team")
	}
	if err := p.deleteTeam(id); err != nil {
		return err
	}
	newID, err := p.createTeam(t.Name.Value)
	if err != nil {
		return err
	}
	t.ID = cell.Known(newID)
	return nil
}

func (t *Team) Delete(ctx context.Context, p *Platform) error {
	id, known := t.ID.Get()
	if !known {
		return p.wrapMissingID("team")
	}
	return p.deleteTeam(id)
}
