package status

import (
	"context"

	"rewardcore/internal/app/session"
	"rewardcore/internal/domain/fulfillment"
)

type UseCase struct {
	Sessions *session.UseCase
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	var out Response
	err := u.Sessions.WithActive(func(s *session.Session) error {
		out = view(s)
		return nil
	})
	return out, err
}

func view(s *session.Session) Response {
	out := Response{
		SaveID:    s.SaveID,
		Version:   s.Version,
		State:     s.Profile.State().String(),
		Resources: map[string]int{},
		Flags:     map[string]bool{},
	}
	for k, v := range s.Ledger.Resources {
		out.Resources[k] = v
	}
	for k, v := range s.Ledger.Flags {
		out.Flags[k] = v
	}
	for _, m := range s.Profile.Modules() {
		out.Modules = append(out.Modules, m.Kind())
	}
	for _, def := range s.Host.Containers.Definitions() {
		out.Containers = append(out.Containers, def.Name)
	}
	for _, pl := range s.Profile.Placements() {
		out.Placements = append(out.Placements, placementView(pl))
	}
	return out
}

func placementView(pl fulfillment.Placement) PlacementView {
	v := PlacementView{
		Name:          pl.PlacementName(),
		Kind:          pl.Kind(),
		ContainerType: pl.ContainerType(),
		Loaded:        pl.Loaded(),
		Items:         []ItemView{},
	}
	if loc := pl.Location(); loc != nil {
		v.Location = loc.LocationName()
	}
	if c := pl.Cost(); c != nil {
		v.Cost = &CostView{Kind: c.Kind(), Paid: c.Paid(), Recurring: c.Recurring(), Discount: c.DiscountRate()}
	}
	for _, it := range pl.Items() {
		v.Items = append(v.Items, ItemView{Name: it.ItemName(), Kind: it.Kind(), Obtained: it.Obtained()})
	}
	return v
}
