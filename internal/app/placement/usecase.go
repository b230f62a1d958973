// Package placement drives the open session: adding placements under a
// conflict policy, claiming them and forwarding host game events.
package placement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/app/session"
	"rewardcore/internal/domain/fulfillment"
	"rewardcore/internal/domain/lifecycle"
)

var (
	ErrInvalidRequest = errors.New("invalid placement request")
	ErrNotFound       = errors.New("placement not found")
)

var tracer = otel.Tracer("rewardcore.placement")

type UseCase struct {
	Sessions *session.UseCase
	Metrics  ports.SessionMetrics
	Now      func() time.Time
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func itemNames(items []fulfillment.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ItemName())
	}
	return out
}

func (u UseCase) Add(ctx context.Context, req AddRequest) (AddResponse, error) {
	policy, err := fulfillment.ParseConflictPolicy(req.Policy)
	if err != nil {
		return AddResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	pl, err := fulfillment.DecodePlacement(req.Placement)
	if err != nil {
		return AddResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var out AddResponse
	var saveID string
	err = u.Sessions.WithActive(func(s *session.Session) error {
		saveID = s.SaveID
		kept, err := s.Profile.AddPlacement(pl, policy)
		if kept != nil {
			out = AddResponse{
				Name:          kept.PlacementName(),
				ContainerType: kept.ContainerType(),
				Loaded:        kept.Loaded(),
				Items:         itemNames(kept.Items()),
			}
		}
		return err
	})
	if err != nil {
		return AddResponse{}, err
	}
	u.Sessions.AppendEvents(ctx, saveID, fulfillment.DomainEvent{
		Type:       fulfillment.EventPlacementAdded,
		OccurredAt: u.now(),
		Payload: map[string]any{
			"placement": out.Name,
			"policy":    string(policy),
			"container": out.ContainerType,
			"items":     out.Items,
		},
	})
	return out, nil
}

// Claim pays a placement's cost and gives its items.
func (u UseCase) Claim(ctx context.Context, name string) (ClaimResponse, error) {
	ctx, span := tracer.Start(ctx, "placement.Claim")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return ClaimResponse{}, ErrInvalidRequest
	}
	span.SetAttributes(attribute.String("placement.name", name))

	var out ClaimResponse
	var saveID string
	err := u.Sessions.WithActive(func(s *session.Session) error {
		saveID = s.SaveID
		pl, ok := s.Profile.Placement(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		given, err := fulfillment.Claim(s.Host, pl)
		if err != nil {
			return err
		}
		out = ClaimResponse{Placement: name, Container: pl.ContainerType(), Given: itemNames(given)}
		return nil
	})
	if u.Metrics != nil && !errors.Is(err, session.ErrNoActiveSession) && !errors.Is(err, ErrNotFound) {
		u.Metrics.RecordClaim(err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ClaimResponse{}, err
	}
	if len(out.Given) > 0 {
		u.Sessions.AppendEvents(ctx, saveID, fulfillment.DomainEvent{
			Type:       fulfillment.EventPlacementClaimed,
			OccurredAt: u.now(),
			Payload: map[string]any{
				"placement": name,
				"container": out.Container,
				"given":     out.Given,
			},
		})
	}
	return out, nil
}

// Notify forwards a host game event to the open session.
func (u UseCase) Notify(ctx context.Context, req NotifyRequest) (NotifyResponse, error) {
	event := lifecycle.Event(strings.TrimSpace(req.Event))
	if !lifecycle.IsGameEvent(event) {
		return NotifyResponse{}, fmt.Errorf("%w: unknown event %q", ErrInvalidRequest, req.Event)
	}
	var out NotifyResponse
	var saveID string
	err := u.Sessions.WithActive(func(s *session.Session) error {
		saveID = s.SaveID
		err := s.Host.Notify(event, req.Scene)
		out = NotifyResponse{Event: string(event), State: s.Profile.State().String()}
		return err
	})
	if err != nil {
		return NotifyResponse{}, err
	}
	payload := map[string]any{"event": string(event)}
	if req.Scene != "" {
		payload["scene"] = req.Scene
	}
	u.Sessions.AppendEvents(ctx, saveID, fulfillment.DomainEvent{
		Type:       fulfillment.EventGameEvent,
		OccurredAt: u.now(),
		Payload:    payload,
	})
	return out, nil
}
