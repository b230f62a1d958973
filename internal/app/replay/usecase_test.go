package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"
)

func TestUseCase_SummarizesHistory(t *testing.T) {
	repo := fakeRepo{events: []fulfillment.DomainEvent{
		{Type: fulfillment.EventPlacementClaimed, OccurredAt: time.Unix(4, 0), Payload: map[string]any{"placement": "shop", "container": "Chest", "given": []any{"dash"}}},
		{Type: fulfillment.EventPlacementAdded, OccurredAt: time.Unix(3, 0), Payload: map[string]any{"placement": "shop", "container": "Shiny"}},
		{Type: fulfillment.EventProfileLoaded, OccurredAt: time.Unix(2, 0)},
		{Type: fulfillment.EventProfileLoaded, OccurredAt: time.Unix(1, 0)},
	}}

	uc := UseCase{Events: repo}
	out, err := uc.Execute(context.Background(), Request{SaveID: "s1", Limit: 10})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.Summary.Sessions != 2 || out.Summary.Claims != 1 {
		t.Fatalf("unexpected summary: %+v", out.Summary)
	}
	if out.Summary.Containers["shop"] != "Chest" {
		t.Fatalf("expected latest container Chest, got %s", out.Summary.Containers["shop"])
	}
	if got := out.Summary.Given["shop"]; len(got) != 1 || got[0] != "dash" {
		t.Fatalf("unexpected given: %v", got)
	}
	if len(out.Events) != 4 {
		t.Fatalf("expected 4 events")
	}
}

func TestUseCase_FiltersByTimeWindow(t *testing.T) {
	repo := fakeRepo{events: []fulfillment.DomainEvent{
		{Type: fulfillment.EventGameEvent, OccurredAt: time.Unix(30, 0)},
		{Type: fulfillment.EventGameEvent, OccurredAt: time.Unix(20, 0)},
		{Type: fulfillment.EventGameEvent, OccurredAt: time.Unix(10, 0)},
	}}

	out, err := UseCase{Events: repo}.Execute(context.Background(), Request{SaveID: "s1", OccurredFrom: 15, OccurredTo: 25})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(out.Events) != 1 || out.Events[0].OccurredAt.Unix() != 20 {
		t.Fatalf("unexpected window: %+v", out.Events)
	}
}

func TestUseCase_RejectsEmptySaveID(t *testing.T) {
	if _, err := (UseCase{}).Execute(context.Background(), Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

type fakeRepo struct {
	events []fulfillment.DomainEvent
}

func (r fakeRepo) Append(_ context.Context, _ string, _ []fulfillment.DomainEvent) error {
	return nil
}

func (r fakeRepo) ListBySaveID(_ context.Context, _ string, _ int) ([]fulfillment.DomainEvent, error) {
	return r.events, nil
}

var _ ports.EventRepository = fakeRepo{}
