package replay

import (
	"context"
	"errors"
	"strings"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	TxManager ports.TxManager
	Events    ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.SaveID) == "" {
		return Response{}, ErrInvalidRequest
	}
	var events []fulfillment.DomainEvent
	list := func(ctx context.Context) error {
		var err error
		events, err = u.Events.ListBySaveID(ctx, req.SaveID, req.Limit)
		return err
	}
	var err error
	if u.TxManager != nil {
		err = u.TxManager.RunInTx(ctx, list)
	} else {
		err = list(ctx)
	}
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	return Response{Events: events, Summary: summarize(events)}, nil
}

func filterByTimeWindow(events []fulfillment.DomainEvent, from, to int64) []fulfillment.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]fulfillment.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// summarize walks events oldest first; the repository lists newest first.
func summarize(events []fulfillment.DomainEvent) Summary {
	s := Summary{Containers: map[string]string{}, Given: map[string][]string{}}
	for i := len(events) - 1; i >= 0; i-- {
		evt := events[i]
		name, _ := evt.Payload["placement"].(string)
		switch evt.Type {
		case fulfillment.EventProfileLoaded:
			s.Sessions++
		case fulfillment.EventPlacementAdded:
			if c, ok := evt.Payload["container"].(string); ok && name != "" && c != "" {
				s.Containers[name] = c
			}
		case fulfillment.EventPlacementClaimed:
			s.Claims++
			if c, ok := evt.Payload["container"].(string); ok && name != "" {
				s.Containers[name] = c
			}
			s.Given[name] = append(s.Given[name], strs(evt.Payload["given"])...)
		}
	}
	return s
}

// strs reads a string list from a payload that may have gone through JSON.
func strs(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, x := range list {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
