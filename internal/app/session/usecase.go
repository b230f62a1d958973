// Package session opens a save into a fulfillment host, keeps it as the one
// active session, and persists it back. Every kernel call made through the
// session is serialized by one lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/fulfillment"
	"rewardcore/internal/domain/gamestate"
	"rewardcore/internal/domain/lifecycle"
)

var (
	ErrInvalidRequest  = errors.New("invalid session request")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionActive   = errors.New("a session is already open")
)

var tracer = otel.Tracer("rewardcore.session")

// RegistrySource hands out the container registry new sessions start from.
type RegistrySource interface {
	Current() *container.Registry
}

// Session is an open save.
type Session struct {
	SaveID   string
	Version  int64
	Host     *fulfillment.Host
	Profile  *fulfillment.Profile
	Ledger   *gamestate.Ledger
	OpenedAt time.Time
}

type UseCase struct {
	TxManager  ports.TxManager
	Saves      ports.SaveRepository
	Events     ports.EventRepository
	Containers RegistrySource
	Logger     lifecycle.Logger
	Resolution ports.ResolutionMetrics
	Metrics    ports.SessionMetrics
	NewID      func() string
	Now        func() time.Time

	mu     sync.Mutex
	active *Session
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u *UseCase) newID() string {
	if u.NewID != nil {
		return u.NewID()
	}
	return uuid.NewString()
}

func (u *UseCase) logger() lifecycle.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return lifecycle.Discard()
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Create stores a new save. Profile may be empty for a save with no
// placements yet; a non-empty profile must decode.
func (u *UseCase) Create(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	ctx, span := tracer.Start(ctx, "session.Create")
	defer span.End()

	saveID := strings.TrimSpace(req.SaveID)
	if saveID == "" {
		saveID = u.newID()
	}
	span.SetAttributes(attribute.String("save.id", saveID))

	profile := fulfillment.NewProfile()
	if len(req.Profile) > 0 {
		decoded, err := fulfillment.DecodeProfile(req.Profile)
		if err != nil {
			return CreateResponse{}, fail(span, fmt.Errorf("%w: %v", ports.ErrInvalidDocument, err))
		}
		profile = decoded
	}
	profileDoc, err := fulfillment.EncodeProfile(profile)
	if err != nil {
		return CreateResponse{}, fail(span, err)
	}
	ledger := gamestate.NewLedger()
	for resource, amount := range req.Resources {
		ledger.Grant(resource, amount)
	}
	ledgerDoc, err := ledger.Encode()
	if err != nil {
		return CreateResponse{}, fail(span, err)
	}

	rec := ports.SaveRecord{SaveID: saveID, Profile: profileDoc, Ledger: ledgerDoc, Version: 1, UpdatedAt: u.now()}
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := u.Saves.GetBySaveID(txCtx, saveID); err == nil {
			return ports.ErrConflict
		} else if !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		return u.Saves.SaveWithVersion(txCtx, rec, 0)
	})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) && u.Metrics != nil {
			u.Metrics.RecordConflict()
		}
		return CreateResponse{}, fail(span, err)
	}
	u.logger().Info("save created", "save_id", saveID, "placements", len(profile.Placements()))
	return CreateResponse{SaveID: saveID, Version: rec.Version}, nil
}

// Open loads a save into a fresh host and makes it the active session. The
// host notifications run in game order: before start (new games only), enter
// game which loads the profile, then after start or after continue.
func (u *UseCase) Open(ctx context.Context, req OpenRequest) (OpenResponse, error) {
	ctx, span := tracer.Start(ctx, "session.Open", trace.WithAttributes(attribute.String("save.id", req.SaveID)))
	defer span.End()

	saveID := strings.TrimSpace(req.SaveID)
	if saveID == "" {
		return OpenResponse{}, fail(span, ErrInvalidRequest)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active != nil {
		return OpenResponse{}, fail(span, ErrSessionActive)
	}

	var rec ports.SaveRecord
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = u.Saves.GetBySaveID(txCtx, saveID)
		return err
	})
	if err != nil {
		u.recordFailure()
		return OpenResponse{}, fail(span, err)
	}

	s, err := u.restore(rec)
	if err != nil {
		u.recordFailure()
		return OpenResponse{}, fail(span, err)
	}

	if req.NewGame {
		s.Host.NotifyBeforeStartNewGame()
	}
	if err := s.Host.NotifyOnEnterGame(); err != nil {
		_ = s.Host.Detach()
		u.recordFailure()
		return OpenResponse{}, fail(span, fmt.Errorf("load profile %s: %w", saveID, err))
	}
	if req.NewGame {
		s.Host.NotifyAfterStartNewGame()
	} else {
		s.Host.NotifyAfterContinueGame()
	}

	u.active = s
	if u.Metrics != nil {
		u.Metrics.RecordOpened()
	}
	u.appendEvents(ctx, saveID, fulfillment.DomainEvent{
		Type:       fulfillment.EventProfileLoaded,
		OccurredAt: u.now(),
		Payload: map[string]any{
			"version":    rec.Version,
			"new_game":   req.NewGame,
			"placements": len(s.Profile.Placements()),
		},
	})
	span.SetAttributes(attribute.Int("profile.placements", len(s.Profile.Placements())))
	return OpenResponse{
		SaveID:     saveID,
		Version:    s.Version,
		State:      s.Profile.State().String(),
		Placements: len(s.Profile.Placements()),
	}, nil
}

func (u *UseCase) restore(rec ports.SaveRecord) (*Session, error) {
	profile, err := fulfillment.DecodeProfile(rec.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: profile of %s: %v", ports.ErrInvalidDocument, rec.SaveID, err)
	}
	ledger, err := gamestate.Decode(rec.Ledger)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger of %s: %v", ports.ErrInvalidDocument, rec.SaveID, err)
	}
	var reg *container.Registry
	if u.Containers != nil {
		reg = u.Containers.Current()
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: no container registry", fulfillment.ErrHostMisconfigured)
	}
	host, err := fulfillment.NewHost(fulfillment.HostConfig{
		Logger:     u.logger(),
		Containers: reg.Clone(),
		Game:       ledger,
		Observer:   u.Resolution,
	})
	if err != nil {
		return nil, err
	}
	if err := host.Attach(profile); err != nil {
		return nil, err
	}
	return &Session{
		SaveID:   rec.SaveID,
		Version:  rec.Version,
		Host:     host,
		Profile:  profile,
		Ledger:   ledger,
		OpenedAt: u.now(),
	}, nil
}

// Save persists the active session without closing it.
func (u *UseCase) Save(ctx context.Context) (SaveResponse, error) {
	ctx, span := tracer.Start(ctx, "session.Save")
	defer span.End()

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active == nil {
		return SaveResponse{}, fail(span, ErrNoActiveSession)
	}
	if err := u.persist(ctx, u.active); err != nil {
		return SaveResponse{}, fail(span, err)
	}
	return SaveResponse{SaveID: u.active.SaveID, Version: u.active.Version}, nil
}

// Close leaves the game, which unloads the profile, detaches it and
// persists the save. The session is released even if persisting fails.
func (u *UseCase) Close(ctx context.Context) (SaveResponse, error) {
	ctx, span := tracer.Start(ctx, "session.Close")
	defer span.End()

	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.active
	if s == nil {
		return SaveResponse{}, fail(span, ErrNoActiveSession)
	}
	span.SetAttributes(attribute.String("save.id", s.SaveID))
	u.active = nil

	leaveErr := s.Host.NotifyOnLeaveGame()
	detachErr := s.Host.Detach()
	if u.Metrics != nil {
		u.Metrics.RecordClosed()
	}
	if err := u.persist(ctx, s); err != nil {
		return SaveResponse{}, fail(span, err)
	}
	u.appendEvents(ctx, s.SaveID, fulfillment.DomainEvent{
		Type:       fulfillment.EventProfileUnloaded,
		OccurredAt: u.now(),
		Payload:    map[string]any{"version": s.Version},
	})
	if err := errors.Join(leaveErr, detachErr); err != nil {
		return SaveResponse{SaveID: s.SaveID, Version: s.Version}, fail(span, err)
	}
	return SaveResponse{SaveID: s.SaveID, Version: s.Version}, nil
}

func (u *UseCase) persist(ctx context.Context, s *Session) error {
	profileDoc, err := fulfillment.EncodeProfile(s.Profile)
	if err != nil {
		return err
	}
	ledgerDoc, err := s.Ledger.Encode()
	if err != nil {
		return err
	}
	next := ports.SaveRecord{
		SaveID:    s.SaveID,
		Profile:   profileDoc,
		Ledger:    ledgerDoc,
		Version:   s.Version + 1,
		UpdatedAt: u.now(),
	}
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.Saves.SaveWithVersion(txCtx, next, s.Version)
	})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) && u.Metrics != nil {
			u.Metrics.RecordConflict()
		} else {
			u.recordFailure()
		}
		return err
	}
	s.Version = next.Version
	return nil
}

// WithActive runs fn against the active session while holding the session
// lock.
func (u *UseCase) WithActive(fn func(s *Session) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active == nil {
		return ErrNoActiveSession
	}
	return fn(u.active)
}

// AppendEvents records domain events for a save. Failures are logged, not
// returned: the history is an audit trail and never blocks gameplay.
func (u *UseCase) AppendEvents(ctx context.Context, saveID string, events ...fulfillment.DomainEvent) {
	u.appendEvents(ctx, saveID, events...)
}

func (u *UseCase) appendEvents(ctx context.Context, saveID string, events ...fulfillment.DomainEvent) {
	if u.Events == nil || len(events) == 0 {
		return
	}
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.Events.Append(txCtx, saveID, events)
	})
	if err != nil {
		u.logger().Warn("append domain events failed", "save_id", saveID, "error", err.Error())
	}
}

func (u *UseCase) recordFailure() {
	if u.Metrics != nil {
		u.Metrics.RecordFailure()
	}
}
