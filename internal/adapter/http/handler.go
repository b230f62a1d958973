package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"rewardcore/internal/app/catalog"
	"rewardcore/internal/app/placement"
	"rewardcore/internal/app/ports"
	"rewardcore/internal/app/replay"
	"rewardcore/internal/app/session"
	"rewardcore/internal/app/status"
	"rewardcore/internal/domain/codec"
	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/fulfillment"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	SessionUC   *session.UseCase
	PlacementUC placement.UseCase
	StatusUC    status.UseCase
	ReplayUC    replay.UseCase
	CatalogUC   catalog.UseCase
	KPI         kpiSnapshotProvider
	// AllowOrigin is the CORS origin; empty allows any.
	AllowOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.AllowOrigin))

	saves := s.Group("/api/saves")
	saves.POST("", h.createSave)
	saves.POST("/:id/open", h.openSave)
	saves.GET("/:id/replay", h.replay)

	sess := s.Group("/api/session")
	sess.POST("/save", h.save)
	sess.POST("/close", h.close)
	sess.GET("/status", h.status)
	sess.POST("/placements", h.addPlacement)
	sess.POST("/placements/:name/claim", h.claim)
	sess.POST("/events/:event", h.notify)

	s.GET("/api/containers", h.containers)
	s.POST("/api/containers/reload", h.reloadContainers)
	s.GET("/ops/kpi", h.kpi)
}

type createSaveRequest struct {
	SaveID    string          `json:"save_id"`
	Profile   json.RawMessage `json:"profile,omitempty"`
	Resources map[string]int  `json:"resources,omitempty"`
}

type openSaveRequest struct {
	NewGame bool `json:"new_game"`
}

type addPlacementRequest struct {
	Placement json.RawMessage `json:"placement"`
	Policy    string          `json:"policy"`
}

type notifyRequest struct {
	Scene string `json:"scene,omitempty"`
}

type reloadRequest struct {
	Catalog string `json:"catalog"`
}

func (h Handler) createSave(c context.Context, ctx *app.RequestContext) {
	var body createSaveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.SessionUC.Create(c, session.CreateRequest{
		SaveID:    body.SaveID,
		Profile:   body.Profile,
		Resources: body.Resources,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) openSave(c context.Context, ctx *app.RequestContext) {
	var body openSaveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.SessionUC.Open(c, session.OpenRequest{
		SaveID:  ctx.Param("id"),
		NewGame: body.NewGame,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) save(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SessionUC.Save(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) close(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SessionUC.Close(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) addPlacement(c context.Context, ctx *app.RequestContext) {
	var body addPlacementRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.PlacementUC.Add(c, placement.AddRequest{
		Placement: body.Placement,
		Policy:    body.Policy,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) claim(c context.Context, ctx *app.RequestContext) {
	resp, err := h.PlacementUC.Claim(c, ctx.Param("name"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) notify(c context.Context, ctx *app.RequestContext) {
	var body notifyRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.PlacementUC.Notify(c, placement.NotifyRequest{
		Event: ctx.Param("event"),
		Scene: body.Scene,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SaveID:       ctx.Param("id"),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) containers(c context.Context, ctx *app.RequestContext) {
	resp, err := h.CatalogUC.List(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) reloadContainers(c context.Context, ctx *app.RequestContext) {
	var body reloadRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.CatalogUC.Reload(c, body.Catalog)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	var (
		transition  *fulfillment.InvalidLifecycleTransitionError
		duplicate   *fulfillment.DuplicatePlacementError
		unsupported *fulfillment.UnsupportedContainerError
		active      *fulfillment.ProfileAlreadyActiveError
	)
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		writeErrorBody(ctx, consts.StatusConflict, "no_active_session", err.Error())
	case errors.Is(err, session.ErrSessionActive), errors.As(err, &active):
		writeErrorBody(ctx, consts.StatusConflict, "session_active", err.Error())
	case errors.As(err, &duplicate):
		writeErrorBody(ctx, consts.StatusConflict, "duplicate_placement", err.Error())
	case errors.As(err, &transition):
		writeErrorBody(ctx, consts.StatusConflict, "invalid_lifecycle_transition", err.Error())
	case errors.Is(err, fulfillment.ErrCannotPay):
		writeErrorBody(ctx, consts.StatusConflict, "cannot_pay", err.Error())
	case errors.As(err, &unsupported):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "unsupported_container", err.Error())
	case errors.Is(err, placement.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "placement_not_found", err.Error())
	case errors.Is(err, ports.ErrInvalidDocument),
		errors.Is(err, fulfillment.ErrInvalidPlacement),
		errors.Is(err, codec.ErrUnknownKind),
		errors.Is(err, container.ErrInvalidDefinition):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_document", err.Error())
	case errors.Is(err, session.ErrInvalidRequest),
		errors.Is(err, placement.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, catalog.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
