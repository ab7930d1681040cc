package handler

import (
	"context"
	"net/http"

	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/handler/dto"
	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/service/dispatch"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

type Dispatch struct {
	service DispatchService
	l       logger.Logger
}

type DispatchService interface {
	BroadcastPickup(ctx context.Context, passengerID uuid.UUID, route models.RouteSummary) error
}

func NewDispatch(service DispatchService, l logger.Logger) *Dispatch {
	return &Dispatch{
		service: service,
		l:       l,
	}
}

// BroadcastPickup godoc
// @Summary      Request a pickup
// @Description  Offers the route to the nearest available driver
// @Tags         Dispatch
// @Accept       json
// @Produce      json
// @Param        request  body  dto.PickupRequest  true  "Pickup request"
// @Success      201  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /dispatch/pickup [post]
func (h *Dispatch) BroadcastPickup(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "broadcast_pickup")

	var req dto.PickupRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	if errs := req.Validate(); errs != nil {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, errs)
		return
	}

	if err := h.service.BroadcastPickup(ctx, req.PassengerID, req.ToModel()); err != nil {
		if IsOneOf(err, dispatch.ErrNoRouteOrigin) {
			h.l.Warn(ctx, "no route origin for pickup request", "passenger_id", req.PassengerID)
			badRequestResponse(w, err.Error())
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to broadcast pickup", err)
		domainErrorResponse(w, err)
		return
	}

	response := envelope{
		"status":  "offered",
		"message": "pickup offered to the nearest available driver",
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "pickup broadcast completed", "passenger_id", req.PassengerID)
}
