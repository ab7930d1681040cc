package handler

import (
	"context"
	"net/http"

	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/handler/dto"
	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

type Beacon struct {
	service BeaconService
	l       logger.Logger
}

type BeaconService interface {
	ActivateBeacon(ctx context.Context, driverID uuid.UUID, status types.BeaconStatus) (models.BeaconResult, error)
}

func NewBeacon(service BeaconService, l logger.Logger) *Beacon {
	return &Beacon{
		service: service,
		l:       l,
	}
}

// Activate godoc
// @Summary      Toggle driver beacon
// @Description  Declares the driver on or off duty and returns the dispatch endpoint
// @Tags         Drivers
// @Accept       json
// @Produce      json
// @Param        driver_id  path      string             true  "Driver ID"
// @Param        request    body      dto.BeaconRequest  true  "Beacon transition"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /drivers/{driver_id}/beacon [post]
func (h *Beacon) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "activate_beacon")

	driverID, err := uuid.Parse(r.PathValue("driver_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid driver uuid format")
		badRequestResponse(w, "invalid driver uuid format")
		return
	}

	var req dto.BeaconRequest
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

	result, err := h.service.ActivateBeacon(ctx, driverID, req.ToStatus())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to process beacon transition", err)
		domainErrorResponse(w, err)
		return
	}

	response := envelope{
		"active":   result.Active,
		"endpoint": result.Endpoint,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "beacon transition accepted", "driver_id", driverID, "active", result.Active)
}
