package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/handler/dto"
	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/metrics"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
	"github.com/nurbek-a/driver-dispatch/pkg/wsgate"
)

const wsServiceName = "dispatch"

type TrackingService interface {
	LocationUpdate(ctx context.Context, driverID uuid.UUID, connID string, latitude, longitude float64) (models.PositionAck, error)
	TripTracker(ctx context.Context, orderID, driverID uuid.UUID, latitude, longitude float64) (float64, error)
}

// DriverStream terminates the driver's live websocket session. Each session
// gets a fresh connection id; the availability record binds to it so pickup
// pushes reach the latest connection.
type DriverStream struct {
	tracking TrackingService
	gate     *wsgate.Gate
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewDriverStream(tracking TrackingService, gate *wsgate.Gate, l logger.Logger) *DriverStream {
	return &DriverStream{
		tracking: tracking,
		gate:     gate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// HandleWS godoc
// @Summary      Driver live stream
// @Description  Websocket endpoint for streamed driver location samples
// @Tags         Drivers
// @Param        driver  query  string  true  "Driver ID"
// @Router       /ws/drivers [get]
func (h *DriverStream) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "driver_ws")

	driverID, err := uuid.Parse(r.URL.Query().Get("driver"))
	if err != nil {
		h.l.Warn(ctx, "invalid driver uuid format")
		badRequestResponse(w, "invalid driver uuid format")
		return
	}
	ctx = wrap.WithDriverID(ctx, driverID.String())

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	connID, err := uuid.New()
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to generate connection id", err)
		wsConn.Close()
		return
	}

	conn := wsgate.NewConn(ctx, connID.String(), wsConn)
	if err := h.gate.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(wsServiceName).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(wsServiceName).Dec()
	defer h.gate.Delete(connID.String())

	h.l.Info(ctx, "driver connected", "connection_id", connID.String())

	err = conn.Listen(func(msg map[string]any) error {
		return h.route(ctx, conn, driverID, msg)
	})
	if err != nil {
		h.l.Info(ctx, "driver stream closed", "connection_id", connID.String(), "reason", err.Error())
	}
}

// route dispatches one inbound message by its event field. Per-message
// failures are reported back on the stream without tearing it down.
func (h *DriverStream) route(ctx context.Context, conn *wsgate.Conn, driverID uuid.UUID, msg map[string]any) error {
	event, _ := msg["event"].(string)

	raw, err := json.Marshal(msg["data"])
	if err != nil {
		return sendError(conn, 0, "malformed message data")
	}

	switch event {
	case dto.WSEventLocationUpdate:
		return h.handleLocationUpdate(ctx, conn, driverID, raw)
	case dto.WSEventTripTracker:
		return h.handleTripTracker(ctx, conn, driverID, raw)
	default:
		return sendError(conn, 0, "unknown event")
	}
}

func (h *DriverStream) handleLocationUpdate(ctx context.Context, conn *wsgate.Conn, driverID uuid.UUID, raw []byte) error {
	var req dto.LocationUpdateMessage
	if err := json.Unmarshal(raw, &req); err != nil {
		return sendError(conn, 0, "malformed location update")
	}
	if errs := req.Validate(); errs != nil {
		return sendValidationError(conn, errs)
	}

	ack, err := h.tracking.LocationUpdate(ctx, driverID, conn.ID(), *req.Latitude, *req.Longitude)
	if err != nil {
		h.l.Warn(ctx, "location update rejected", "error", err.Error())
		return sendError(conn, types.Code(err), err.Error())
	}

	return conn.Send("position-ack", ack)
}

func (h *DriverStream) handleTripTracker(ctx context.Context, conn *wsgate.Conn, driverID uuid.UUID, raw []byte) error {
	var req dto.TripTrackerMessage
	if err := json.Unmarshal(raw, &req); err != nil {
		return sendError(conn, 0, "malformed trip sample")
	}
	if errs := req.Validate(); errs != nil {
		return sendValidationError(conn, errs)
	}

	total, err := h.tracking.TripTracker(ctx, req.OrderID, driverID, *req.Latitude, *req.Longitude)
	if err != nil {
		h.l.Warn(ctx, "trip sample rejected", "error", err.Error())
		return sendError(conn, types.Code(err), err.Error())
	}

	return conn.Send("trip-distance", envelope{
		"order_id":       req.OrderID,
		"total_distance": total,
	})
}

func sendError(conn *wsgate.Conn, code int, message string) error {
	payload := envelope{"error": message}
	if code != 0 {
		payload["code"] = code
	}
	return conn.Send("error", payload)
}

func sendValidationError(conn *wsgate.Conn, errs map[string]string) error {
	return conn.Send("error", envelope{"error": errs})
}
