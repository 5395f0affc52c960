package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zigbee-shepherd/shepherd/pkg/api/types"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// eventBroadcaster is the narrow shape api.Broadcaster satisfies,
// letting this handler subscribe to the Shepherd's ind stream without
// importing the api package (which imports this one).
type eventBroadcaster interface {
	Subscribe() chan shepherd.Event
	Unsubscribe(chan shepherd.Event)
}

// NetworkHandler handles join-window control and the live event stream
//.
type NetworkHandler struct {
	shepherd    *shepherd.Shepherd
	broadcaster eventBroadcaster
}

// NewNetworkHandler creates a new network handler.
func NewNetworkHandler(s *shepherd.Shepherd, b eventBroadcaster) *NetworkHandler {
	return &NetworkHandler{shepherd: s, broadcaster: b}
}

// Info handles GET /network/info
// @Summary      Get network info
// @Description  Returns the coordinator's network state snapshot
// @Tags         network
// @Produce      json
// @Success      200  {object}  types.InfoResponse
// @Router       /network/info [get]
func (h *NetworkHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, types.InfoResponse{Info: h.shepherd.Info()})
}

// PermitJoin handles POST /network/permit-join
// @Summary      Open or close the join window
// @Description  seconds=0 closes the window immediately; type is "all" or "coord" (default "all")
// @Tags         network
// @Accept       json
// @Produce      json
// @Param        request  body      types.PermitJoinRequest  true  "Join window duration and scope"
// @Success      200      {object}  types.PermitJoinResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse  "Coordinator not started"
// @Router       /network/permit-join [post]
func (h *NetworkHandler) PermitJoin(c *gin.Context) {
	var req types.PermitJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if err := h.shepherd.PermitJoin(c.Request.Context(), req.Seconds, req.Type); err != nil {
		writeShepherdError(c, err)
		return
	}

	joinType := req.Type
	if joinType == "" {
		joinType = "all"
	}
	c.JSON(http.StatusOK, types.PermitJoinResponse{
		Status:  "ok",
		Seconds: req.Seconds,
		Type:    joinType,
	})
}

// LqiScan handles GET /network/lqi-scan
// @Summary      Run a breadth-first LQI topology scan
// @Tags         network
// @Produce      json
// @Success      200  {object}  types.LqiScanResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /network/lqi-scan [get]
func (h *NetworkHandler) LqiScan(c *gin.Context) {
	neighbors, err := h.shepherd.LqiScan(c.Request.Context(), "", nil)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LqiScanResponse{Neighbors: neighbors, Count: len(neighbors)})
}

// Events handles GET /network/events (SSE stream)
// @Summary      Subscribe to coordinator events
// @Description  Server-Sent Events stream of devIncoming/devInterview/devLeaving/devChange/attReport/devStatus
// @Tags         network
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /network/events [get]
func (h *NetworkHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	eventChan := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(eventChan)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, string(event.Type), event)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{"timestamp": time.Now()})
			c.Writer.Flush()
		}
	}
}

// sendSSEEvent writes an SSE event to the response.
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	io.WriteString(w, "event: "+eventType+"\n")
	io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
