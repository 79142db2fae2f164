package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Subscribe to a work-order stream
// @Description  Registers a subscriber and ensures exactly one push-stream connection exists for the work order. Idempotent while connecting/connected.
// @Tags         streams
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      202  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/stream [post]
func (h *Handler) connectStream(c *gin.Context) {
	id := c.Param("id")
	h.services.Streams.Connect(id)
	c.JSON(http.StatusAccepted, gin.H{
		"work_order_id": id,
		"state":         string(h.services.Streams.State(id)),
	})
}

// @Summary      Unsubscribe from a work-order stream
// @Description  Drops one subscriber. The transport closes only when the last subscriber leaves; buffered logs and progress are retained for history display.
// @Tags         streams
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/stream [delete]
func (h *Handler) disconnectStream(c *gin.Context) {
	id := c.Param("id")
	h.services.Streams.Disconnect(id)
	c.JSON(http.StatusOK, gin.H{
		"work_order_id": id,
		"state":         string(h.services.Streams.State(id)),
	})
}

// @Summary      Force an immediate reconnect
// @Description  Cancels any pending backoff wait and dials right away. This is the manual retry behind the dashboard's retry button.
// @Tags         streams
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      202  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/stream/reconnect [post]
func (h *Handler) reconnectStream(c *gin.Context) {
	id := c.Param("id")
	h.services.Streams.Reconnect(id)
	c.JSON(http.StatusAccepted, gin.H{
		"work_order_id": id,
		"state":         string(h.services.Streams.State(id)),
	})
}

// @Summary      Connection state for a work order
// @Tags         streams
// @Produce      json
// @Param        id  path  string  true  "Work order id"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/workorders/{id}/stream/state [get]
func (h *Handler) streamState(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"work_order_id": id,
		"state":         string(h.services.Streams.State(id)),
	})
}

// @Summary      Disconnect every tracked stream
// @Description  Tears down all connections and clears all per-id state.
// @Tags         streams
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/streams [delete]
func (h *Handler) disconnectAll(c *gin.Context) {
	h.services.Streams.DisconnectAll()
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}
