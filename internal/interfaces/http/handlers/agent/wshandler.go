package agent

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/helios-home/helios/internal/application/agent/usecases"
	"github.com/helios-home/helios/internal/shared/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Agents authenticate through the handshake, not through the origin.
		return true
	},
}

// WSHandler upgrades agent connections and hands them to the connection use
// case.
type WSHandler struct {
	handleConnectionUC *usecases.HandleAgentConnectionUseCase
	logger             logger.Interface
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(handleConnectionUC *usecases.HandleAgentConnectionUseCase, log logger.Interface) *WSHandler {
	return &WSHandler{
		handleConnectionUC: handleConnectionUC,
		logger:             log,
	}
}

// Connect handles GET /api/v1/agents/websocket.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorw("failed to upgrade to websocket",
			"error", err,
			"ip", c.ClientIP(),
		)
		return
	}

	// The use case owns the connection from here; handshake errors and
	// session termination are its concern.
	if err := h.handleConnectionUC.Execute(c.Request.Context(), newWSStream(conn)); err != nil {
		h.logger.Debugw("agent connection ended", "error", err, "ip", c.ClientIP())
	}
}
