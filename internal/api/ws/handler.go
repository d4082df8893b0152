package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/domain/session"
	"github.com/GriffinCanCode/netsession/internal/shared/id"
)

// Handler upgrades HTTP requests to event stream connections
type Handler struct {
	hub      *Hub
	manager  *session.Manager
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. allowOrigin decides which browser origins
// may connect; nil allows all.
func NewHandler(hub *Hub, manager *session.Manager, allowOrigin func(origin string) bool) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return allowOrigin == nil || allowOrigin(r.Header.Get("Origin"))
			},
		},
	}
}

// HandleConnection handles WebSocket upgrade and starts the client pumps.
// The first frame describes the current session.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(id.NewListenerID().String(), h.hub, conn)
	h.hub.register(cl)

	welcome := gin.H{"state": h.manager.State()}
	if sid := h.manager.SessionID(); sid != "" {
		welcome["session_id"] = sid
		welcome["file_name"] = h.manager.CurrentFileName()
	}
	cl.queue(Message{Type: "system", Message: "Connected to session event stream", Data: welcome})

	go cl.writePump()
	go cl.readPump()
}
