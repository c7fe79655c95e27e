package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/danuarts/takeout-app/hub"
	"github.com/danuarts/takeout-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationController bridges websocket connections into the
// notification hub.
type NotificationController struct {
	Hub *hub.Hub
}

func NewNotificationController(h *hub.Hub) *NotificationController {
	return &NotificationController{Hub: h}
}

// Subscribe -> upgrade the connection and stream lifecycle events to
// the operational dashboard until the client disconnects.
func (nc *NotificationController) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	connID := fmt.Sprintf("%s-%d", c.ClientIP(), time.Now().UnixNano())
	// Buffered so one slow write never blocks a broadcast.
	ch := make(chan []byte, 32)
	nc.Hub.Register(connID, ch)
	utils.InfoLogger.Printf("observer %s connected", connID)

	// Writer pump: hub channel -> websocket.
	go func() {
		defer conn.Close()
		for data := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				utils.InfoLogger.Printf("observer %s write failed: %v", connID, err)
				nc.Hub.Unregister(connID)
				return
			}
		}
	}()

	// Reader loop: only there to notice the disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				nc.Hub.Unregister(connID)
				utils.InfoLogger.Printf("observer %s disconnected", connID)
				return
			}
		}
	}()
}
