package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-orders/kds"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{hub: hub}
}

// Connect upgrades to a websocket and streams order_created and stock_update
// events until the display disconnects. ?station= labels the display.
func (kc *KDSController) Connect(c *gin.Context) {
	station := c.DefaultQuery("station", "kitchen")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.hub.RegisterClient(ws, station)

	// Displays never send anything; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.hub.UnregisterClient(ws)
}
