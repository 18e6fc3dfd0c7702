package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/models"
)

// Event types
const (
	EventOrderCreated = "order_created"
	EventStockUpdate  = "stock_update"
)

// DefaultWriteWait bounds a single write to one kitchen display.
const DefaultWriteWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// StockLevel is one entry of a stock_update event.
type StockLevel struct {
	IngredientID  uint   `json:"ingredientId"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
}

// Hub holds the connected kitchen displays. Writes to a connection happen
// under the hub mutex, so each socket has at most one writer. A display that
// does not take a message within WriteWait is dropped.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> station
	mutex   sync.Mutex
	log     logrus.FieldLogger

	WriteWait time.Duration
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]string),
		log:       log,
		WriteWait: DefaultWriteWait,
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, station string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = station
	h.log.WithField("station", station).Info("kitchen display connected")
}

// UnregisterClient removes and closes the connection.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrderCreated(order *models.Order) {
	h.broadcast(Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

func (h *Hub) BroadcastStockUpdate(ingredients []models.Ingredient) {
	levels := make([]StockLevel, 0, len(ingredients))
	for _, ing := range ingredients {
		levels = append(levels, StockLevel{
			IngredientID:  ing.ID,
			Name:          ing.Name,
			StockQuantity: ing.StockQuantity,
		})
	}
	h.broadcast(Message{
		Event: EventStockUpdate,
		Data:  levels,
	})
}

func (h *Hub) broadcast(msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal kds message")
		return
	}

	for conn, station := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(h.WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("station", station).Warn("dropping kitchen display")
			delete(h.clients, conn)
			conn.Close()
		}
	}
	h.log.WithFields(logrus.Fields{"event": msg.Event, "clients": len(h.clients)}).Debug("kds broadcast")
}
