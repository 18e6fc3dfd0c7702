package kds_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-orders/controllers"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/models"
)

func startHub(t *testing.T) (*kds.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	hub := kds.NewHub(log)

	r := gin.New()
	r.GET("/kds/ws", controllers.NewKDSController(hub).Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/kds/ws?station=grill"
}

func dial(t *testing.T, hub *kds.Hub, url string, want int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == want }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) kds.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg kds.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastsToEveryDisplay(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, hub, url, 1)
	second := dial(t, hub, url, 2)

	hub.BroadcastOrderCreated(&models.Order{ID: 3, Status: models.OrderStatusCompleted, TotalPrice: decimal.NewFromInt(15)})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, kds.EventOrderCreated, msg.Event)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, float64(3), data["id"])
	}
}

func TestHub_StockUpdate(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, 1)

	hub.BroadcastStockUpdate([]models.Ingredient{{ID: 2, Name: "Queijo Cheddar", StockQuantity: 96}})

	msg := readMessage(t, conn)
	assert.Equal(t, kds.EventStockUpdate, msg.Event)
	raw, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ingredientId":2,"name":"Queijo Cheddar","stockQuantity":96}]`, string(raw))
}

func TestHub_DropsStalledDisplay(t *testing.T) {
	hub, url := startHub(t)
	hub.WriteWait = 50 * time.Millisecond
	dial(t, hub, url, 1)

	// Large enough that the stalled socket's buffers fill within a few writes.
	levels := make([]models.Ingredient, 20000)
	for i := range levels {
		levels[i] = models.Ingredient{ID: uint(i + 1), Name: strings.Repeat("x", 40), StockQuantity: i}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200 && hub.ClientCount() > 0; i++ {
			hub.BroadcastStockUpdate(levels)
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("broadcast blocked on a display that never reads")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, 1)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Broadcasting with no displays is a no-op.
	hub.BroadcastStockUpdate(nil)
}
