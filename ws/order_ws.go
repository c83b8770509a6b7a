package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"restaurant/events"
	"restaurant/pkg/resp"
	"restaurant/services"
	"restaurant/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AccessFunc decides whether a user may watch an order.
type AccessFunc func(ctx context.Context, userID uint, role string, orderID uint) error

// OrderHub pushes order events to the websocket clients watching that order.
// It implements events.Publisher so the order service can feed it directly.
type OrderHub struct {
	clients    map[uint]map[*websocket.Conn]bool // orderID -> watchers
	broadcast  chan events.Event
	register   chan Subscription
	unregister chan Subscription
	done       chan struct{}
	mu         sync.Mutex
	access     AccessFunc
	log        *zap.Logger
}

type Subscription struct {
	Conn    *websocket.Conn
	OrderID uint
	UserID  uint
}

func NewOrderHub(access AccessFunc, log *zap.Logger) *OrderHub {
	return &OrderHub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan events.Event, 64),
		register:   make(chan Subscription),
		unregister: make(chan Subscription),
		done:       make(chan struct{}),
		access:     access,
		log:        log,
	}
}

// Run owns the subscription table until ctx is cancelled, then closes every connection.
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, conns := range h.clients {
				for conn := range conns {
					_ = conn.Close()
				}
			}
			h.clients = make(map[uint]map[*websocket.Conn]bool)
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.OrderID] == nil {
				h.clients[sub.OrderID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.OrderID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			_ = sub.Conn.Close()
			h.drop(sub.OrderID, sub.Conn)

		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

// deliver writes e to the order's watchers outside the lock; a client that
// cannot take the frame within writeWait is dropped.
func (h *OrderHub) deliver(e events.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients[e.OrderID]))
	for conn := range h.clients[e.OrderID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(e); err != nil {
			h.log.Debug("ws write failed", zap.Uint("order_id", e.OrderID), zap.Error(err))
			_ = conn.Close()
			h.drop(e.OrderID, conn)
		}
	}
}

func (h *OrderHub) drop(orderID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[orderID], conn)
	if len(h.clients[orderID]) == 0 {
		delete(h.clients, orderID)
	}
}

// Watchers reports how many connections follow an order.
func (h *OrderHub) Watchers(orderID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[orderID])
}

func (h *OrderHub) Publish(ctx context.Context, e events.Event) error {
	select {
	case h.broadcast <- e:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *OrderHub) Close() error { return nil }

// writeWait bounds how long one slow client can hold up a broadcast.
var writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/orders/:id
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}
	claims := utils.CurrentClaims(c)
	if claims == nil {
		resp.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.access(c.Request.Context(), claims.UserID, claims.Role, uint(orderID)); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			resp.NotFound(c, err.Error())
		case errors.Is(err, services.ErrForbidden):
			resp.Forbidden(c, "no access")
		default:
			resp.ServerError(c, h.log, "Failed to open order stream", err)
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}

	sub := Subscription{Conn: conn, OrderID: uint(orderID), UserID: claims.UserID}
	select {
	case h.register <- sub:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go h.listen(sub)
}

// listen drains client frames so close and ping frames are processed; the
// stream is server to client only.
func (h *OrderHub) listen(sub Subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
