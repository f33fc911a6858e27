// README: Websocket feeds bridging the store watch channels to clients.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
	"mashwar/internal/types"
)

// writeTimeout bounds each snapshot write so a stalled client cannot pin the
// feed goroutine.
const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is cookie-less, so cross-origin upgrades carry no ambient
	// credentials worth protecting.
	CheckOrigin: func(*http.Request) bool { return true },
}

type WSHandler struct {
	orders *order.Service
	offers *offer.Service
	logger *slog.Logger
}

func NewWSHandler(orders *order.Service, offers *offer.Service, logger *slog.Logger) *WSHandler {
	return &WSHandler{orders: orders, offers: offers, logger: logger}
}

// OpenOrders streams the courier browse list: one JSON array per change.
func (h *WSHandler) OpenOrders(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	feed, err := h.orders.WatchOpen(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	conn, ok := h.upgrade(c)
	if !ok {
		return
	}
	defer conn.Close()
	go discardReads(conn, cancel)

	for snapshot := range feed {
		if snapshot == nil {
			snapshot = []order.Order{}
		}
		if !writeSnapshot(conn, snapshot) {
			return
		}
	}
}

// Order streams one order's state for the customer tracking screen.
func (h *WSHandler) Order(c *gin.Context) {
	id := types.ID(c.Param("id"))
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if _, err := h.orders.Get(ctx, id); err != nil {
		writeDomainError(c, err)
		return
	}
	feed, err := h.orders.WatchOrder(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	conn, ok := h.upgrade(c)
	if !ok {
		return
	}
	defer conn.Close()
	go discardReads(conn, cancel)

	for snapshot := range feed {
		if len(snapshot) == 0 {
			continue
		}
		if !writeSnapshot(conn, snapshot[0]) {
			return
		}
	}
}

// OrderOffers streams the offer list the customer is choosing from.
func (h *WSHandler) OrderOffers(c *gin.Context) {
	id := types.ID(c.Param("id"))
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if _, err := h.orders.Get(ctx, id); err != nil {
		writeDomainError(c, err)
		return
	}
	feed, err := h.offers.Watch(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	conn, ok := h.upgrade(c)
	if !ok {
		return
	}
	defer conn.Close()
	go discardReads(conn, cancel)

	for snapshot := range feed {
		if snapshot == nil {
			snapshot = []offer.Offer{}
		}
		if !writeSnapshot(conn, snapshot) {
			return
		}
	}
}

func (h *WSHandler) upgrade(c *gin.Context) (*websocket.Conn, bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure response.
		h.logger.Debug("websocket upgrade failed", "error", err, "remote_addr", c.ClientIP())
		return nil, false
	}
	return conn, true
}

func writeSnapshot(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v) == nil
}

// discardReads drains client frames so close handshakes are seen and the
// watch context is torn down when the peer goes away.
func discardReads(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
