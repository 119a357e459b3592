package http

import (
	"context"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/queries"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Tokens authenticate the stream; origins are not restricted.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamTracking handles GET /ws/orders/:orderId/tracking. The socket receives
// the current tracking snapshot, if any, followed by every later one.
func (s *Server) StreamTracking(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	query, err := queries.NewSubscribeToDeliveryTrackingQuery(orderID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	updates, err := s.handlers.Subscribe.HandleTracking(ctx, query)
	if err != nil {
		return err
	}
	return stream(s, c, cancel, updates)
}

// StreamDriver handles GET /ws/drivers/:id.
func (s *Server) StreamDriver(c echo.Context) error {
	driverID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewSubscribeToDriverQuery(driverID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	updates, err := s.handlers.Subscribe.HandleDriver(ctx, query)
	if err != nil {
		return err
	}
	return stream(s, c, cancel, updates)
}

// stream upgrades the request and writes each update as a JSON text frame until
// the client goes away or updates closes.
func stream[T any](s *Server, c echo.Context, cancel context.CancelFunc, updates <-chan T) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already wrote the failure response.
		return nil //nolint:nilerr
	}
	defer conn.Close()

	go readPump(conn, cancel)

	logger := s.logger.With("path", c.Path())
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err = conn.WriteJSON(update); err != nil {
				logger.Debug("stream write failed", "error", err)
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump discards client frames and cancels the subscription once the peer
// stops answering pings or closes the socket.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
