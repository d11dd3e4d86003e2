package gateway

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// client is one websocket connection. accountID is set by the hello op and
// is only ever touched from the connection's read loop. send is never
// closed; done tells the write pump and concurrent notifiers the connection
// is gone.
type client struct {
	srv       *Server
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	accountID string
}

func (c *client) enqueue(v any) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- mustMarshal(v):
	default:
		// slow consumer; the update is lost, not retried
		zap.S().Debugw("drop message to slow client", "account_id", c.accountID)
	}
}

func (c *client) problem(message string) {
	c.enqueue(problemResponse{Type: "problem", Message: message})
}

func (c *client) readPump() {
	defer func() {
		c.srv.unbind(c.accountID, c)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugf("ws read fail: %+v", err)
			}
			return
		}

		var req clientRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.problem("malformed request")
			continue
		}
		c.srv.dispatch(requestContext(), c, req)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
