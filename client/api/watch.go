package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// WatchOrder streams events for one order until ctx ends or the server
// closes the socket; the channel is closed then.
func (c *Client) WatchOrder(ctx context.Context, token string, id uint) (<-chan OrderEvent, error) {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	u = fmt.Sprintf("%s/ws/orders/%d?token=%s", u, id, url.QueryEscape(token))

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if res != nil {
			return nil, &Error{Status: res.StatusCode, Message: "websocket handshake failed"}
		}
		return nil, err
	}

	out := make(chan OrderEvent)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	go func() {
		defer close(out)
		defer close(stop)
		defer conn.Close()
		for {
			var e OrderEvent
			if err := conn.ReadJSON(&e); err != nil {
				return
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
