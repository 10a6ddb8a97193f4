package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/service"
)

// WatchEvent is one message from the daemon's event stream. The first one
// carries State; the rest carry a Phase change.
type WatchEvent struct {
	Type  string             `json:"type"`
	Phase model.Phase        `json:"phase"`
	At    time.Time          `json:"at"`
	State *service.StateView `json:"state,omitempty"`
}

// Watch streams events to fn until ctx is cancelled or the daemon closes
// the stream. A daemon-initiated close returns nil.
func (c *Client) Watch(ctx context.Context, fn func(WatchEvent)) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/session/events"
	header := http.Header{}
	if err := c.authorize(header); err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connect to daemon: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var event WatchEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		fn(event)
	}
}
