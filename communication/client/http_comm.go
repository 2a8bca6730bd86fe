package client

import (
	"context"
	"fmt"
	"strings"

	"ai2048/communication"

	"github.com/gorilla/websocket"
)

// StreamPopulation reads population snapshots from the server's stream and
// hands each to fn until ctx is cancelled, fn returns false or the server
// closes the stream.
func (c *Client) StreamPopulation(ctx context.Context, fn func(communication.PopulationState) bool) error {
	url := "ws" + strings.TrimPrefix(c.serverURL, "http") + "/population/stream"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to open population stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var state communication.PopulationState
		if err := conn.ReadJSON(&state); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read population stream: %w", err)
		}
		if !fn(state) {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
