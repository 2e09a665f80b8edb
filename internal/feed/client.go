package feed

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Client follows a game feed, reconnecting with backoff when the stream drops.
type Client struct {
	url                  string
	maxReconnectAttempts int
	header               http.Header
}

func NewClient(wsURL string, maxReconnectAttempts int) *Client {
	return &Client{url: wsURL, maxReconnectAttempts: maxReconnectAttempts, header: http.Header{}}
}

// SetHeader adds a handshake header.
func (c *Client) SetHeader(k, v string) {
	if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
		c.header.Set(k, v)
	}
}

// Watch calls fn for every event until ctx ends or reconnects are exhausted.
func (c *Client) Watch(ctx context.Context, fn func(Event)) error {
	attempt := 0
	for {
		delivered, err := c.stream(ctx, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered {
			attempt = 0
		}
		attempt++
		if attempt > c.maxReconnectAttempts {
			return err
		}
		t := time.NewTimer(backoffDuration(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Client) stream(ctx context.Context, fn func(Event)) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      c.header,
	})
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.CloseNow()

	delivered := false
	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
			}
			return delivered, err
		}
		delivered = true
		fn(ev)
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
}
