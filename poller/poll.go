// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Loop is a running driver feeding a Query.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop halts the driver and waits for it to exit. Responses that land after
// Stop are dropped.
func (l *Loop) Stop() {
	l.cancel()
	<-l.done
}

// Done is closed when the driver has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Poll refetches q every interval, starting immediately. Manual q.Refresh
// calls run alongside without resetting the timer.
func Poll[T any](ctx context.Context, q *Query[T], interval time.Duration) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)

		slog.Debug("polling started", "query", q.Name(), "interval", interval)
		q.Refresh(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Debug("polling stopped", "query", q.Name())
				return
			case <-ticker.C:
				q.Refresh(ctx)
			}
		}
	}()

	return l
}

// Stream feeds q from a websocket that pushes the full view value as a JSON
// message whenever it changes. It replaces Poll for servers with a push
// channel; the query and its subscribers are unchanged.
func Stream[T any](ctx context.Context, q *Query[T], url string, header http.Header) (*Loop, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	// Closing the conn unblocks ReadJSON on Stop
	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	go func() {
		defer close(l.done)
		defer cancel()

		slog.Debug("stream started", "query", q.Name(), "url", url)
		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					q.fail(fmt.Errorf("stream closed: %w", err))
				}
				slog.Debug("stream stopped", "query", q.Name())
				return
			}
			if ctx.Err() != nil {
				return
			}
			q.Set(data)
		}
	}()

	return l, nil
}
