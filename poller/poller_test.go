// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestQuery_RefreshReplacesData(t *testing.T) {
	n := 0
	q := NewQuery("counter", func(ctx context.Context) ([]int, error) {
		n++
		return []int{n}, nil
	})

	var notified []Snapshot[[]int]
	q.Subscribe(func(s Snapshot[[]int]) { notified = append(notified, s) })

	if q.Snapshot().HasData {
		t.Fatal("New query should have no data")
	}

	q.Refresh(context.Background())
	q.Refresh(context.Background())

	snap := q.Snapshot()
	if len(snap.Data) != 1 || snap.Data[0] != 2 {
		t.Errorf("Expected full replace with [2], got %v", snap.Data)
	}
	if len(notified) != 2 {
		t.Errorf("Expected 2 notifications, got %d", len(notified))
	}
}

func TestQuery_ErrorKeepsLastData(t *testing.T) {
	fail := false
	boom := errors.New("network down")
	q := NewQuery("orders", func(ctx context.Context) (string, error) {
		if fail {
			return "", boom
		}
		return "fresh", nil
	})

	q.Refresh(context.Background())
	fail = true
	if err := q.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Expected fetch error, got %v", err)
	}

	snap := q.Snapshot()
	if snap.Data != "fresh" || !snap.HasData {
		t.Errorf("Expected last good data kept, got %q", snap.Data)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("Expected error recorded, got %v", snap.Err)
	}

	fail = false
	q.Refresh(context.Background())
	if q.Snapshot().Err != nil {
		t.Error("Successful refresh should clear the error")
	}
}

func TestQuery_CoalescesConcurrentRefresh(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := NewQuery("menu", func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Refresh(context.Background())
	}()
	<-started

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Refresh(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 fetch for concurrent refreshes, got %d", got)
	}
	if q.Snapshot().Data != 42 {
		t.Errorf("Expected 42, got %d", q.Snapshot().Data)
	}
}

func TestQuery_JoinerSurvivesCancelledStarter(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	q := NewQuery("kitchen", func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 7, nil
	})

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go q.Refresh(loopCtx)
	<-started

	joined := make(chan error, 1)
	go func() { joined <- q.Refresh(context.Background()) }()
	time.Sleep(50 * time.Millisecond)
	stopLoop()

	select {
	case err := <-joined:
		if err != nil {
			t.Fatalf("Live caller should not see the starter's cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh did not return")
	}
	if q.Snapshot().Data != 7 {
		t.Errorf("Expected 7 from the caller's own fetch, got %d", q.Snapshot().Data)
	}
}

func TestQuery_CancelledCallerGetsContextError(t *testing.T) {
	q := NewQuery("x", func(ctx context.Context) (int, error) { return 1, nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if q.Snapshot().HasData {
		t.Error("Result for a cancelled caller must be dropped")
	}
}

func TestQuery_Unsubscribe(t *testing.T) {
	q := NewQuery("x", func(ctx context.Context) (int, error) { return 1, nil })

	count := 0
	cancel := q.Subscribe(func(Snapshot[int]) { count++ })
	q.Set(1)
	cancel()
	q.Set(2)

	if count != 1 {
		t.Errorf("Expected 1 notification before unsubscribe, got %d", count)
	}
}

func TestPoll_FirstFetchImmediateThenRepeats(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery("orders", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	loop := Poll(context.Background(), q, time.Hour)
	waitFor(t, func() bool { return calls.Load() == 1 })
	loop.Stop()

	calls.Store(0)
	loop = Poll(context.Background(), q, 10*time.Millisecond)
	waitFor(t, func() bool { return calls.Load() >= 3 })
	loop.Stop()

	stopped := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != stopped {
		t.Error("No fetches expected after Stop")
	}
}

func TestPoll_StopDropsLateResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	q := NewQuery("status", func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "late", nil
	})

	loop := Poll(context.Background(), q, time.Hour)
	<-started

	stopped := make(chan struct{})
	go func() {
		loop.Stop()
		close(stopped)
	}()

	// Let Stop cancel before the response lands
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-stopped

	if q.Snapshot().HasData {
		t.Errorf("Late response should be dropped, got %q", q.Snapshot().Data)
	}
}

func TestPoll_ManualRefreshAlongsideTimer(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery("tables", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	loop := Poll(context.Background(), q, time.Hour)
	defer loop.Stop()
	waitFor(t, func() bool { return calls.Load() == 1 })

	if err := q.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if q.Snapshot().Data != 2 {
		t.Errorf("Manual refresh should fetch out of band, got %d", q.Snapshot().Data)
	}
}

func TestStream_FeedsQuery(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteJSON(map[string][]int{"PENDING": {1}})
		conn.WriteJSON(map[string][]int{"PENDING": {1, 2}})

		// Hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	q := NewQuery("kitchen", func(ctx context.Context) (map[string][]int, error) {
		return nil, errors.New("not used")
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	loop, err := Stream(context.Background(), q, url, nil)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	waitFor(t, func() bool {
		snap := q.Snapshot()
		return snap.HasData && len(snap.Data["PENDING"]) == 2
	})

	loop.Stop()
	select {
	case <-loop.Done():
	default:
		t.Error("Done should be closed after Stop")
	}
}

func TestStream_DialError(t *testing.T) {
	q := NewQuery("kitchen", func(ctx context.Context) (int, error) { return 0, nil })
	if _, err := Stream(context.Background(), q, "ws://127.0.0.1:1/none", nil); err == nil {
		t.Error("Expected dial error")
	}
}
