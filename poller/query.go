// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Refresh intervals per view
const (
	KitchenOrdersInterval = 3 * time.Second
	ManagerOrdersInterval = 3 * time.Second
	OrderStatusInterval   = 5 * time.Second
	MenuInterval          = 5 * time.Second
	TablesInterval        = 10 * time.Second
)

// FetchFunc loads the full current value of a view.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a query's state.
type Snapshot[T any] struct {
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Query caches one view's data. Every resolved fetch fully replaces the
// cached value; a failed fetch records the error and keeps the last data.
type Query[T any] struct {
	name  string
	fetch FetchFunc[T]
	group singleflight.Group

	mu      sync.RWMutex
	state   Snapshot[T]
	subs    map[int]func(Snapshot[T])
	nextSub int
}

func NewQuery[T any](name string, fetch FetchFunc[T]) *Query[T] {
	return &Query[T]{
		name:  name,
		fetch: fetch,
		subs:  make(map[int]func(Snapshot[T])),
	}
}

func (q *Query[T]) Name() string {
	return q.name
}

// Refresh fetches now. Concurrent refreshes share one fetch. A result that
// arrives after ctx is done is dropped. A caller that joined a fetch whose
// starter was cancelled fetches again under its own ctx.
func (q *Query[T]) Refresh(ctx context.Context) error {
	err := q.refresh(ctx)
	if err != nil && ctx.Err() == nil && isCancellation(err) {
		err = q.refresh(ctx)
	}
	return err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (q *Query[T]) refresh(ctx context.Context) error {
	_, err, _ := q.group.Do(q.name, func() (interface{}, error) {
		data, err := q.fetch(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			q.fail(err)
			return nil, err
		}
		q.Set(data)
		return nil, nil
	})
	return err
}

// Set replaces the cached data and clears any error.
func (q *Query[T]) Set(data T) {
	q.mu.Lock()
	q.state = Snapshot[T]{Data: data, HasData: true, UpdatedAt: time.Now()}
	snap := q.state
	subs := q.subscribersLocked()
	q.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (q *Query[T]) fail(err error) {
	slog.Warn("refresh failed", "query", q.name, "error", err)

	q.mu.Lock()
	q.state.Err = err
	snap := q.state
	subs := q.subscribersLocked()
	q.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (q *Query[T]) Snapshot() Snapshot[T] {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// Subscribe registers fn for every state change and returns its cancel func.
// fn runs on the goroutine that applied the change.
func (q *Query[T]) Subscribe(fn func(Snapshot[T])) func() {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

func (q *Query[T]) subscribersLocked() []func(Snapshot[T]) {
	subs := make([]func(Snapshot[T]), 0, len(q.subs))
	for i := 0; i < q.nextSub; i++ {
		if fn, ok := q.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}
