// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command kitchen-display shows the live kitchen board and rings the
// terminal bell when new orders arrive.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/appenv"
	"github.com/danielhkuo/quickly-order/display"
	"github.com/danielhkuo/quickly-order/kanban"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/poller"
	"github.com/danielhkuo/quickly-order/session"
)

const help = "commands: r refresh | a <id> advance | s sound on/off | logout | q quit"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	expired := make(chan struct{}, 1)
	env, err := appenv.Setup("kitchen-display", os.Args[1:], os.Stderr, func() {
		select {
		case expired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer env.Close()

	sess := session.New(env.Client, env.Tokens)
	user, err := sess.Resume(ctx, env.Config.Username, env.Config.Password)
	if errors.Is(err, session.ErrNotAuthenticated) {
		fmt.Fprintln(os.Stderr, "login required: set KITCHEN_USERNAME and KITCHEN_PASSWORD or pass -user and -password")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, apiclient.Message(err, "Login failed"))
		os.Exit(1)
	}
	slog.Info("kitchen display started", "user", user.Username)

	k := newKitchen(env.Client, os.Stdout, env.Config.SoundEnabled)

	var loop *poller.Loop
	if env.Config.StreamURL != "" {
		token, _ := env.Tokens.AccessToken(ctx)
		header := http.Header{"Authorization": {"Bearer " + token}}
		loop, err = poller.Stream(ctx, k.query, env.Config.StreamURL, header)
		if err != nil {
			slog.Warn("live stream unavailable, falling back to polling", "error", err)
		}
	}
	if loop == nil {
		loop = poller.Poll(ctx, k.query, poller.KitchenOrdersInterval)
	}
	defer func() { loop.Stop() }()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-loop.Done():
			if ctx.Err() != nil {
				return
			}
			slog.Warn("live stream ended, falling back to polling")
			loop = poller.Poll(ctx, k.query, poller.KitchenOrdersInterval)
		case <-expired:
			fmt.Println("Session expired. Please log in again.")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch k.handle(ctx, line) {
			case actionQuit:
				return
			case actionLogout:
				if err := sess.Logout(ctx); err != nil {
					slog.Error("logout failed", "error", err)
				}
				fmt.Println("Logged out")
				return
			}
		}
	}
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionLogout
)

// kitchen is the live board state behind the display.
type kitchen struct {
	client *apiclient.Client
	out    io.Writer
	query  *poller.Query[models.OrdersByStatus]
	now    func() time.Time

	mu       sync.Mutex
	sound    bool
	detector kanban.NewOrderDetector
	board    kanban.Board
	fetchErr error
	message  string
}

func newKitchen(client *apiclient.Client, out io.Writer, sound bool) *kitchen {
	k := &kitchen{
		client: client,
		out:    out,
		sound:  sound,
		now:    time.Now,
		board:  kanban.Partition(nil),
	}
	k.query = poller.NewQuery("kitchen-orders", client.Kitchen().OrdersByStatus)
	k.query.Subscribe(k.onSnapshot)
	return k
}

func (k *kitchen) onSnapshot(s poller.Snapshot[models.OrdersByStatus]) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.fetchErr = s.Err
	if s.Err == nil && s.HasData {
		k.board = kanban.FromGrouped(s.Data)
		if k.detector.Observe(k.board) && k.sound {
			fmt.Fprint(k.out, "\a")
			slog.Info("new order alert", "pending", k.board.Count(models.StatusPending))
		}
	}
	k.renderLocked()
}

func (k *kitchen) renderLocked() {
	fmt.Fprint(k.out, "\033[H\033[2J")
	display.KitchenBoard(k.out, k.board, k.now(), display.BoardOptions{SoundEnabled: k.sound, Color: true})

	fmt.Fprintln(k.out)
	if k.fetchErr != nil {
		fmt.Fprintf(k.out, "Connection problem: %s (showing last data)\n", apiclient.Message(k.fetchErr, "Failed to load orders"))
	}
	if k.message != "" {
		fmt.Fprintln(k.out, k.message)
	}
	fmt.Fprintln(k.out, help)
}

func (k *kitchen) setMessage(msg string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.message = msg
	k.renderLocked()
}

func (k *kitchen) handle(ctx context.Context, line string) action {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return actionNone
	}

	switch fields[0] {
	case "q", "quit":
		return actionQuit
	case "logout":
		return actionLogout
	case "r", "refresh":
		k.query.Refresh(ctx)
	case "s", "sound":
		k.mu.Lock()
		k.sound = !k.sound
		k.message = ""
		k.renderLocked()
		k.mu.Unlock()
	case "a", "advance":
		if len(fields) != 2 {
			k.setMessage("usage: a <order id>")
			return actionNone
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			k.setMessage("usage: a <order id>")
			return actionNone
		}
		k.advance(ctx, id)
	default:
		k.setMessage(help)
	}
	return actionNone
}

func (k *kitchen) advance(ctx context.Context, id int64) {
	k.mu.Lock()
	order, ok := k.board.Find(id)
	k.mu.Unlock()
	if !ok {
		k.setMessage(fmt.Sprintf("Order %d is not on the board", id))
		return
	}

	updated, err := kanban.Advance(ctx, k.client.Kitchen(), order)
	if err != nil {
		k.setMessage(apiclient.Message(err, "Failed to update order"))
		return
	}

	k.setMessage(fmt.Sprintf("#%s is now %s", display.ShortOrderNumber(updated.OrderNumber), updated.Status))
	k.query.Refresh(ctx)
}
