// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command customer-app browses a restaurant menu, builds a cart, places an
// order and tracks it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/danielhkuo/quickly-order/appenv"
	"github.com/danielhkuo/quickly-order/cart"
	"github.com/danielhkuo/quickly-order/checkout"
	"github.com/danielhkuo/quickly-order/display"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/poller"
	"github.com/danielhkuo/quickly-order/status"
)

const usage = `usage: customer-app [flags] <command> [args]

commands:
  qr <code>              scan a table QR code and show its menu
  menu [restaurant]      show a menu (defaults to the cart's restaurant)
  add <item> [qty]       add a menu item to the cart
  remove <item>          remove an item from the cart
  qty <item> <n>         set an item's quantity (0 removes it)
  note <item> <text>     set special instructions for an item
  cart                   show the cart
  clear                  empty the cart
  checkout -name N -phone P [-note T]
                         place the order
  track <order> [-watch] show an order's status
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := appenv.Setup("customer-app", os.Args[1:], os.Stderr, nil)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer env.Close()

	if err := run(ctx, env, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, env *appenv.Env, w io.Writer) error {
	if len(env.Args) == 0 {
		return errUsage
	}

	c, err := cart.Load(ctx, env.Store)
	if err != nil {
		return err
	}

	app := &customerApp{env: env, cart: c, w: w}
	cmd, args := env.Args[0], env.Args[1:]

	switch cmd {
	case "qr":
		return app.scan(ctx, args)
	case "menu":
		return app.menu(ctx, args)
	case "add":
		return app.add(ctx, args)
	case "remove":
		return app.remove(args)
	case "qty":
		return app.quantity(args)
	case "note":
		return app.note(args)
	case "cart":
		app.showCart()
		return nil
	case "clear":
		c.Clear()
		fmt.Fprintln(w, "Cart cleared")
		return nil
	case "checkout":
		return app.checkout(ctx, args)
	case "track":
		return app.track(ctx, args)
	}
	return errUsage
}

type customerApp struct {
	env  *appenv.Env
	cart *cart.Cart
	w    io.Writer
}

func (a *customerApp) currency() string {
	return a.env.Config.Currency
}

// scan resolves a table code, remembers the restaurant and table, and shows the menu.
func (a *customerApp) scan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	res, err := a.env.Client.Customer().ResolveQR(ctx, args[0])
	if err != nil {
		return fmt.Errorf("invalid QR code: %w", err)
	}

	r, err := a.env.Client.Customer().Restaurant(ctx, strconv.FormatInt(res.RestaurantID, 10))
	if err != nil {
		return err
	}

	a.cart.SetRestaurant(r.Slug)
	if res.TableID != nil {
		a.cart.SetTable(*res.TableID)
	}
	slog.Debug("table scanned", "restaurant", r.Slug, "table", res.TableID)

	display.Menu(a.w, r, a.currency())
	return nil
}

func (a *customerApp) restaurant(ctx context.Context) (models.Restaurant, error) {
	slug, ok := a.cart.Restaurant()
	if !ok {
		return models.Restaurant{}, errors.New("no restaurant selected: scan a QR code or run menu <restaurant>")
	}
	return a.env.Client.Customer().Restaurant(ctx, slug)
}

func (a *customerApp) menu(ctx context.Context, args []string) error {
	var (
		r   models.Restaurant
		err error
	)
	if len(args) > 0 {
		r, err = a.env.Client.Customer().Restaurant(ctx, args[0])
		if err == nil {
			a.cart.SetRestaurant(r.Slug)
		}
	} else {
		r, err = a.restaurant(ctx)
	}
	if err != nil {
		return err
	}

	display.Menu(a.w, r, a.currency())
	return nil
}

func (a *customerApp) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errUsage
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return errUsage
		}
	}

	r, err := a.restaurant(ctx)
	if err != nil {
		return err
	}
	item, ok := r.FindMenuItem(id)
	if !ok {
		return fmt.Errorf("menu item %d not found", id)
	}
	if !item.IsAvailable {
		return fmt.Errorf("%s is currently unavailable", item.Name)
	}

	a.cart.AddItem(item, qty)
	entry, _ := a.cart.Item(id)
	fmt.Fprintf(a.w, "Added %s (%d in cart)\n", item.Name, entry.Quantity)
	return nil
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errUsage
	}
	return id, nil
}

func (a *customerApp) remove(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	a.cart.RemoveItem(id)
	a.showCart()
	return nil
}

func (a *customerApp) quantity(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	a.cart.UpdateQuantity(id, qty)
	a.showCart()
	return nil
}

func (a *customerApp) note(args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	if _, ok := a.cart.Item(id); !ok {
		return fmt.Errorf("item %d is not in the cart", id)
	}
	a.cart.UpdateSpecialInstructions(id, strings.Join(args[1:], " "))
	a.showCart()
	return nil
}

func (a *customerApp) showCart() {
	display.Cart(a.w, a.cart.Items(), a.cart.TotalPrice(), a.currency())
}

func (a *customerApp) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var form checkout.Form
	fs.StringVar(&form.CustomerName, "name", "", "Your name")
	fs.StringVar(&form.CustomerPhone, "phone", "", "Phone number")
	fs.StringVar(&form.SpecialInstructions, "note", "", "Special instructions")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	order, err := checkout.Submit(ctx, a.env.Client.Customer(), a.cart, form)
	if err != nil {
		return errors.New(checkout.Message(err))
	}

	fmt.Fprintf(a.w, "Order placed! Your order number is %s\n", order.OrderNumber)
	fmt.Fprintf(a.w, "Track it with: customer-app track %s\n", order.OrderNumber)
	return nil
}

func (a *customerApp) track(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	watch := fs.Bool("watch", false, "Keep refreshing until the order is done")

	// Accept the order number before or after -watch
	var number string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		number, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if number == "" && fs.NArg() == 1 {
		number = fs.Arg(0)
	}
	if number == "" {
		return errUsage
	}

	fetch := func(ctx context.Context) (models.Order, error) {
		return a.env.Client.Customer().Order(ctx, number)
	}

	if !*watch {
		o, err := fetch(ctx)
		if err != nil {
			return fmt.Errorf("order not found: %w", err)
		}
		display.OrderStatus(a.w, o, a.currency())
		return nil
	}

	q := poller.NewQuery("order-status", fetch)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q.Subscribe(func(s poller.Snapshot[models.Order]) {
		if s.Err != nil {
			if !s.HasData {
				fmt.Fprintln(a.w, "Order not found")
				cancel()
			}
			return
		}
		fmt.Fprint(a.w, "\033[H\033[2J")
		display.OrderStatus(a.w, s.Data, a.currency())
		if status.IsTerminal(s.Data.Status) {
			cancel()
		}
	})

	loop := poller.Poll(ctx, q, poller.OrderStatusInterval)
	<-ctx.Done()
	loop.Stop()
	return nil
}
