// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command manager-portal administers orders, menus, tables and the
// restaurant profile.
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
	"time"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/appenv"
	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/display"
	"github.com/danielhkuo/quickly-order/kanban"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/poller"
	"github.com/danielhkuo/quickly-order/session"
)

const usage = `usage: manager-portal [flags] <command> [args]

commands:
  login                          log in with -user/-password or KITCHEN_USERNAME/KITCHEN_PASSWORD
  logout                         end the session
  whoami                         show the logged-in user
  profile [-email E] [-first F] [-last L] [-phone P]
                                 update your profile
  orders [-status S] [-watch]    list orders
  advance <order id>             move an order one step forward
  board                          show active orders as kanban columns
  stats [-from YYYY-MM-DD] [-to YYYY-MM-DD]
                                 show the dashboard
  menu list [-watch]             list menu items
  menu add -name N -price P [-desc D] [-category C] [-prep M]
  menu edit <id> [-name N] [-price P] [-desc D] [-category C] [-prep M]
  menu delete <id>
  menu special <id> on|off
  menu available <id> on|off
  categories                     list menu categories
  restaurant [show]              show the restaurant profile
  restaurant update [-name N] [-address A] [-phone P]
  tables list [-watch]           list tables and their QR links
  tables add <number> [-capacity N]
  tables edit <id> [-number N] [-capacity N] [-active true|false]
  tables delete <id>
  tables regen <id>              issue a new QR code (old printouts stop working)
  tables qr <id> -o <file>       download the QR code image
`

var (
	errUsage       = errors.New("invalid usage")
	errNotLoggedIn = errors.New("not logged in: run manager-portal login")
	errNotManager  = errors.New("manager access required")
	errExpired     = errors.New("session expired")
)

const expiredMessage = "Session expired. Please log in again."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := appenv.Setup("manager-portal", os.Args[1:], os.Stderr, nil)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer env.Close()

	if err := run(ctx, env, os.Stdout); err != nil {
		switch {
		case errors.Is(err, errUsage):
			fmt.Fprint(os.Stderr, usage)
		case errors.Is(err, errExpired):
			fmt.Fprintln(os.Stderr, expiredMessage)
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, env *appenv.Env, w io.Writer) error {
	if len(env.Args) == 0 {
		return errUsage
	}

	app := &managerApp{
		env:  env,
		sess: session.New(env.Client, env.Tokens),
		w:    w,
		now:  time.Now,
	}
	cmd, args := env.Args[0], env.Args[1:]

	switch cmd {
	case "login":
		return app.login(ctx)
	case "logout":
		return app.logout(ctx)
	}

	if ok, err := app.sess.IsAuthenticated(ctx); err != nil {
		return err
	} else if !ok {
		return errNotLoggedIn
	}

	var err error
	switch cmd {
	case "whoami":
		err = app.whoami(ctx)
	case "profile":
		err = app.profile(ctx, args)
	case "orders":
		err = app.orders(ctx, args)
	case "advance":
		err = app.advance(ctx, args)
	case "board":
		err = app.board(ctx)
	case "stats":
		err = app.stats(ctx, args)
	case "menu":
		err = app.menu(ctx, args)
	case "categories":
		err = app.categories(ctx)
	case "restaurant":
		err = app.restaurant(ctx, args)
	case "tables":
		err = app.tables(ctx, args)
	default:
		return errUsage
	}
	return explain(err)
}

// explain turns API failures into the message shown to the manager.
func explain(err error) error {
	switch {
	case err == nil, errors.Is(err, errUsage):
		return err
	case errors.Is(err, apiclient.ErrSessionExpired):
		return errExpired
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiclient.Message(err, "Request failed"))
	}
	return err
}

type managerApp struct {
	env  *appenv.Env
	sess *session.Session
	w    io.Writer
	now  func() time.Time
}

func (a *managerApp) api() apiclient.ManagerAPI {
	return a.env.Client.Manager()
}

func (a *managerApp) currency() string {
	return a.env.Config.Currency
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseID takes a leading numeric argument and returns the rest.
func parseID(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, nil, errUsage
	}
	return id, args[1:], nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, errUsage
}

// Session commands

func (a *managerApp) login(ctx context.Context) error {
	cfg := a.env.Config
	if cfg.Username == "" || cfg.Password == "" {
		return errors.New("username and password required (-user/-password or KITCHEN_USERNAME/KITCHEN_PASSWORD)")
	}

	user, err := a.sess.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return errors.New(apiclient.Message(err, "Login failed"))
	}
	if user.Role != models.RoleRestaurantManager && user.Role != models.RoleSuperAdmin {
		if err := a.sess.Logout(ctx); err != nil {
			slog.Warn("logout after role check failed", "error", err)
		}
		return errNotManager
	}

	fmt.Fprintf(a.w, "Logged in as %s\n", user.Username)
	return nil
}

func (a *managerApp) logout(ctx context.Context) error {
	if err := a.sess.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.w, "Logged out")
	return nil
}

func (a *managerApp) whoami(ctx context.Context) error {
	user, err := a.sess.FetchUser(ctx)
	if err != nil {
		return err
	}
	printUser(a.w, user)

	// Access tokens are refreshed silently; the refresh token bounds the session
	if refresh, err := a.env.Tokens.RefreshToken(ctx); err == nil && refresh != "" {
		if claims, err := auth.ParseClaims(refresh); err == nil && !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(a.w, "Session:    ends %s\n", display.Ago(claims.ExpiresAt, a.now()))
		}
	}
	return nil
}

func printUser(w io.Writer, u models.User) {
	fmt.Fprintf(w, "%s (%s)\n", u.Username, u.Role)
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		fmt.Fprintf(w, "Name:       %s\n", name)
	}
	if u.Email != "" {
		fmt.Fprintf(w, "Email:      %s\n", u.Email)
	}
	if u.PhoneNumber != "" {
		fmt.Fprintf(w, "Phone:      %s\n", u.PhoneNumber)
	}
	if u.Restaurant != nil {
		fmt.Fprintf(w, "Restaurant: %s\n", u.Restaurant.Name)
	}
}

func (a *managerApp) profile(ctx context.Context, args []string) error {
	fs := newFlagSet("profile")
	email := fs.String("email", "", "Email")
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	phone := fs.String("phone", "", "Phone number")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	var in models.ProfileInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "email":
			in.Email = email
		case "first":
			in.FirstName = first
		case "last":
			in.LastName = last
		case "phone":
			in.PhoneNumber = phone
		}
	})

	user, err := a.env.Client.Auth().UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.w, "Profile updated")
	printUser(a.w, user)
	return nil
}

// watch renders fetch results on an interval until ctx is done.
func watch[T any](ctx context.Context, w io.Writer, name string, interval time.Duration, fetch poller.FetchFunc[T], render func(T)) {
	q := poller.NewQuery(name, fetch)
	q.Subscribe(func(s poller.Snapshot[T]) {
		fmt.Fprint(w, "\033[H\033[2J")
		if s.HasData {
			render(s.Data)
		}
		if s.Err != nil {
			fmt.Fprintf(w, "\n%s\n", apiclient.Message(s.Err, "Failed to refresh"))
		}
	})

	loop := poller.Poll(ctx, q, interval)
	<-ctx.Done()
	loop.Stop()
}

// Order commands

func (a *managerApp) orders(ctx context.Context, args []string) error {
	fs := newFlagSet("orders")
	statusFilter := fs.String("status", "", "Only orders in this status")
	live := fs.Bool("watch", false, "Keep refreshing")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}
	filter := strings.ToUpper(*statusFilter)

	fetch := func(ctx context.Context) ([]models.Order, error) {
		return a.api().Orders(ctx, filter)
	}
	render := func(orders []models.Order) {
		display.ManagerOrders(a.w, orders, a.now(), a.currency())
	}

	if *live {
		watch(ctx, a.w, "manager-orders", poller.ManagerOrdersInterval, fetch, render)
		return nil
	}
	orders, err := fetch(ctx)
	if err != nil {
		return err
	}
	render(orders)
	return nil
}

func (a *managerApp) advance(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil || len(rest) > 0 {
		return errUsage
	}

	orders, err := a.api().Orders(ctx, "")
	if err != nil {
		return err
	}
	var order *models.Order
	for i := range orders {
		if orders[i].ID == id {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return fmt.Errorf("order %d not found", id)
	}

	updated, err := kanban.Advance(ctx, a.api(), *order)
	if errors.Is(err, kanban.ErrNoNextStatus) {
		return fmt.Errorf("order %s is %s and cannot be advanced", order.OrderNumber, order.Status)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.w, "%s is now %s\n", updated.OrderNumber, updated.Status)
	return nil
}

func (a *managerApp) board(ctx context.Context) error {
	orders, err := a.api().Orders(ctx, "")
	if err != nil {
		return err
	}
	display.KitchenBoard(a.w, kanban.Partition(orders), a.now(), display.BoardOptions{})
	return nil
}

func (a *managerApp) stats(ctx context.Context, args []string) error {
	fs := newFlagSet("stats")
	from := fs.String("from", "", "Start date (YYYY-MM-DD)")
	to := fs.String("to", "", "End date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}
	for _, d := range []string{*from, *to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q (use YYYY-MM-DD)", d)
		}
	}

	s, err := a.api().Stats(ctx, *from, *to)
	if err != nil {
		return err
	}
	display.Stats(a.w, s, a.currency())
	return nil
}

// Menu commands

func (a *managerApp) menu(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list":
		return a.menuList(ctx, args)
	case "add":
		return a.menuAdd(ctx, args)
	case "edit":
		return a.menuEdit(ctx, args)
	case "delete":
		id, rest, err := parseID(args)
		if err != nil || len(rest) > 0 {
			return errUsage
		}
		if err := a.api().DeleteMenuItem(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.w, "Deleted menu item %d\n", id)
		return nil
	case "special", "available":
		id, rest, err := parseID(args)
		if err != nil || len(rest) != 1 {
			return errUsage
		}
		on, err := parseOnOff(rest[0])
		if err != nil {
			return err
		}
		var item models.MenuItem
		if sub == "special" {
			item, err = a.api().MarkSpecial(ctx, id, on)
		} else {
			item, err = a.api().ToggleAvailability(ctx, id, on)
		}
		if err != nil {
			return err
		}
		display.MenuItems(a.w, []models.MenuItem{item}, a.currency())
		return nil
	}
	return errUsage
}

func (a *managerApp) menuList(ctx context.Context, args []string) error {
	fs := newFlagSet("menu list")
	live := fs.Bool("watch", false, "Keep refreshing")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	render := func(items []models.MenuItem) {
		display.MenuItems(a.w, items, a.currency())
	}
	if *live {
		watch(ctx, a.w, "manager-menu", poller.MenuInterval, a.api().MenuItems, render)
		return nil
	}
	items, err := a.api().MenuItems(ctx)
	if err != nil {
		return err
	}
	render(items)
	return nil
}

// menuItemFlags binds the editable menu item fields. Only flags that were
// set end up in the input.
func menuItemFlags(fs *flag.FlagSet) func() (models.MenuItemInput, error) {
	name := fs.String("name", "", "Item name")
	price := fs.String("price", "", "Price, e.g. 12.50")
	desc := fs.String("desc", "", "Description")
	category := fs.Int64("category", 0, "Category ID")
	prep := fs.Int("prep", 0, "Preparation time in minutes")

	return func() (models.MenuItemInput, error) {
		var in models.MenuItemInput
		var err error
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				in.Name = name
			case "price":
				if _, perr := strconv.ParseFloat(*price, 64); perr != nil {
					err = fmt.Errorf("invalid price %q", *price)
				}
				in.Price = price
			case "desc":
				in.Description = desc
			case "category":
				in.Category = category
			case "prep":
				in.PreparationTime = prep
			}
		})
		return in, err
	}
}

func (a *managerApp) menuAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("menu add")
	input := menuItemFlags(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}
	in, err := input()
	if err != nil {
		return err
	}
	if in.Name == nil || in.Price == nil {
		return errors.New("name and price are required")
	}

	item, err := a.api().CreateMenuItem(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.w, "Created menu item %d\n", item.ID)
	display.MenuItems(a.w, []models.MenuItem{item}, a.currency())
	return nil
}

func (a *managerApp) menuEdit(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("menu edit")
	input := menuItemFlags(fs)
	if err := fs.Parse(rest); err != nil || fs.NArg() > 0 {
		return errUsage
	}
	in, err := input()
	if err != nil {
		return err
	}

	item, err := a.api().UpdateMenuItem(ctx, id, in)
	if err != nil {
		return err
	}
	display.MenuItems(a.w, []models.MenuItem{item}, a.currency())
	return nil
}

func (a *managerApp) categories(ctx context.Context) error {
	cats, err := a.api().Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(a.w, "No categories")
		return nil
	}
	for _, c := range cats {
		fmt.Fprintf(a.w, "%d  %s (%d items)\n", c.ID, c.Name, len(c.Items))
	}
	return nil
}

// Restaurant commands

func (a *managerApp) restaurant(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		r, err := a.api().Restaurant(ctx)
		if err != nil {
			return err
		}
		printRestaurant(a.w, r)
		return nil
	}
	if args[0] != "update" {
		return errUsage
	}

	fs := newFlagSet("restaurant update")
	name := fs.String("name", "", "Name")
	address := fs.String("address", "", "Address")
	phone := fs.String("phone", "", "Phone")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	var in models.RestaurantInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.Name = name
		case "address":
			in.Address = address
		case "phone":
			in.Phone = phone
		}
	})

	current, err := a.api().Restaurant(ctx)
	if err != nil {
		return err
	}
	updated, err := a.api().UpdateRestaurant(ctx, current.ID, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.w, "Restaurant updated")
	printRestaurant(a.w, updated)
	return nil
}

func printRestaurant(w io.Writer, r models.Restaurant) {
	fmt.Fprintf(w, "%s (%s)\n", r.Name, r.Slug)
	fmt.Fprintf(w, "Address: %s\n", r.Address)
	fmt.Fprintf(w, "Phone:   %s\n", r.Phone)
}

// Table commands

func (a *managerApp) tables(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "list":
		return a.tablesList(ctx, args)
	case "add":
		return a.tablesAdd(ctx, args)
	case "edit":
		return a.tablesEdit(ctx, args)
	case "delete":
		id, rest, err := parseID(args)
		if err != nil || len(rest) > 0 {
			return errUsage
		}
		if err := a.api().DeleteTable(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.w, "Deleted table %d\n", id)
		return nil
	case "regen":
		id, rest, err := parseID(args)
		if err != nil || len(rest) > 0 {
			return errUsage
		}
		t, err := a.api().RegenerateQR(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.w, "New QR code for table %s: %s\n", t.TableNumber, apiclient.QRLandingURL(a.env.Config.Origin, t.QRCode))
		return nil
	case "qr":
		return a.tablesQR(ctx, args)
	}
	return errUsage
}

func (a *managerApp) tablesList(ctx context.Context, args []string) error {
	fs := newFlagSet("tables list")
	live := fs.Bool("watch", false, "Keep refreshing")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	render := func(tables []models.Table) {
		display.Tables(a.w, tables, a.env.Config.Origin)
	}
	if *live {
		watch(ctx, a.w, "manager-tables", poller.TablesInterval, a.api().Tables, render)
		return nil
	}
	tables, err := a.api().Tables(ctx)
	if err != nil {
		return err
	}
	render(tables)
	return nil
}

func (a *managerApp) tablesAdd(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errUsage
	}
	in := models.TableInput{TableNumber: args[0], IsActive: true}

	fs := newFlagSet("tables add")
	fs.IntVar(&in.Capacity, "capacity", 4, "Seats")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	t, err := a.api().CreateTable(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.w, "Created table %s (id %d)\n", t.TableNumber, t.ID)
	return nil
}

func (a *managerApp) tablesEdit(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}

	tables, err := a.api().Tables(ctx)
	if err != nil {
		return err
	}
	var in models.TableInput
	found := false
	for _, t := range tables {
		if t.ID == id {
			in = models.TableInput{TableNumber: t.TableNumber, Capacity: t.Capacity, IsActive: t.IsActive}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("table %d not found", id)
	}

	// Start from the current values so unset flags keep them
	fs := newFlagSet("tables edit")
	fs.StringVar(&in.TableNumber, "number", in.TableNumber, "Table number")
	fs.IntVar(&in.Capacity, "capacity", in.Capacity, "Seats")
	fs.BoolVar(&in.IsActive, "active", in.IsActive, "Accept orders from this table")
	if err := fs.Parse(rest); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	t, err := a.api().UpdateTable(ctx, id, in)
	if err != nil {
		return err
	}
	display.Tables(a.w, []models.Table{t}, a.env.Config.Origin)
	return nil
}

func (a *managerApp) tablesQR(ctx context.Context, args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("tables qr")
	out := fs.String("o", "", "Output file")
	if err := fs.Parse(rest); err != nil || fs.NArg() > 0 || *out == "" {
		return errUsage
	}

	data, err := a.api().DownloadQR(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("failed to save QR code: %w", err)
	}
	fmt.Fprintf(a.w, "Saved QR code to %s\n", *out)
	return nil
}
