// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/status"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// ManagerOrders renders the manager order list.
func ManagerOrders(w io.Writer, orders []models.Order, now time.Time, currency string) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tORDER\tTABLE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS\tPLACED\tNEXT")
	for _, o := range orders {
		table := o.TableNumber
		if table == "" {
			table = "-"
		}
		next := "-"
		if s, ok := status.Next(o.Status); ok {
			next = fmt.Sprintf("%s (%s)", status.ActionLabel(o.Status), s)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, table, o.CustomerName, len(o.Items),
			FormatPrice(currency, o.TotalAmount), o.Status, Ago(o.CreatedAt, now), next)
	}
	tw.Flush()
}

// Stats renders the dashboard counters.
func Stats(w io.Writer, s models.OrderStats, currency string) {
	period := "All time"
	if s.DateFrom != nil || s.DateTo != nil {
		from, to := "…", "…"
		if s.DateFrom != nil {
			from = *s.DateFrom
		}
		if s.DateTo != nil {
			to = *s.DateTo
		}
		period = from + " to " + to
	}
	fmt.Fprintf(w, "Dashboard (%s)\n\n", period)

	tw := newTable(w)
	fmt.Fprintf(tw, "Total orders\t%s\n", humanize.Comma(int64(s.TotalOrders)))
	fmt.Fprintf(tw, "Revenue\t%s\n", FormatPrice(currency, s.TotalRevenue.String()))
	fmt.Fprintf(tw, "Average order\t%s\n", FormatPrice(currency, s.AverageOrderValue.String()))
	fmt.Fprintln(tw, "\t")
	rows := []struct {
		status string
		count  int
	}{
		{models.StatusPending, s.PendingOrders},
		{models.StatusConfirmed, s.ConfirmedOrders},
		{models.StatusPreparing, s.PreparingOrders},
		{models.StatusReady, s.ReadyOrders},
		{models.StatusServed, s.ServedOrders},
		{models.StatusCompleted, s.CompletedOrders},
		{models.StatusCancelled, s.CancelledOrders},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", status.CustomerLabel(r.status), humanize.Comma(int64(r.count)))
	}
	tw.Flush()
}

// MenuItems renders the manager's menu item list.
func MenuItems(w io.Writer, items []models.MenuItem, currency string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No menu items")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tPREP\tAVAILABLE\tSPECIAL")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%dm\t%s\t%s\n",
			item.ID, item.Name, FormatPrice(currency, item.Price), item.PreparationTime,
			yesNo(item.IsAvailable), yesNo(item.IsSpecialOfDay))
	}
	tw.Flush()
}

// Tables renders tables with the link each QR code points to.
func Tables(w io.Writer, tables []models.Table, origin string) {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTABLE\tSEATS\tACTIVE\tQR LINK")
	for _, t := range tables {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			t.ID, t.TableNumber, t.Capacity, yesNo(t.IsActive), apiclient.QRLandingURL(strings.TrimRight(origin, "/"), t.QRCode))
	}
	tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
