// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/quickly-order/status"
)

// FormatPrice renders a decimal price string with thousands separators and
// two decimals, e.g. "NRS 1,250.00". Unparseable input is returned as-is.
func FormatPrice(currency, amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return withCurrency(currency, amount)
	}
	return FormatAmount(currency, d)
}

// FormatAmount renders a decimal amount like FormatPrice.
func FormatAmount(currency string, d decimal.Decimal) string {
	return withCurrency(currency, humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64()))
}

func withCurrency(currency, s string) string {
	if currency == "" {
		return s
	}
	return currency + " " + s
}

// ShortOrderNumber is the part of an order number after its last dash.
func ShortOrderNumber(number string) string {
	if i := strings.LastIndex(number, "-"); i >= 0 {
		return number[i+1:]
	}
	return number
}

// Clock formats a timestamp as local wall-clock time.
func Clock(t time.Time) string {
	return t.Local().Format("3:04 PM")
}

// Ago is a humanized age, e.g. "3 minutes ago".
func Ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// plural picks the singular or plural noun for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

var ansi = map[status.Tone]string{
	status.ToneAmber:   "\033[33m",
	status.ToneSky:     "\033[36m",
	status.ToneOrange:  "\033[38;5;208m",
	status.ToneEmerald: "\033[32m",
	status.ToneGreen:   "\033[92m",
	status.ToneGray:    "\033[90m",
	status.ToneRed:     "\033[31m",
}

// Paint wraps s in the terminal color for tone when enabled.
func Paint(tone status.Tone, s string, enabled bool) string {
	code, ok := ansi[tone]
	if !enabled || !ok {
		return s
	}
	return code + s + "\033[0m"
}
