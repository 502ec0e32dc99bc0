// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package status

import (
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-order/models"
)

// Progression is the linear order lifecycle. COMPLETED and CANCELLED sit outside it.
var Progression = []string{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusServed,
}

// Step returns the 1-based position of status in the progression.
// COMPLETED counts as fully progressed; CANCELLED and unknown values are 0.
func Step(status string) int {
	if status == models.StatusCompleted {
		return len(Progression)
	}
	for i, s := range Progression {
		if s == status {
			return i + 1
		}
	}
	return 0
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status string) bool {
	switch status {
	case models.StatusServed, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

// Next returns the single legal next status.
func Next(status string) (string, bool) {
	step := Step(status)
	if status == models.StatusCompleted || step == 0 || step >= len(Progression) {
		return "", false
	}
	return Progression[step], true
}

var actionLabels = map[string]string{
	models.StatusPending:   "Confirm",
	models.StatusConfirmed: "Start Preparing",
	models.StatusPreparing: "Mark Ready",
	models.StatusReady:     "Mark Served",
}

// ActionLabel is the button text for advancing an order out of status.
func ActionLabel(status string) string {
	if label, ok := actionLabels[status]; ok {
		return label
	}
	return "Update"
}

var customerLabels = map[string]string{
	models.StatusPending:   "Order Received",
	models.StatusConfirmed: "Confirmed",
	models.StatusPreparing: "Being Prepared",
	models.StatusReady:     "Ready",
	models.StatusServed:    "Served",
	models.StatusCompleted: "Completed",
	models.StatusCancelled: "Cancelled",
}

var kitchenLabels = map[string]string{
	models.StatusPending:   "New Order",
	models.StatusConfirmed: "Confirmed",
	models.StatusPreparing: "In Progress",
	models.StatusReady:     "Ready to Serve",
	models.StatusServed:    "Served",
	models.StatusCompleted: "Completed",
	models.StatusCancelled: "Cancelled",
}

// CustomerLabel is the wording shown to diners. Unknown values are returned as-is.
func CustomerLabel(status string) string {
	return lookup(customerLabels, status)
}

// KitchenLabel is the wording shown on the kitchen board. Unknown values are returned as-is.
func KitchenLabel(status string) string {
	return lookup(kitchenLabels, status)
}

func lookup(labels map[string]string, status string) string {
	if label, ok := labels[status]; ok {
		return label
	}
	return status
}

// Tone is a display color class.
type Tone string

const (
	ToneAmber   Tone = "amber"
	ToneSky     Tone = "sky"
	ToneOrange  Tone = "orange"
	ToneEmerald Tone = "emerald"
	ToneGreen   Tone = "green"
	ToneGray    Tone = "gray"
	ToneRed     Tone = "red"

	// ToneNeutral is used for any status the client does not recognise.
	ToneNeutral = ToneGray
)

var tones = map[string]Tone{
	models.StatusPending:   ToneAmber,
	models.StatusConfirmed: ToneSky,
	models.StatusPreparing: ToneOrange,
	models.StatusReady:     ToneEmerald,
	models.StatusServed:    ToneGreen,
	models.StatusCompleted: ToneGray,
	models.StatusCancelled: ToneRed,
}

// ToneOf maps a status to its color class.
func ToneOf(status string) Tone {
	if t, ok := tones[status]; ok {
		return t
	}
	return ToneNeutral
}

// Stage is one row of the customer progress timeline.
type Stage struct {
	Status  string
	Label   string
	Reached bool
	At      *time.Time
}

// Progress is the customer-facing view of an order's lifecycle.
type Progress struct {
	Step      int
	Cancelled bool
	Completed bool
	Stages    []Stage
}

var stageLabels = map[string]string{
	models.StatusPending:   "Order Received",
	models.StatusConfirmed: "Order Confirmed",
	models.StatusPreparing: "Being Prepared",
	models.StatusReady:     "Ready for Pickup",
	models.StatusServed:    "Served",
}

// ProgressOf derives the timeline for an order. A cancelled order has no stages.
func ProgressOf(o models.Order) Progress {
	if o.Status == models.StatusCancelled {
		return Progress{Cancelled: true}
	}

	step := Step(o.Status)
	created := o.CreatedAt
	stamps := []*time.Time{&created, o.ConfirmedAt, o.PreparedAt, o.ReadyAt, o.ServedAt}
	if o.CreatedAt.IsZero() {
		stamps[0] = nil
	}

	p := Progress{
		Step:      step,
		Completed: o.Status == models.StatusCompleted || o.Status == models.StatusServed,
		Stages:    make([]Stage, len(Progression)),
	}
	for i, s := range Progression {
		p.Stages[i] = Stage{
			Status:  s,
			Label:   stageLabels[s],
			Reached: step >= i+1,
			At:      stamps[i],
		}
	}
	return p
}

// PrepTime is the expected preparation time of an order: the slowest item
// line, where a line takes prep time × quantity.
func PrepTime(o models.Order) time.Duration {
	var longest int
	for _, item := range o.Items {
		if m := item.MenuItemSnapshot.PreparationTime * item.Quantity; m > longest {
			longest = m
		}
	}
	return time.Duration(longest) * time.Minute
}

// UrgencyFactor is how far past its prep time an order may run before it is flagged.
const UrgencyFactor = 1.5

// IsUrgent reports whether an order still in the kitchen has run past
// UrgencyFactor times its prep time.
func IsUrgent(o models.Order, now time.Time) bool {
	switch o.Status {
	case models.StatusReady, models.StatusServed, models.StatusCompleted, models.StatusCancelled:
		return false
	}
	limit := time.Duration(float64(PrepTime(o)) * UrgencyFactor)
	return now.Sub(o.CreatedAt) > limit
}

// Elapsed renders the age of a timestamp the way the kitchen board shows it.
func Elapsed(since, now time.Time) string {
	mins := int(now.Sub(since) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins == 1:
		return "1 min ago"
	case mins < 60:
		return fmt.Sprintf("%d mins ago", mins)
	}
	hours := mins / 60
	if hours == 1 {
		return "1 hour ago"
	}
	return fmt.Sprintf("%d hours ago", hours)
}
