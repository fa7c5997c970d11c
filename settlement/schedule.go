/*
Package settlement implements weekly settlement scheduling and batching.

PURPOSE:
  Partners are paid on a weekly rhythm: deposits collected up to a cutoff
  weekday are grouped into one batch and paid out on a payout weekday. This
  package computes the window boundaries (schedule.go) and builds the batch
  for a partner's cases (batch.go). Like the commission package it is pure
  computation; persistence belongs to the caller.

WEEK CONVENTION:
  Weekdays are time.Weekday (Sunday=0 .. Saturday=6) throughout, matching
  crm.Date.StartOfWeek. Weekday-roll bugs are easy to introduce here, so
  the boundary rules are spelled out on NextWindow and pinned by tests.

KEY CONCEPTS IN THIS FILE (schedule.go):
  - Window: One settlement week's cutoff and payout dates
  - NextWindow: Window selection relative to a reference date
*/
package settlement

import (
	"time"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// Default weekday anchors when a partner has no settlement config:
// cutoff Sunday, payout the following Tuesday.
const (
	DefaultCutoffDay = time.Sunday
	DefaultPayoutDay = time.Tuesday
)

// Window is one settlement week: deposits up to Cutoff are settled and paid
// on Payout.
type Window struct {
	Cutoff crm.Date
	Payout crm.Date
}

// WeekStart returns the first day of the settlement week ending at Cutoff.
// Deposits dated on or after this day belong to the window.
func (w Window) WeekStart() crm.Date {
	return w.Cutoff.AddDays(-6)
}

// NextWindow computes the settlement window relevant to a reference date.
//
// Boundary rules:
//   - The cutoff is the next occurrence of the cutoff weekday on or after
//     the reference date. A reference date falling exactly on the cutoff
//     weekday IS the cutoff (no roll forward).
//   - The payout is the next occurrence of the payout weekday strictly
//     after the cutoff; equal weekdays roll a full week forward.
//   - PayoutWeekDelay pushes the payout by that many additional weeks.
func NextWindow(reference crm.Date, cfg *crm.SettlementConfig) Window {
	cutoffDay, payoutDay, delay := anchors(cfg)

	cutoff := reference.StartOfWeek(cutoffDay)
	if cutoff.Before(reference) {
		cutoff = cutoff.AddDays(7)
	}

	payout := cutoff.StartOfWeek(payoutDay)
	if payout.BeforeOrEqual(cutoff) {
		payout = payout.AddDays(7)
	}
	if delay > 0 {
		payout = payout.AddDays(7 * delay)
	}

	return Window{Cutoff: cutoff, Payout: payout}
}

// NextWindowFromString is the raw-input entry point. A malformed reference
// date is a correctness bug and fails fast with an InvalidDateError.
func NextWindowFromString(reference string, cfg *crm.SettlementConfig) (Window, error) {
	ref, ok := crm.ParseDate(reference)
	if !ok {
		return Window{}, &crm.InvalidDateError{Input: reference, Field: "reference date"}
	}
	return NextWindow(ref, cfg), nil
}

func anchors(cfg *crm.SettlementConfig) (cutoff, payout time.Weekday, delay int) {
	cutoff, payout = DefaultCutoffDay, DefaultPayoutDay
	if cfg != nil {
		cutoff = cfg.CutoffDay
		payout = cfg.PayoutDay
		delay = cfg.PayoutWeekDelay
	}
	return cutoff, payout, delay
}
