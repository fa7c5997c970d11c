/*
Package crm defines the data model for the lead/commission CRM.

PURPOSE:
  This package holds the persisted domain types (cases, partners, commission
  rules, settlement configuration, batches, expenses, tax invoices) plus the
  normalization that turns raw/legacy record shapes into one canonical form.
  The calculation packages (commission, settlement, report) are pure functions
  over these types and never see a legacy shape.

KEY CONCEPTS IN THIS FILE (types.go):
  - CommissionRule: One fee-bracket tier of a partner's payout schedule
  - SettlementConfig: Per-partner cutoff/payout weekday and rate configuration
  - Case: A customer lead/contract record with its deposit history
  - Partner: A referral source owning rules and one settlement config

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal, never float64
  2. Normalization at the boundary: legacy deposit columns fold into
     DepositHistory exactly once (CanonicalDeposits), not in business logic
  3. Explicit configuration: defaults are materialized by accessors, the
     calculators never read ambient state

AMOUNT UNITS:
  All fee/commission/deposit amounts are denominated in the same currency
  unit the caller uses (historically 만원, units of 10,000 KRW). The engine
  never converts units; it only requires consistency.

SEE ALSO:
  - status.go: Workflow statuses and the warning table
  - store.go: Persistence interface
  - commission/: Rule resolution and payable calculation
*/
package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CaseID string
type PartnerID string
type RuleID string
type BatchID string

// =============================================================================
// COMMISSION RULE - One tier of a partner's payout schedule
// =============================================================================

// CommissionRule applies to contract fees in [MinFee, MaxFee] inclusive.
// MaxFee of zero means the bracket is unbounded above.
type CommissionRule struct {
	ID RuleID

	MinFee decimal.Decimal
	MaxFee decimal.Decimal

	// Total commission payable when this rule is matched and fully triggered.
	Commission decimal.Decimal

	// Cumulative deposit at or above which 100% of Commission is payable.
	// Zero means "use Commission itself as the threshold".
	FullPayoutThreshold decimal.Decimal

	// Higher priority wins among equally-qualifying rules.
	Priority int

	// Inactive rules are never selected.
	Active bool

	// ISO timestamp; lexicographic compare is the secondary tie-break.
	UpdatedAt string
}

// Threshold returns the effective full-payout threshold.
func (r CommissionRule) Threshold() decimal.Decimal {
	if r.FullPayoutThreshold.IsPositive() {
		return r.FullPayoutThreshold
	}
	return r.Commission
}

// Matches reports whether a contract fee falls inside this rule's bracket.
// Bounds are inclusive; a zero MaxFee is unbounded.
func (r CommissionRule) Matches(contractFee decimal.Decimal) bool {
	if contractFee.LessThan(r.MinFee) {
		return false
	}
	if !r.MaxFee.IsZero() && contractFee.GreaterThan(r.MaxFee) {
		return false
	}
	return true
}

// =============================================================================
// SETTLEMENT CONFIG - Per-partner payout timing and rates
// =============================================================================

// Default rates when a partner has no settlement config.
var (
	DefaultDownPaymentPercentage = decimal.NewFromInt(10)
	DefaultFirstPayoutPercentage = decimal.NewFromInt(50)
)

type SettlementConfig struct {
	// Weekday anchors (Sunday=0 .. Saturday=6, see date.go).
	CutoffDay time.Weekday
	PayoutDay time.Weekday

	// 0 = payout in the cutoff week, 1 = the following week.
	PayoutWeekDelay int

	// Percent of contract fee that must be cumulatively deposited before
	// any partial payout is released.
	DownPaymentPercentage decimal.Decimal

	// Percent of total commission released once the down-payment threshold
	// is crossed. The remainder releases at the full-payout threshold.
	FirstPayoutPercentage decimal.Decimal
}

// DownPaymentRate returns DownPaymentPercentage/100, falling back to the
// default when the config is absent or the field is unset.
func (c *SettlementConfig) DownPaymentRate() decimal.Decimal {
	pct := DefaultDownPaymentPercentage
	if c != nil && c.DownPaymentPercentage.IsPositive() {
		pct = c.DownPaymentPercentage
	}
	return pct.Div(decimal.NewFromInt(100))
}

// FirstPayoutRate returns FirstPayoutPercentage/100 with the same fallback.
func (c *SettlementConfig) FirstPayoutRate() decimal.Decimal {
	pct := DefaultFirstPayoutPercentage
	if c != nil && c.FirstPayoutPercentage.IsPositive() {
		pct = c.FirstPayoutPercentage
	}
	return pct.Div(decimal.NewFromInt(100))
}

// =============================================================================
// CASE - Customer lead/contract record
// =============================================================================

// Deposit is one entry of a case's canonical deposit history.
type Deposit struct {
	Date   Date
	Amount decimal.Decimal
}

// Reminder is a follow-up reminder attached to a case.
type Reminder struct {
	Due  Date
	Note string
}

// Case is a customer lead. Cases are created at intake, mutated as the
// workflow progresses, and never hard-deleted: ClosedAt marks retirement
// and the engine ignores it.
type Case struct {
	ID        CaseID
	PartnerID PartnerID

	ClientName string
	Phone      string

	Status      Status
	ContractAt  Date
	ContractFee decimal.Decimal

	// Canonical deposit history. Raw records carrying legacy
	// deposit1/deposit2 columns are folded in via CanonicalDeposits
	// before a Case is constructed.
	DepositHistory []Deposit

	Reminders []Reminder

	Memo      string
	CreatedAt Date
	ClosedAt  Date
}

// CumulativeDeposit sums all recorded deposits for the case.
func (c Case) CumulativeDeposit() decimal.Decimal {
	total := decimal.Zero
	for _, d := range c.DepositHistory {
		total = total.Add(d.Amount)
	}
	return total
}

// DepositsBefore sums deposits dated strictly before the given day.
// Used by the incremental "this week" payable calculation.
func (c Case) DepositsBefore(day Date) decimal.Decimal {
	total := decimal.Zero
	for _, d := range c.DepositHistory {
		if d.Date.Before(day) {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// HasContractFee reports whether a contract fee has been recorded.
func (c Case) HasContractFee() bool {
	return c.ContractFee.IsPositive()
}

// =============================================================================
// NORMALIZATION - Legacy deposit columns -> canonical history
// =============================================================================

// LegacyDeposits carries the old two-column deposit shape still present in
// imported records. Zero amounts mean the slot was never used.
type LegacyDeposits struct {
	Deposit1Amount decimal.Decimal
	Deposit1Date   Date
	Deposit2Amount decimal.Decimal
	Deposit2Date   Date
}

// CanonicalDeposits produces the single canonical deposit history for a raw
// record. A non-empty explicit history takes precedence; otherwise the
// legacy columns are folded in, in order. This runs once at load time so
// the calculators only ever see one shape.
func CanonicalDeposits(history []Deposit, legacy LegacyDeposits) []Deposit {
	if len(history) > 0 {
		out := make([]Deposit, len(history))
		copy(out, history)
		return out
	}

	var out []Deposit
	if legacy.Deposit1Amount.IsPositive() {
		out = append(out, Deposit{Date: legacy.Deposit1Date, Amount: legacy.Deposit1Amount})
	}
	if legacy.Deposit2Amount.IsPositive() {
		out = append(out, Deposit{Date: legacy.Deposit2Date, Amount: legacy.Deposit2Amount})
	}
	return out
}

// =============================================================================
// PARTNER - Referral source owning rules and settlement config
// =============================================================================

type Partner struct {
	ID   PartnerID
	Name string

	// Contact person handling this partner's settlements. Explicit field,
	// never read from ambient configuration.
	Manager string
	Phone   string

	// Rule IDs are unique within a partner; ranges may overlap and the
	// resolver's deterministic ordering decides.
	CommissionRules []CommissionRule

	// Nil config falls back to the engine defaults.
	SettlementConfig *SettlementConfig

	CreatedAt Date
}
