/*
payable.go - Payable-amount calculation

PURPOSE:
  Answers "how much of this case's commission is payable right now?" from
  the contract fee, the cumulative deposits, and the partner's settlement
  configuration.

DECISION ORDER (full payout checked first):
  1. cumulative deposit >= full-payout threshold  -> full commission
  2. cumulative deposit >= contractFee * downPaymentRate -> partial
     (commission * firstPayoutRate)
  3. otherwise -> nothing payable yet
  Both comparisons are inclusive: landing exactly on a threshold releases
  the corresponding amount.

INCREMENTAL VARIANT:
  CalculateWeekPayable subtracts what was already payable before the
  settlement week began, so a case crossing the down-payment threshold in
  week N and the full threshold in week N+1 is not double-counted across
  batches.

SEE ALSO:
  - resolver.go: Rule selection
  - settlement/batch.go: Groups week payables into batches
*/
package commission

import (
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// RESULT
// =============================================================================

// PayableResult reports the outcome of a payable calculation.
// Payable and Total are zero (not nil, not error) when no contract fee is
// recorded or no rule resolves: "no data yet" is a normal state.
type PayableResult struct {
	Payable   decimal.Decimal
	Total     decimal.Decimal
	IsPartial bool
	Rule      *crm.CommissionRule
}

func zeroResult() PayableResult {
	return PayableResult{Payable: decimal.Zero, Total: decimal.Zero}
}

// =============================================================================
// CALCULATION
// =============================================================================

// CalculatePayable determines how much of the total commission is currently
// payable for a case. A nil settlement config falls back to the default
// down-payment (10%) and first-payout (50%) rates.
func CalculatePayable(c crm.Case, rules []crm.CommissionRule, cfg *crm.SettlementConfig) PayableResult {
	return calculate(c, rules, cfg, c.CumulativeDeposit())
}

// CalculateWeekPayable returns the amount that became payable within the
// settlement week starting at weekStart: the current payable minus whatever
// was already payable from deposits dated strictly before the week began.
func CalculateWeekPayable(c crm.Case, rules []crm.CommissionRule, cfg *crm.SettlementConfig, weekStart crm.Date) PayableResult {
	now := calculate(c, rules, cfg, c.CumulativeDeposit())
	if now.Rule == nil {
		return now
	}

	before := calculate(c, rules, cfg, c.DepositsBefore(weekStart))
	increment := now.Payable.Sub(before.Payable)
	if increment.IsNegative() {
		increment = decimal.Zero
	}

	now.Payable = increment
	return now
}

func calculate(c crm.Case, rules []crm.CommissionRule, cfg *crm.SettlementConfig, cumulativeDeposit decimal.Decimal) PayableResult {
	if !c.HasContractFee() {
		return zeroResult()
	}

	rule := ResolveRule(c.ContractFee, rules)
	if rule == nil {
		return zeroResult()
	}

	result := PayableResult{
		Payable: decimal.Zero,
		Total:   rule.Commission,
		Rule:    rule,
	}

	threshold := rule.Threshold()
	downPayment := c.ContractFee.Mul(cfg.DownPaymentRate())

	switch {
	case threshold.IsPositive() && cumulativeDeposit.GreaterThanOrEqual(threshold):
		result.Payable = rule.Commission

	case cumulativeDeposit.GreaterThanOrEqual(downPayment):
		result.Payable = rule.Commission.Mul(cfg.FirstPayoutRate())
		result.IsPartial = true
	}

	return result
}
