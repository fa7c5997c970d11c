/*
Package commission implements the partner commission calculation engine.

PURPOSE:
  Pure, side-effect-free calculation over crm model values: which commission
  rule applies to a contract fee, how much of the commission is currently
  payable given the deposits received, and which data-quality warnings a
  case carries. No I/O, no shared state; every function is safe to call
  concurrently over many cases.

KEY CONCEPTS IN THIS FILE (resolver.go):
  - ResolveRule: Deterministic bracket selection over overlapping rules

DETERMINISM:
  Partner rule ranges may overlap. Resolution is made fully deterministic by
  a four-level ordering (see ResolveRule); the same inputs always select the
  same rule regardless of input list order, which keeps historical payout
  figures reproducible.

SEE ALSO:
  - payable.go: Payable-amount calculation on top of the resolver
  - warnings.go: Case data-quality evaluation
*/
package commission

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// ResolveRule selects the single applicable commission rule for a contract
// fee, or nil when no active rule's bracket contains the fee (commission is
// then zero, not an error).
//
// Candidates are ordered by:
//  1. MinFee descending (tightest/highest-starting bracket wins)
//  2. Priority descending
//  3. UpdatedAt descending (lexicographic ISO compare)
//  4. RuleID descending (final deterministic tie-break)
func ResolveRule(contractFee decimal.Decimal, rules []crm.CommissionRule) *crm.CommissionRule {
	var candidates []crm.CommissionRule
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if !r.Matches(contractFee) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.MinFee.Equal(b.MinFee) {
			return a.MinFee.GreaterThan(b.MinFee)
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt > b.UpdatedAt
		}
		return a.ID > b.ID
	})

	winner := candidates[0]
	return &winner
}
