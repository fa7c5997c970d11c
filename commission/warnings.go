/*
warnings.go - Case data-quality evaluation

PURPOSE:
  Produces the human-readable warnings shown next to a case in reports:
  missing reminders, missing contract data, and fee ranges no commission
  rule covers. Warnings flag data for a human to fix upstream; they are
  never errors.

EVALUATION:
  Checks come from the status table in crm/status.go and are evaluated
  independently (a case can carry several warnings at once). Output order
  is the table's insertion order, not sorted.
*/
package commission

import "github.com/9981mark-hub/leadmaster-crm-sub000/crm"

// Warnings evaluates the data-quality checks applicable to a case's status.
// The partner may be nil, in which case the commission-rule check is skipped.
func Warnings(c crm.Case, partner *crm.Partner) []string {
	var out []string
	for _, kind := range crm.ChecksFor(c.Status) {
		if applies(kind, c, partner) {
			out = append(out, kind.Message())
		}
	}
	return out
}

func applies(kind crm.WarningKind, c crm.Case, partner *crm.Partner) bool {
	switch kind {
	case crm.WarnNoReminder:
		return len(c.Reminders) == 0

	case crm.WarnMissingContractDate:
		return c.ContractAt.IsZero()

	case crm.WarnMissingContractFee:
		return !c.HasContractFee()

	case crm.WarnNoMatchingRule:
		if !c.HasContractFee() || partner == nil {
			return false
		}
		rule := ResolveRule(c.ContractFee, partner.CommissionRules)
		return rule == nil || rule.Commission.IsZero()
	}
	return false
}
