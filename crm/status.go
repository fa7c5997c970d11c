/*
status.go - Case workflow statuses and the warning table

PURPOSE:
  The workflow stage labels are Korean strings in the stored data (the office
  runs in Korean); here they become a closed Status type so the "which
  statuses trigger which check" mapping is an explicit table instead of
  string-array membership checks scattered through the logic.

STATUS FLOW (typical):
  신규접수 -> 상담중 -> 계약 완료 -> 1차 입금완료 -> 2차 입금완료 -> 종결
  (취소 can happen at any point)

WARNING TABLE:
  statusChecks maps each status to the ordered list of data-quality checks
  that apply at that stage. Evaluation order within a status is fixed, so
  warning output order is deterministic.

SEE ALSO:
  - commission/warnings.go: The evaluator consuming this table
*/
package crm

// =============================================================================
// STATUS - Workflow stage labels (stored values are Korean)
// =============================================================================

type Status string

const (
	StatusNew           Status = "신규접수"   // new intake
	StatusConsulting    Status = "상담중"    // consultation in progress
	StatusContracted    Status = "계약 완료"  // contract signed
	StatusFirstDeposit  Status = "1차 입금완료" // first deposit received
	StatusSecondDeposit Status = "2차 입금완료" // second deposit received
	StatusClosed        Status = "종결"     // case closed out
	StatusDropped       Status = "취소"     // canceled/dropped
)

// KnownStatuses lists every workflow status. API writes are validated
// against this set; the warning evaluator itself tolerates unknown labels
// (they simply trigger no checks) so imported legacy rows still load.
var KnownStatuses = []Status{
	StatusNew, StatusConsulting, StatusContracted,
	StatusFirstDeposit, StatusSecondDeposit, StatusClosed, StatusDropped,
}

// IsKnown reports whether the status is one of the workflow statuses.
func (s Status) IsKnown() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// =============================================================================
// WARNING KINDS - Data-quality checks
// =============================================================================

type WarningKind string

const (
	WarnNoReminder          WarningKind = "no_reminder"
	WarnMissingContractDate WarningKind = "missing_contract_date"
	WarnMissingContractFee  WarningKind = "missing_contract_fee"
	WarnNoMatchingRule      WarningKind = "no_matching_rule"
)

// Message returns the human-readable warning text.
func (k WarningKind) Message() string {
	switch k {
	case WarnNoReminder:
		return "no reminder set"
	case WarnMissingContractDate:
		return "missing contract date"
	case WarnMissingContractFee:
		return "missing contract fee"
	case WarnNoMatchingRule:
		return "no matching commission rule"
	default:
		return string(k)
	}
}

// statusChecks drives the case warning evaluator. Order within each list is
// the order warnings are emitted.
var statusChecks = map[Status][]WarningKind{
	StatusNew:        {WarnNoReminder},
	StatusConsulting: {WarnNoReminder},
	StatusContracted: {
		WarnMissingContractDate,
		WarnMissingContractFee,
		WarnNoMatchingRule,
	},
	StatusFirstDeposit: {
		WarnMissingContractDate,
		WarnMissingContractFee,
		WarnNoMatchingRule,
	},
	StatusSecondDeposit: {
		WarnMissingContractDate,
		WarnMissingContractFee,
		WarnNoMatchingRule,
	},
}

// ChecksFor returns the ordered data-quality checks for a status.
// Unknown statuses get none.
func ChecksFor(status Status) []WarningKind {
	return statusChecks[status]
}

// IsContracted reports whether a status implies a signed contract.
func (s Status) IsContracted() bool {
	switch s {
	case StatusContracted, StatusFirstDeposit, StatusSecondDeposit:
		return true
	}
	return false
}
