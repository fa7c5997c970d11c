package crm_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// RULE BRACKETS
// =============================================================================

func TestCommissionRule_Threshold(t *testing.T) {
	// Explicit full-payout threshold wins
	r := crm.CommissionRule{
		Commission:          decimal.NewFromInt(100),
		FullPayoutThreshold: decimal.NewFromInt(500),
	}
	assert.True(t, r.Threshold().Equal(decimal.NewFromInt(500)))

	// Absent threshold falls back to the commission amount
	r.FullPayoutThreshold = decimal.Zero
	assert.True(t, r.Threshold().Equal(decimal.NewFromInt(100)))
}

// =============================================================================
// SETTLEMENT CONFIG RATES
// =============================================================================

func TestSettlementConfig_NilDefaults(t *testing.T) {
	var cfg *crm.SettlementConfig

	assert.True(t, cfg.DownPaymentRate().Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, cfg.FirstPayoutRate().Equal(decimal.NewFromFloat(0.50)))
}

func TestSettlementConfig_ExplicitRates(t *testing.T) {
	cfg := &crm.SettlementConfig{
		DownPaymentPercentage: decimal.NewFromInt(20),
		FirstPayoutPercentage: decimal.NewFromInt(30),
	}

	assert.True(t, cfg.DownPaymentRate().Equal(decimal.NewFromFloat(0.20)))
	assert.True(t, cfg.FirstPayoutRate().Equal(decimal.NewFromFloat(0.30)))
}

// =============================================================================
// DEPOSIT NORMALIZATION
// =============================================================================

func TestCanonicalDeposits_HistoryWins(t *testing.T) {
	// GIVEN: Both representations present on a raw record
	history := []crm.Deposit{
		{Date: crm.NewDate(2026, time.February, 1), Amount: decimal.NewFromInt(300)},
	}
	legacy := crm.LegacyDeposits{
		Deposit1Amount: decimal.NewFromInt(999),
		Deposit1Date:   crm.NewDate(2026, time.January, 1),
	}

	out := crm.CanonicalDeposits(history, legacy)

	// THEN: The explicit history takes precedence; legacy columns ignored
	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(300)))
}

func TestCanonicalDeposits_LegacyFold(t *testing.T) {
	legacy := crm.LegacyDeposits{
		Deposit1Amount: decimal.NewFromInt(100),
		Deposit1Date:   crm.NewDate(2026, time.January, 1),
		Deposit2Amount: decimal.NewFromInt(200),
		Deposit2Date:   crm.NewDate(2026, time.February, 1),
	}

	out := crm.CanonicalDeposits(nil, legacy)

	require.Len(t, out, 2)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, out[1].Amount.Equal(decimal.NewFromInt(200)))
}

func TestCanonicalDeposits_SkipsEmptySlots(t *testing.T) {
	// GIVEN: Only the second legacy slot was ever used
	legacy := crm.LegacyDeposits{
		Deposit2Amount: decimal.NewFromInt(200),
		Deposit2Date:   crm.NewDate(2026, time.February, 1),
	}

	out := crm.CanonicalDeposits(nil, legacy)

	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(200)))
}

func TestCanonicalDeposits_AllEmpty(t *testing.T) {
	assert.Empty(t, crm.CanonicalDeposits(nil, crm.LegacyDeposits{}))
}

func TestCanonicalDeposits_CopiesHistory(t *testing.T) {
	history := []crm.Deposit{
		{Date: crm.NewDate(2026, time.February, 1), Amount: decimal.NewFromInt(300)},
	}

	out := crm.CanonicalDeposits(history, crm.LegacyDeposits{})
	out[0].Amount = decimal.NewFromInt(1)

	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(300)), "input must not be aliased")
}

// =============================================================================
// CASE SUMS
// =============================================================================

func TestCase_DepositsBeforeIsExclusive(t *testing.T) {
	day := crm.NewDate(2026, time.March, 2)
	c := crm.Case{DepositHistory: []crm.Deposit{
		{Date: day.AddDays(-1), Amount: decimal.NewFromInt(10)},
		{Date: day, Amount: decimal.NewFromInt(20)},
		{Date: day.AddDays(1), Amount: decimal.NewFromInt(40)},
	}}

	assert.True(t, c.DepositsBefore(day).Equal(decimal.NewFromInt(10)))
	assert.True(t, c.CumulativeDeposit().Equal(decimal.NewFromInt(70)))
}

// =============================================================================
// STATUS TABLE
// =============================================================================

func TestChecksFor_ContractedStatuses(t *testing.T) {
	for _, status := range []crm.Status{crm.StatusContracted, crm.StatusFirstDeposit, crm.StatusSecondDeposit} {
		checks := crm.ChecksFor(status)
		assert.Equal(t, []crm.WarningKind{
			crm.WarnMissingContractDate,
			crm.WarnMissingContractFee,
			crm.WarnNoMatchingRule,
		}, checks, "status %s", status)
		assert.True(t, status.IsContracted(), "status %s", status)
	}
}

func TestChecksFor_UnknownStatus(t *testing.T) {
	assert.Empty(t, crm.ChecksFor(crm.Status("whatever")))
}

func TestStatus_IsKnown(t *testing.T) {
	for _, s := range crm.KnownStatuses {
		assert.True(t, s.IsKnown(), "status %s", s)
	}
	assert.False(t, crm.Status("whatever").IsKnown())
	assert.False(t, crm.Status("").IsKnown())
}
