/*
Package factory provides JSON to Go partner-configuration conversion.

PURPOSE:
  Partner commission rules and settlement timing are configured as JSON
  (stored in the partners table, edited through the admin UI), so changing
  a partner's brackets never requires a code change. This package converts
  that JSON into crm.CommissionRule slices and a crm.SettlementConfig.

JSON SCHEMA:
  {
    "commission_rules": [
      {
        "id": "tier-1",
        "min_fee": 0,
        "max_fee": 500,            // 0 or absent = unbounded
        "commission": 50,
        "full_payout_threshold": 250,
        "priority": 1,
        "active": true,            // default true
        "updated_at": "2026-01-15T09:00:00Z"
      }
    ],
    "settlement": {
      "cutoff_day": 0,             // Sunday=0 .. Saturday=6
      "payout_day": 2,
      "payout_week_delay": 0,
      "down_payment_percentage": 10,
      "first_payout_percentage": 50
    }
  }

KEY FEATURES:
  - Validates weekdays (0-6) and percentages (0-100)
  - Active defaults to true when omitted
  - Missing settlement block yields a nil config (engine defaults apply)

USAGE:
  rules, cfg, err := factory.ParsePartnerConfig(configJSON)
  partner.CommissionRules, partner.SettlementConfig = rules, cfg

SEE ALSO:
  - crm/types.go: Target types
  - store/sqlite: Stores the raw JSON alongside the partner row
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PartnerConfigJSON is the stored per-partner configuration document.
type PartnerConfigJSON struct {
	CommissionRules []RuleJSON      `json:"commission_rules"`
	Settlement      *SettlementJSON `json:"settlement,omitempty"`
}

// RuleJSON is the JSON representation of one commission tier.
type RuleJSON struct {
	ID                  string  `json:"id"`
	MinFee              float64 `json:"min_fee"`
	MaxFee              float64 `json:"max_fee,omitempty"`
	Commission          float64 `json:"commission"`
	FullPayoutThreshold float64 `json:"full_payout_threshold,omitempty"`
	Priority            int     `json:"priority,omitempty"`
	Active              *bool   `json:"active,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

// SettlementJSON is the JSON representation of settlement timing/rates.
type SettlementJSON struct {
	CutoffDay             int     `json:"cutoff_day"`
	PayoutDay             int     `json:"payout_day"`
	PayoutWeekDelay       int     `json:"payout_week_delay,omitempty"`
	DownPaymentPercentage float64 `json:"down_payment_percentage,omitempty"`
	FirstPayoutPercentage float64 `json:"first_payout_percentage,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParsePartnerConfig parses the stored JSON document for a partner.
func ParsePartnerConfig(jsonStr string) ([]crm.CommissionRule, *crm.SettlementConfig, error) {
	if jsonStr == "" {
		return nil, nil, nil
	}

	var doc PartnerConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse partner config JSON: %w", err)
	}
	return FromJSON(doc)
}

// FromJSON converts a PartnerConfigJSON document to model types.
func FromJSON(doc PartnerConfigJSON) ([]crm.CommissionRule, *crm.SettlementConfig, error) {
	rules := make([]crm.CommissionRule, 0, len(doc.CommissionRules))
	seen := make(map[string]bool)
	for _, rj := range doc.CommissionRules {
		if rj.ID == "" {
			return nil, nil, fmt.Errorf("commission rule missing id")
		}
		if seen[rj.ID] {
			return nil, nil, fmt.Errorf("duplicate commission rule id %q", rj.ID)
		}
		seen[rj.ID] = true

		rule, err := parseRule(rj)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
	}

	var cfg *crm.SettlementConfig
	if doc.Settlement != nil {
		parsed, err := parseSettlement(*doc.Settlement)
		if err != nil {
			return nil, nil, err
		}
		cfg = parsed
	}

	return rules, cfg, nil
}

func parseRule(rj RuleJSON) (crm.CommissionRule, error) {
	if rj.MinFee < 0 || rj.MaxFee < 0 {
		return crm.CommissionRule{}, fmt.Errorf("rule %q: negative fee bound", rj.ID)
	}
	if rj.MaxFee != 0 && rj.MaxFee < rj.MinFee {
		return crm.CommissionRule{}, fmt.Errorf("rule %q: max_fee below min_fee", rj.ID)
	}
	if rj.Commission < 0 {
		return crm.CommissionRule{}, fmt.Errorf("rule %q: negative commission", rj.ID)
	}

	active := true
	if rj.Active != nil {
		active = *rj.Active
	}

	return crm.CommissionRule{
		ID:                  crm.RuleID(rj.ID),
		MinFee:              decimal.NewFromFloat(rj.MinFee),
		MaxFee:              decimal.NewFromFloat(rj.MaxFee),
		Commission:          decimal.NewFromFloat(rj.Commission),
		FullPayoutThreshold: decimal.NewFromFloat(rj.FullPayoutThreshold),
		Priority:            rj.Priority,
		Active:              active,
		UpdatedAt:           rj.UpdatedAt,
	}, nil
}

func parseSettlement(sj SettlementJSON) (*crm.SettlementConfig, error) {
	if sj.CutoffDay < 0 || sj.CutoffDay > 6 {
		return nil, fmt.Errorf("cutoff_day %d out of range 0-6", sj.CutoffDay)
	}
	if sj.PayoutDay < 0 || sj.PayoutDay > 6 {
		return nil, fmt.Errorf("payout_day %d out of range 0-6", sj.PayoutDay)
	}
	if sj.PayoutWeekDelay < 0 {
		return nil, fmt.Errorf("payout_week_delay must not be negative")
	}
	if sj.DownPaymentPercentage < 0 || sj.DownPaymentPercentage > 100 {
		return nil, fmt.Errorf("down_payment_percentage %v out of range 0-100", sj.DownPaymentPercentage)
	}
	if sj.FirstPayoutPercentage < 0 || sj.FirstPayoutPercentage > 100 {
		return nil, fmt.Errorf("first_payout_percentage %v out of range 0-100", sj.FirstPayoutPercentage)
	}

	return &crm.SettlementConfig{
		CutoffDay:             time.Weekday(sj.CutoffDay),
		PayoutDay:             time.Weekday(sj.PayoutDay),
		PayoutWeekDelay:       sj.PayoutWeekDelay,
		DownPaymentPercentage: decimal.NewFromFloat(sj.DownPaymentPercentage),
		FirstPayoutPercentage: decimal.NewFromFloat(sj.FirstPayoutPercentage),
	}, nil
}

// =============================================================================
// SERIALIZATION - Model types back to the stored document
// =============================================================================

// ToJSON serializes a partner's rules and settlement config for storage.
func ToJSON(rules []crm.CommissionRule, cfg *crm.SettlementConfig) (string, error) {
	doc := PartnerConfigJSON{}
	for _, r := range rules {
		active := r.Active
		doc.CommissionRules = append(doc.CommissionRules, RuleJSON{
			ID:                  string(r.ID),
			MinFee:              r.MinFee.InexactFloat64(),
			MaxFee:              r.MaxFee.InexactFloat64(),
			Commission:          r.Commission.InexactFloat64(),
			FullPayoutThreshold: r.FullPayoutThreshold.InexactFloat64(),
			Priority:            r.Priority,
			Active:              &active,
			UpdatedAt:           r.UpdatedAt,
		})
	}
	if cfg != nil {
		doc.Settlement = &SettlementJSON{
			CutoffDay:             int(cfg.CutoffDay),
			PayoutDay:             int(cfg.PayoutDay),
			PayoutWeekDelay:       cfg.PayoutWeekDelay,
			DownPaymentPercentage: cfg.DownPaymentPercentage.InexactFloat64(),
			FirstPayoutPercentage: cfg.FirstPayoutPercentage.InexactFloat64(),
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize partner config: %w", err)
	}
	return string(data), nil
}
