package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeRule is a gateway charge: a percentage of the amount plus a fixed part.
type FeeRule struct {
	Percent decimal.Decimal
	Fixed   decimal.Decimal
}

// FeeSchedule maps lowercased gateway names to their fee rule. The "default"
// entry applies to gateways without their own rule.
type FeeSchedule map[string]FeeRule

// DefaultGateway is the schedule key used for unlisted gateways.
const DefaultGateway = "default"

// DefaultFeeSchedule returns the illustrative schedule used when none is configured.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		DefaultGateway: {Percent: decimal.RequireFromString("2.9"), Fixed: decimal.RequireFromString("0.30")},
		"razorpay":     {Percent: decimal.RequireFromString("2"), Fixed: decimal.Zero},
		"paypal":       {Percent: decimal.RequireFromString("3.49"), Fixed: decimal.RequireFromString("0.49")},
	}
}

// Rule returns the rule for gateway, falling back to the default entry.
func (s FeeSchedule) Rule(gateway string) (FeeRule, bool) {
	if rule, ok := s[strings.ToLower(strings.TrimSpace(gateway))]; ok {
		return rule, true
	}
	rule, ok := s[DefaultGateway]
	return rule, ok
}

// FeeEstimate is the split of an amount between gateway fee and payout.
type FeeEstimate struct {
	Amount decimal.Decimal
	Fee    decimal.Decimal
	Net    decimal.Decimal
}

// EstimateFees applies the gateway's rule to amount. Fees are rounded to
// cents and never exceed the amount. Gateways without a rule cost nothing.
func EstimateFees(amount decimal.Decimal, gateway string, schedule FeeSchedule) FeeEstimate {
	rule, ok := schedule.Rule(gateway)
	if !ok || !amount.IsPositive() {
		return FeeEstimate{Amount: amount, Fee: decimal.Zero, Net: amount}
	}

	fee := amount.Mul(rule.Percent).Div(decimal.NewFromInt(100)).Add(rule.Fixed).Round(2)
	if fee.GreaterThan(amount) {
		fee = amount
	}
	return FeeEstimate{Amount: amount, Fee: fee, Net: amount.Sub(fee)}
}
