package services

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the driver's share used when none is configured.
var DefaultCommissionRate = decimal.RequireFromString("0.15")

// CommissionPolicy computes the share of an order value credited to the driver.
type CommissionPolicy struct {
	rate decimal.Decimal
}

// NewCommissionPolicy creates a policy. rate must be within [0, 1].
func NewCommissionPolicy(rate decimal.Decimal) (CommissionPolicy, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return CommissionPolicy{}, errs.NewValueIsOutOfRangeError("commissionRate", rate.String(), 0, 1)
	}
	return CommissionPolicy{rate: rate}, nil
}

// DefaultCommissionPolicy returns a policy at DefaultCommissionRate.
func DefaultCommissionPolicy() CommissionPolicy {
	return CommissionPolicy{rate: DefaultCommissionRate}
}

// Rate returns the configured share.
func (p CommissionPolicy) Rate() decimal.Decimal {
	return p.rate
}

// Commission returns orderValue × rate rounded to cents.
func (p CommissionPolicy) Commission(orderValue kernel.Money) kernel.Money {
	return orderValue.Mul(p.rate)
}
