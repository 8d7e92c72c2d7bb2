package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTier        = errors.New("unknown tier")
	ErrUnknownPaymentKind = errors.New("unknown payment type")
)

const Currency = "aed"

// depositPercent is the share of the tier price charged up front.
const depositPercent = 20

type Tier string

const (
	TierBasic    Tier = "basic"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

var Tiers = []Tier{TierBasic, TierGold, TierPlatinum, TierDiamond}

// prices in fils (AED minor units).
var prices = map[Tier]int64{
	TierBasic:    150000,
	TierGold:     290000,
	TierPlatinum: 490000,
	TierDiamond:  890000,
}

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := prices[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

func (t Tier) Price() int64 {
	return prices[t]
}

func (t Tier) Deposit() int64 {
	return prices[t] * depositPercent / 100
}

// Amount is what an intent of the given kind charges. A full payment after a deposit
// only charges the balance.
func (t Tier) Amount(kind PaymentKind, depositPaid bool) int64 {
	switch kind {
	case PaymentDeposit:
		return t.Deposit()
	case PaymentFull:
		if depositPaid {
			return t.Price() - t.Deposit()
		}
		return t.Price()
	}
	return 0
}

type PaymentKind string

const (
	PaymentDeposit PaymentKind = "deposit"
	PaymentFull    PaymentKind = "full"
)

func ParsePaymentKind(s string) (PaymentKind, error) {
	switch PaymentKind(s) {
	case PaymentDeposit, PaymentFull:
		return PaymentKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentKind, s)
}
