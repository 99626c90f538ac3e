package contract

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// SecurityDepositPercent is the share of the booking price the marketplace
// holds back as a deposit.
const SecurityDepositPercent = 10

type Payment struct {
	Price   *big.Int
	Deposit *big.Int
	Total   *big.Int
}

// BookingPayment computes what a booking of participants at pricePerPerson
// must send: the price plus the security deposit.
func BookingPayment(pricePerPerson *big.Int, participants *big.Int) (Payment, error) {
	if pricePerPerson == nil || pricePerPerson.Sign() < 0 {
		return Payment{}, errors.New("price per person must be non-negative")
	}
	if participants == nil || participants.Sign() <= 0 {
		return Payment{}, errors.New("participants must be positive")
	}
	price := new(big.Int).Mul(pricePerPerson, participants)
	deposit := new(big.Int).Mul(price, big.NewInt(SecurityDepositPercent))
	deposit.Quo(deposit, big.NewInt(100))
	return Payment{
		Price:   price,
		Deposit: deposit,
		Total:   new(big.Int).Add(price, deposit),
	}, nil
}

// Ether converts a whole or fractional ether amount such as "0.1" to wei.
func Ether(amount string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(amount)
	if !ok || r.Sign() < 0 {
		return nil, errors.Errorf("invalid ether amount %q", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return nil, errors.Errorf("%q has more precision than wei", amount)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatEther renders wei as a decimal ether amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

var weiPerEther = big.NewInt(1_000_000_000_000_000_000)
