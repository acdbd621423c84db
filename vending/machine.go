// Package vending provides the vending machine black boxes used as the
// learning workload: one correct implementation, three faulty ones, a
// SUL adapter and a loader for serialized reference models.
package vending

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outputs shared by every implementation.
const (
	OutCoinAdded    = "coin_added"
	OutCoinReturned = "coin_returned"
	OutNoAction     = "No_Action"
)

// Prices in cents. The balance is capped; a coin that would push the
// balance over the cap is returned.
const (
	PriceCoke    = 150
	PricePeanuts = 100
	PriceWater   = 50
	BalanceCap   = 300
)

// Coins accepted by the machines, in cents.
var Coins = []int{50, 100, 200}

// Products sold by the machines.
var Products = []string{"coke", "peanuts", "water"}

var prices = map[string]int{
	"coke":    PriceCoke,
	"peanuts": PricePeanuts,
	"water":   PriceWater,
}

// Machine is the black-box interface of a vending machine. Reset must
// restore the initial internal state; without it, repeated queries
// observe leftover balance and learning becomes non-deterministic.
type Machine interface {
	AddCoin(cents int) string
	PushButton(product string) string
	Reset()
}

// DisplayName is the dispensing output for a product ("coke" -> "Coke").
func DisplayName(product string) string {
	return cases.Title(language.English).String(product)
}

// Correct is the reference implementation.
type Correct struct {
	balance int
}

func NewCorrect() *Correct { return &Correct{} }

func (m *Correct) AddCoin(cents int) string {
	if !validCoin(cents) || m.balance+cents > BalanceCap {
		return OutCoinReturned
	}
	m.balance += cents
	return OutCoinAdded
}

func (m *Correct) PushButton(product string) string {
	price, ok := prices[product]
	if !ok || m.balance < price {
		return OutNoAction
	}
	m.balance -= price
	return DisplayName(product)
}

func (m *Correct) Reset() { m.balance = 0 }

func validCoin(cents int) bool {
	for _, c := range Coins {
		if c == cents {
			return true
		}
	}
	return false
}
