package vending

// The three faulty variants below each contain one seeded defect. They
// share the Correct price table and cap unless the defect says otherwise.

// WrongPrice charges the water price for coke, so coke dispenses after
// a single 1-euro coin.
type WrongPrice struct {
	balance int
}

func NewWrongPrice() *WrongPrice { return &WrongPrice{} }

func (m *WrongPrice) AddCoin(cents int) string {
	if !validCoin(cents) || m.balance+cents > BalanceCap {
		return OutCoinReturned
	}
	m.balance += cents
	return OutCoinAdded
}

func (m *WrongPrice) PushButton(product string) string {
	price, ok := prices[product]
	if !ok {
		return OutNoAction
	}
	if product == "coke" {
		price = PriceWater
	}
	if m.balance < price {
		return OutNoAction
	}
	m.balance -= price
	return DisplayName(product)
}

func (m *WrongPrice) Reset() { m.balance = 0 }

// CoinEater acknowledges a coin that exceeds the cap but silently drops
// it, so the reported balance and the real one diverge.
type CoinEater struct {
	balance int
}

func NewCoinEater() *CoinEater { return &CoinEater{} }

func (m *CoinEater) AddCoin(cents int) string {
	if !validCoin(cents) {
		return OutCoinReturned
	}
	if m.balance+cents > BalanceCap {
		return OutCoinAdded // coin swallowed, balance unchanged
	}
	m.balance += cents
	return OutCoinAdded
}

func (m *CoinEater) PushButton(product string) string {
	price, ok := prices[product]
	if !ok || m.balance < price {
		return OutNoAction
	}
	m.balance -= price
	return DisplayName(product)
}

func (m *CoinEater) Reset() { m.balance = 0 }

// FreeRefill dispenses without deducting the price, so one payment buys
// arbitrarily many products.
type FreeRefill struct {
	balance int
}

func NewFreeRefill() *FreeRefill { return &FreeRefill{} }

func (m *FreeRefill) AddCoin(cents int) string {
	if !validCoin(cents) || m.balance+cents > BalanceCap {
		return OutCoinReturned
	}
	m.balance += cents
	return OutCoinAdded
}

func (m *FreeRefill) PushButton(product string) string {
	price, ok := prices[product]
	if !ok || m.balance < price {
		return OutNoAction
	}
	return DisplayName(product)
}

func (m *FreeRefill) Reset() { m.balance = 0 }

// Registry returns the built-in black boxes keyed by name, the correct
// one first under "vending_machine_1" to mirror the model file naming.
func Registry() map[string]Machine {
	return map[string]Machine{
		"vending_machine_1": NewCorrect(),
		"vending_machine_2": NewWrongPrice(),
		"vending_machine_3": NewCoinEater(),
		"vending_machine_4": NewFreeRefill(),
	}
}
