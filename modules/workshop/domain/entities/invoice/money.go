package invoice

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ToMoney converts amount to a go-money value in the minor units of code.
// Unknown currencies are treated as having two decimal places.
func ToMoney(amount decimal.Decimal, code string) *money.Money {
	fraction := 2
	if c := money.GetCurrency(code); c != nil {
		fraction = c.Fraction
	}
	minor := amount.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, code)
}

// Display renders amount with the currency's symbol and separators.
func Display(amount decimal.Decimal, code string) string {
	return ToMoney(amount, code).Display()
}
