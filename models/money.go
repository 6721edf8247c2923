package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Prices in the store are whole rupiah.
var StoreCurrency = currency.IDR

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency currency.Unit   `json:"-"`
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: StoreCurrency}
}

func (m Money) CurrencyCode() string {
	return m.Currency.String()
}
