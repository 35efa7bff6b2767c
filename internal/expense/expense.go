// Package expense provides tenant-scoped expense storage. It is simple
// keyed storage, all records are scoped to the resolved user id of the
// request.
package expense

import "time"

// Expense is a single spend record. Date is a calendar date in
// YYYY-MM-DD form, the original records carry no timezone.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultCurrency is used when an expense is created without one.
const DefaultCurrency = "CAD"

// Currency describes a supported currency.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Currencies returns the supported currencies.
func Currencies() []Currency {
	return []Currency{
		{Code: "CAD", Symbol: "CA$", Name: "Canadian Dollar"},
		{Code: "USD", Symbol: "US$", Name: "US Dollar"},
		{Code: "EUR", Symbol: "€", Name: "Euro"},
		{Code: "GBP", Symbol: "£", Name: "British Pound"},
		{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
		{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
		{Code: "CHF", Symbol: "Fr", Name: "Swiss Franc"},
		{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
		{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
		{Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
	}
}
