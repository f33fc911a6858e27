// README: Common money value object used across modules.
package types

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// EGP wraps an integer amount in the marketplace's default currency.
func EGP(amount int64) Money {
	return Money{Amount: amount, Currency: "EGP"}
}
