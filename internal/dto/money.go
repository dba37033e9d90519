package dto

import "github.com/shopspring/decimal"

// Amounts cross the API as plain JSON numbers. Decoding accepts numbers and strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
