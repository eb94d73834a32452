package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices are stored as integer pence in the database and exposed as
// two-decimal-place pounds everywhere else. All arithmetic runs on
// decimal.Decimal; floats never touch money.

// FromPence converts an integer pence amount to pounds.
func FromPence(pence int) decimal.Decimal {
	return decimal.New(int64(pence), -2)
}

// ToPence converts a pounds amount to integer pence, rounding half-up to the
// nearest penny.
func ToPence(amount decimal.Decimal) int {
	return int(amount.Round(2).Shift(2).IntPart())
}

// FormatGBP renders the amount as a display string, e.g. "£24.99".
func FormatGBP(amount decimal.Decimal) string {
	return fmt.Sprintf("£%s", amount.StringFixed(2))
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
