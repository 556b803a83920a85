// Package money centralizes order amount arithmetic. All amounts are
// decimal with two fractional digits, rounded half up, so repeated
// recomputation over the same inputs yields identical values.
package money

import "github.com/shopspring/decimal"

var (
	platformFeeRate = decimal.NewFromFloat(0.08)
	downpaymentRate = decimal.NewFromFloat(0.5)
)

// Line is one priced order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Round normalizes an amount to two fractional digits, half up.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// LineTotal returns the rounded extension of a single line.
func LineTotal(line Line) decimal.Decimal {
	return Round(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
}

// ItemsSubtotal sums the rounded line extensions.
func ItemsSubtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line))
	}
	return Round(subtotal)
}

// GrandTotal is the items subtotal plus the shipping fee.
func GrandTotal(itemsSubtotal, shippingFee decimal.Decimal) decimal.Decimal {
	return Round(itemsSubtotal.Add(shippingFee))
}

// Downpayment is half of the grand total, rounded.
func Downpayment(grandTotal decimal.Decimal) decimal.Decimal {
	return Round(grandTotal.Mul(downpaymentRate))
}

// Split is the settlement breakdown of a verified order.
type Split struct {
	PlatformFee   decimal.Decimal
	ArtisanPayout decimal.Decimal
}

// FeeSplit computes the platform's 8% cut of the items subtotal and the
// artisan payout of the remainder plus the full shipping fee. The payout
// is derived by subtraction so fee plus payout always equals the grand
// total; the shipping fee passes through untouched because the platform
// never takes a cut of courier charges.
func FeeSplit(itemsSubtotal, shippingFee decimal.Decimal) Split {
	fee := Round(itemsSubtotal.Mul(platformFeeRate))
	return Split{
		PlatformFee:   fee,
		ArtisanPayout: Round(itemsSubtotal.Sub(fee).Add(shippingFee)),
	}
}
