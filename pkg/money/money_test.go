package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestItemsSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{
			name:  "empty cart",
			lines: nil,
			want:  "0",
		},
		{
			name: "single line",
			lines: []Line{
				{UnitPrice: dec("350.00"), Quantity: 2},
			},
			want: "700",
		},
		{
			name: "mixed lines",
			lines: []Line{
				{UnitPrice: dec("350.00"), Quantity: 2},
				{UnitPrice: dec("125.50"), Quantity: 3},
			},
			want: "1076.5",
		},
		{
			name: "fractional unit prices round per line",
			lines: []Line{
				{UnitPrice: dec("33.335"), Quantity: 3},
			},
			want: "100.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemsSubtotal(tt.lines)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestDownpaymentRounding(t *testing.T) {
	tests := []struct {
		name       string
		grandTotal string
		want       string
	}{
		{name: "even amount", grandTotal: "1000.00", want: "500"},
		{name: "odd centavo rounds half up", grandTotal: "100.01", want: "50.01"},
		{name: "odd peso", grandTotal: "999.99", want: "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downpayment(dec(tt.grandTotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestFeeSplitConservesGrandTotal(t *testing.T) {
	subtotals := []string{"1000.00", "1076.50", "0.01", "333.33", "99999.99"}
	shipping := dec("180.00")

	for _, raw := range subtotals {
		subtotal := dec(raw)
		split := FeeSplit(subtotal, shipping)
		grand := GrandTotal(subtotal, shipping)

		sum := split.PlatformFee.Add(split.ArtisanPayout)
		require.True(t, sum.Equal(grand),
			"subtotal %s: fee %s + payout %s != grand %s", subtotal, split.PlatformFee, split.ArtisanPayout, grand)
	}
}

func TestFeeSplitRates(t *testing.T) {
	split := FeeSplit(dec("1000.00"), dec("180.00"))

	assert.True(t, split.PlatformFee.Equal(dec("80")), "fee %s", split.PlatformFee)
	assert.True(t, split.ArtisanPayout.Equal(dec("1100")), "payout %s", split.ArtisanPayout)
}

func TestRecomputationIsStable(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("149.99"), Quantity: 7},
		{UnitPrice: dec("12.345"), Quantity: 11},
	}
	shipping := dec("95.25")

	first := GrandTotal(ItemsSubtotal(lines), shipping)
	for i := 0; i < 5; i++ {
		again := GrandTotal(ItemsSubtotal(lines), shipping)
		assert.True(t, again.Equal(first))
	}
}
