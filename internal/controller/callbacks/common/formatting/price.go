package formatting

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price in reais, e.g. "R$ 45,00"
func FormatPrice(price decimal.Decimal) string {
	return "R$ " + strings.Replace(price.StringFixed(2), ".", ",", 1)
}

// FormatPriceShort drops the cents when they are zero
func FormatPriceShort(price decimal.Decimal) string {
	if price.Equal(price.Truncate(0)) {
		return "R$ " + price.Truncate(0).String()
	}
	return FormatPrice(price)
}
