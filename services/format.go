package services

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR formats an amount as Indonesian Rupiah with dot digit grouping
// (e.g., Rp 1.165.500). Sub-rupiah fractions are rounded away.
func FormatIDR(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	result := "Rp " + idPrinter.Sprintf("%d", int64(math.Round(amount)))
	if negative {
		result = "-" + result
	}
	return result
}

// FormatQty returns whole numbers without decimals and fractional values with two.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// FormatPercent renders a tax rate such as 11 or 2.5 as "11%" / "2.5%".
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}
