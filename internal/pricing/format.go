package pricing

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCurrency formats amount as US dollars with thousands separators and exactly
// two fraction digits, e.g. 1234.5 -> "$1,234.50" and -3 -> "-$3.00".
//
// Rounding is half away from zero on the shortest decimal form of amount, so 1.005
// renders as "$1.01". Negative amounts keep their sign even when they round to zero.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}

	switch {
	case math.IsNaN(amount):
		return "$NaN"
	case math.IsInf(amount, 0):
		return sign + "$∞"
	}

	return sign + "$" + formatCents(math.Abs(amount))
}

// formatCents renders a non-negative finite amount with grouped integer digits and two
// fraction digits. It works on the decimal string, so it has no magnitude limit.
func formatCents(amount float64) string {
	whole, frac, _ := strings.Cut(strconv.FormatFloat(amount, 'f', -1, 64), ".")

	roundUp := len(frac) > 2 && frac[2] >= '5'
	frac = (frac + "00")[:2]

	cents, _ := new(big.Int).SetString(whole+frac, 10)
	if roundUp {
		cents.Add(cents, big.NewInt(1))
	}

	dollars, rem := new(big.Int).QuoRem(cents, big.NewInt(100), new(big.Int))
	fraction := rem.String()
	if len(fraction) < 2 {
		fraction = "0" + fraction
	}
	return humanize.BigComma(dollars) + "." + fraction
}
