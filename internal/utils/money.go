package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMinorUnits renders an amount of integer cents as "1.234,50" style
// major-unit text for display surfaces (API stays on raw minor units).
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s,%02d", sign, formatThousand(amount/100), amount%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
