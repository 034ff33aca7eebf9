package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatInt formats an integer with Indian digit grouping: the last three
// digits, then pairs (12,34,567).
func FormatInt(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return sign + strings.Join(groups, ",") + "," + tail
}

// FormatQty formats a share or contract quantity with Indian-market
// suffixes: crores above 1e7, lakhs above 1e5.
func FormatQty(v float64) string {
	sign := ""
	a := v
	if a < 0 {
		sign = "-"
		a = -a
	}
	switch {
	case a >= 1e7:
		return fmt.Sprintf("%s%.2fCr", sign, a/1e7)
	case a >= 1e5:
		return fmt.Sprintf("%s%.2fL", sign, a/1e5)
	default:
		return sign + FormatInt(int64(math.Round(a)))
	}
}

// FormatPrice formats a rupee price, or "-" when the value is absent.
func FormatPrice(p float64) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatPct formats a signed percentage point change.
func FormatPct(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}
