package accountstore

import (
	"strconv"
	"strings"
)

func wardNumber(label string) (int, bool) {
	rest, ok := strings.CutPrefix(label, "Ward ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func wardLess(a, b string) bool {
	na, oka := wardNumber(a)
	nb, okb := wardNumber(b)
	if oka && okb {
		return na < nb
	}
	return a < b
}
