package report

import "strconv"

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
