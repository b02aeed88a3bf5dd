package ui

import "fmt"

// AwardLines renders "{count}× {award}" entries in map iteration order.
func AwardLines(awards map[string]int) []string {
	if len(awards) == 0 {
		return nil
	}
	lines := make([]string, 0, len(awards))
	for name, count := range awards {
		lines = append(lines, fmt.Sprintf("%d× %s", count, name))
	}
	return lines
}

// FormatStat renders a per-game statistic with one decimal place.
func FormatStat(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
