package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// BarChart draws one horizontal bar per value. Negative values extend to
// the left of the axis. width is the number of characters of the longest bar.
func BarChart(title string, labels []string, values []float64, unit string, width int) string {
	var sb strings.Builder

	if width < 1 {
		width = 40
	}
	var maxAbs float64
	negative := false
	for _, v := range values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
		if v < 0 {
			negative = true
		}
	}
	scale := 0.0
	if maxAbs > 0 {
		scale = float64(width) / maxAbs
	}
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, utf8.RuneCountInString(l))
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  %s\n", title)
	fmt.Fprintf(&sb, "  %s\n\n", strings.Repeat("─", utf8.RuneCountInString(title)))

	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		bar := int(math.Round(math.Abs(v) * scale))
		left, right := "", strings.Repeat("█", bar)
		if negative {
			if v < 0 {
				left, right = strings.Repeat("█", bar), ""
			}
			left = strings.Repeat(" ", width-utf8.RuneCountInString(left)) + left
		}
		fmt.Fprintf(&sb, "  %-*s %s│%s %.3f%s\n", labelWidth, label, left, right, v, unit)
	}
	return sb.String()
}

// Box frames a title and lines of text
func Box(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		maxLen = max(maxLen, utf8.RuneCountInString(line))
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	fmt.Fprintf(&sb, "  ╔%s╗\n", border)
	fmt.Fprintf(&sb, "  ║  %-*s  ║\n", maxLen-4, title)
	fmt.Fprintf(&sb, "  ╠%s╣\n", border)
	for _, line := range lines {
		fmt.Fprintf(&sb, "  ║  %-*s  ║\n", maxLen-4, line)
	}
	fmt.Fprintf(&sb, "  ╚%s╝\n", border)

	return sb.String()
}
