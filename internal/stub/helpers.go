package stub

import (
	"fmt"
	"math"
	"strings"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatDays(v float64) string {
	return fmt.Sprintf("%.1f days", v)
}
