// Package bands maps IELTS band scores to display labels and colors.
package bands

import "fmt"

// Description returns the official IELTS band label for a score.
func Description(score float64) string {
	switch {
	case score >= 9:
		return "Expert User"
	case score >= 8:
		return "Very Good User"
	case score >= 7:
		return "Good User"
	case score >= 6:
		return "Competent User"
	case score >= 5:
		return "Modest User"
	case score >= 4:
		return "Limited User"
	case score >= 3:
		return "Extremely Limited User"
	default:
		return "Did not attempt the test"
	}
}

// Color returns the display color (hex) for a score bucket.
func Color(score float64) string {
	switch {
	case score >= 8.5:
		return "#10b981" // emerald
	case score >= 7.5:
		return "#059669" // green
	case score >= 6.5:
		return "#65a30d" // lime
	case score >= 5.5:
		return "#d97706" // orange
	case score >= 4.5:
		return "#dc2626" // red
	default:
		return "#6b7280" // gray
	}
}

// FormatDuration renders a duration in seconds as "3m 20s" or "45s".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	total := int(seconds)
	minutes := total / 60
	remaining := total % 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, remaining)
	}
	return fmt.Sprintf("%ds", remaining)
}
