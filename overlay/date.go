package overlay

import (
	"fmt"
	"time"
)

// FormatDate renders t as e.g. "1st Feb 2026" or "12th Oct 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinalSuffix(t.Day()), t.Format("Jan"), t.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
