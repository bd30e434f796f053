package cli

import (
	"fmt"
	"time"

	"github.com/piggybank-dev/piggybank/internal/model"
)

// FormatDate formats a timestamp as a calendar date in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// FormatTimestamp formats a timestamp with minutes in local time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatAgo renders how long before now t was: "just now", "5m ago", "3h ago", "2d ago".
func FormatAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// FormatStatus renders a withdrawal status with a color.
func FormatStatus(s model.RequestStatus) string {
	switch s {
	case model.RequestApproved:
		return okStyle.Render(string(s))
	case model.RequestDeclined:
		return errStyle.Render(string(s))
	default:
		return warnStyle.Render(string(s))
	}
}

// FormatFrequency describes an allowance schedule: "daily", "weekly" or "every 90s".
func FormatFrequency(a *model.Allowance) string {
	if a == nil {
		return "-"
	}
	if a.Frequency == model.FrequencyCustom {
		return "every " + (time.Duration(a.IntervalSeconds) * time.Second).String()
	}
	return string(a.Frequency)
}

// Unread marks unread items.
func Unread(read bool) string {
	if read {
		return ""
	}
	return "●"
}
