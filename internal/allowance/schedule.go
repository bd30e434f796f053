// Package allowance decides when a child's recurring allowance is due and credits it.
package allowance

import (
	"fmt"
	"time"

	"github.com/piggybank-dev/piggybank/internal/model"
)

// Schedule is the per-frequency strategy for allowance timing.
type Schedule interface {
	// Threshold is the minimum elapsed time before the allowance is due.
	// Zero means never due.
	Threshold(a model.Allowance) time.Duration
	// Next returns when the allowance after last comes due.
	Next(last time.Time, a model.Allowance) time.Time
}

// DailySchedule pays once every 24 hours.
type DailySchedule struct{}

func (DailySchedule) Threshold(model.Allowance) time.Duration { return 24 * time.Hour }

func (DailySchedule) Next(last time.Time, _ model.Allowance) time.Time { return last.AddDate(0, 0, 1) }

// WeeklySchedule pays once every 7 days.
type WeeklySchedule struct{}

func (WeeklySchedule) Threshold(model.Allowance) time.Duration { return 7 * 24 * time.Hour }

func (WeeklySchedule) Next(last time.Time, _ model.Allowance) time.Time { return last.AddDate(0, 0, 7) }

// CustomSchedule pays every IntervalSeconds. Without an interval it never pays.
type CustomSchedule struct{}

func (CustomSchedule) Threshold(a model.Allowance) time.Duration {
	if a.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(a.IntervalSeconds) * time.Second
}

func (s CustomSchedule) Next(last time.Time, a model.Allowance) time.Time {
	return last.Add(s.Threshold(a))
}

var schedules = map[model.Frequency]Schedule{
	model.FrequencyDaily:  DailySchedule{},
	model.FrequencyWeekly: WeeklySchedule{},
	model.FrequencyCustom: CustomSchedule{},
}

// ScheduleFor returns the strategy for a frequency.
func ScheduleFor(f model.Frequency) (Schedule, error) {
	s, ok := schedules[f]
	if !ok {
		return nil, fmt.Errorf("unknown allowance frequency: %s", f)
	}
	return s, nil
}

// configured reports whether a can ever come due, and returns its schedule.
func configured(a *model.Allowance) (Schedule, bool) {
	if a == nil || !a.Amount.IsPositive() || a.LastDate.IsZero() {
		return nil, false
	}
	s, err := ScheduleFor(a.Frequency)
	if err != nil || s.Threshold(*a) <= 0 {
		return nil, false
	}
	return s, true
}

// IsDue reports whether the allowance should be credited at now.
func IsDue(a *model.Allowance, now time.Time) bool {
	s, ok := configured(a)
	if !ok {
		return false
	}
	return now.Sub(a.LastDate) >= s.Threshold(*a)
}

// NextDue returns when the allowance next comes due. ok is false if it never will.
func NextDue(a *model.Allowance) (time.Time, bool) {
	s, ok := configured(a)
	if !ok {
		return time.Time{}, false
	}
	return s.Next(a.LastDate, *a), true
}

// TimeUntil returns the time left before the next allowance, clamped at zero.
func TimeUntil(a *model.Allowance, now time.Time) (time.Duration, bool) {
	next, ok := NextDue(a)
	if !ok {
		return 0, false
	}
	return max(next.Sub(now), 0), true
}

// FormatTimeUntil renders a countdown: "Ready now!", "2d 3h", "4h 5m", "6m 7s" or "8s".
func FormatTimeUntil(d time.Duration) string {
	if d <= 0 {
		return "Ready now!"
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
