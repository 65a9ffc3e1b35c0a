package task

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultCalendarColor = "#9e9e9e"
	calendarTextColor    = "#ffffff"
)

var statusColors = map[string]string{
	StatusTodo:       "#9e9e9e",
	StatusInProgress: "#1976d2",
	StatusReview:     "#ed6c02",
	StatusDone:       "#2e7d32",
	StatusHold:       "#d32f2f",
}

type CalendarItem struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	IsMilestone bool       `json:"is_milestone"`
	AssigneeID  *int64     `json:"assignee"`
	IsDelayed   bool       `json:"is_delayed"`
	Color       string     `json:"color"`
	TextColor   string     `json:"textColor"`
	Progress    float64    `json:"progress"`
}

func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return defaultCalendarColor
}

var hundred = decimal.NewFromInt(100)

// Progress is actual/estimated hours as a percentage capped at 100. Missing
// or zero hours yield 0.
func Progress(estimated, actual decimal.NullDecimal) float64 {
	if !estimated.Valid || !actual.Valid || estimated.Decimal.IsZero() || actual.Decimal.IsZero() {
		return 0
	}
	pct := actual.Decimal.Div(estimated.Decimal).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2).InexactFloat64()
}

func NewCalendarItem(t *Task) *CalendarItem {
	return &CalendarItem{
		ID:          t.ID,
		Title:       t.Title,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		IsMilestone: t.IsMilestone,
		AssigneeID:  t.AssigneeID,
		IsDelayed:   t.IsDelayed,
		Color:       StatusColor(t.Status),
		TextColor:   calendarTextColor,
		Progress:    Progress(t.EstimatedHours, t.ActualHours),
	}
}

// ParseCalendarRange reads start/end as RFC 3339 or YYYY-MM-DD. A date-only
// end includes that whole day. Missing bounds default to the month of now.
func ParseCalendarRange(start, end string, now time.Time) (CalendarRange, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	r := CalendarRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}

	if start != "" {
		t, _, err := parseCalendarTime(start)
		if err != nil {
			return r, err
		}
		r.Start = t
	}
	if end != "" {
		t, dateOnly, err := parseCalendarTime(end)
		if err != nil {
			return r, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		r.End = t
	}
	return r, nil
}

func parseCalendarTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	return t, true, err
}
