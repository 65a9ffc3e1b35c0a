package task

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "-//task-management//calendar//KO"

// RenderICS serializes calendar items as a VCALENDAR feed. Items without any
// date are skipped; a task with a single date becomes a one-hour event.
func RenderICS(items []*CalendarItem, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName("업무 캘린더")

	for _, item := range items {
		start, end, ok := eventWindow(item)
		if !ok {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("task-%d@task-management", item.ID))
		event.SetDtStampTime(now)
		event.SetSummary(item.Title)
		event.SetDescription(fmt.Sprintf("상태: %s / 우선순위: %s / 진행률: %.0f%%", item.Status, item.Priority, item.Progress))
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetProperty(ics.ComponentPropertyCategories, item.Status)
		event.SetProperty(ics.ComponentPropertyColor, item.Color)
	}

	return cal.Serialize()
}

func eventWindow(item *CalendarItem) (time.Time, time.Time, bool) {
	switch {
	case item.StartDate != nil && item.DueDate != nil:
		start, end := *item.StartDate, *item.DueDate
		if !end.After(start) {
			end = start.Add(time.Hour)
		}
		return start, end, true
	case item.StartDate != nil:
		return *item.StartDate, item.StartDate.Add(time.Hour), true
	case item.DueDate != nil:
		return item.DueDate.Add(-time.Hour), *item.DueDate, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
