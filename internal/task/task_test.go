package task_test

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/frahmantamala/task-management/internal/task"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Task", func() {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

	Describe("Delayed", func() {
		DescribeTable("flags past-due unfinished work",
			func(due *time.Time, status string, expected bool) {
				t := &task.Task{DueDate: due, Status: status}
				Expect(t.Delayed(now)).To(Equal(expected))
			},
			Entry("past due and open", ptr(now.Add(-time.Hour)), task.StatusInProgress, true),
			Entry("past due but done", ptr(now.Add(-time.Hour)), task.StatusDone, false),
			Entry("due later", ptr(now.Add(time.Hour)), task.StatusTodo, false),
			Entry("no due date", nil, task.StatusHold, false),
		)
	})

	Describe("SetStatus", func() {
		It("stamps completed_at once when moving to DONE", func() {
			t := &task.Task{Status: task.StatusReview}
			t.SetStatus(task.StatusDone, now)
			Expect(t.CompletedAt).To(Equal(&now))

			t.SetStatus(task.StatusDone, now.Add(time.Hour))
			Expect(*t.CompletedAt).To(Equal(now))
		})

		It("clears completed_at when reopened", func() {
			t := &task.Task{Status: task.StatusDone, CompletedAt: &now}
			t.SetStatus(task.StatusInProgress, now)
			Expect(t.CompletedAt).To(BeNil())
		})
	})

	DescribeTable("FormatDuration",
		func(d time.Duration, expected string) {
			Expect(task.FormatDuration(d)).To(Equal(expected))
		},
		Entry("minutes", 90*time.Minute, "01:30:00"),
		Entry("seconds", 59*time.Second, "00:00:59"),
		Entry("over a day", 26*time.Hour+5*time.Second, "1 02:00:05"),
		Entry("negative clamps", -time.Minute, "00:00:00"),
	)
})

var _ = Describe("Calendar", func() {
	DescribeTable("StatusColor",
		func(status, color string) {
			Expect(task.StatusColor(status)).To(Equal(color))
		},
		Entry("todo", task.StatusTodo, "#9e9e9e"),
		Entry("in progress", task.StatusInProgress, "#1976d2"),
		Entry("review", task.StatusReview, "#ed6c02"),
		Entry("done", task.StatusDone, "#2e7d32"),
		Entry("hold", task.StatusHold, "#d32f2f"),
		Entry("unknown", "ARCHIVED", "#9e9e9e"),
	)

	hoursOf := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}

	DescribeTable("Progress",
		func(estimated, actual decimal.NullDecimal, expected float64) {
			Expect(task.Progress(estimated, actual)).To(Equal(expected))
		},
		Entry("half way", hoursOf("8"), hoursOf("4"), 50.0),
		Entry("rounded", hoursOf("3"), hoursOf("1"), 33.33),
		Entry("capped", hoursOf("2"), hoursOf("5"), 100.0),
		Entry("no estimate", decimal.NullDecimal{}, hoursOf("5"), 0.0),
		Entry("zero estimate", hoursOf("0"), hoursOf("5"), 0.0),
		Entry("no actual", hoursOf("5"), decimal.NullDecimal{}, 0.0),
	)

	It("builds an item with colors and progress", func() {
		item := task.NewCalendarItem(&task.Task{
			ID: 7, Title: "릴리스", Status: task.StatusReview, Priority: task.PriorityHigh,
			IsMilestone: true, EstimatedHours: hoursOf("10"), ActualHours: hoursOf("2.5"),
		})

		Expect(item.Color).To(Equal("#ed6c02"))
		Expect(item.TextColor).To(Equal("#ffffff"))
		Expect(item.Progress).To(Equal(25.0))
		Expect(item.IsMilestone).To(BeTrue())
	})

	Describe("ParseCalendarRange", func() {
		now := time.Date(2024, 2, 20, 13, 0, 0, 0, time.UTC)

		It("defaults to the current month", func() {
			r, err := task.ParseCalendarRange("", "", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Start).To(Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
			Expect(r.End).To(Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("treats a date-only end as inclusive", func() {
			r, err := task.ParseCalendarRange("2024-02-05", "2024-02-10", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Start).To(Equal(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)))
			Expect(r.End).To(Equal(time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)))
		})

		It("keeps RFC 3339 bounds as given", func() {
			r, err := task.ParseCalendarRange("2024-02-05T09:00:00Z", "2024-02-05T18:00:00Z", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.End.Sub(r.Start)).To(Equal(9 * time.Hour))
		})

		It("rejects garbage", func() {
			_, err := task.ParseCalendarRange("yesterday", "", now)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RenderICS", func() {
		It("emits one event per dated item", func() {
			start := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)
			due := time.Date(2024, 2, 9, 18, 0, 0, 0, time.UTC)
			items := []*task.CalendarItem{
				{ID: 1, Title: "API 설계", StartDate: &start, DueDate: &due, Status: task.StatusInProgress, Color: "#1976d2"},
				{ID: 2, Title: "마감만", DueDate: &due, Status: task.StatusTodo, Color: "#9e9e9e"},
				{ID: 3, Title: "날짜 없음", Status: task.StatusTodo},
			}

			feed := task.RenderICS(items, start)
			cal, err := ics.ParseCalendar(strings.NewReader(feed))

			Expect(err).NotTo(HaveOccurred())
			events := cal.Events()
			Expect(events).To(HaveLen(2))
			Expect(events[0].Id()).To(Equal("task-1@task-management"))
			Expect(events[0].GetProperty(ics.ComponentPropertySummary).Value).To(Equal("API 설계"))
			Expect(feed).To(ContainSubstring("CATEGORIES:IN_PROGRESS"))
		})
	})
})

var _ = Describe("ExportXLSX", func() {
	It("writes a header row and one row per task", func() {
		due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		buf, err := task.ExportXLSX([]*task.Task{
			{ID: 1, Title: "배포 자동화", Status: task.StatusTodo, Priority: task.PriorityHigh,
				AssigneeName: "kim", AssigneeFullName: "김철수", DueDate: &due, IsDelayed: true},
			{ID: 2, Title: "문서화", Status: task.StatusDone, Priority: task.PriorityLow, AssigneeName: "lee"},
		})
		Expect(err).NotTo(HaveOccurred())

		f, err := excelize.OpenReader(buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(Equal([]string{"업무 목록"}))
		rows, err := f.GetRows("업무 목록")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0][1]).To(Equal("제목"))
		Expect(rows[1][1]).To(Equal("배포 자동화"))
		Expect(rows[1][5]).To(Equal("김철수"))
		Expect(rows[2][5]).To(Equal("lee"))
	})

	It("names the file by date", func() {
		Expect(task.ExportFilename(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))).To(Equal("tasks_20240307.xlsx"))
	})
})
