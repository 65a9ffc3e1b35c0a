package task_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/task"
	taskPostgres "github.com/frahmantamala/task-management/internal/task/postgres"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Task Service", func() {
	var (
		db       *gorm.DB
		repo     task.RepositoryAPI
		service  *task.Service
		ctx      context.Context
		backend  departmentDatamodel.Department
		kim      *internal.Principal
		lee      *internal.Principal
		manager  *internal.Principal
		tomorrow time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&departmentDatamodel.Department{}, &userDatamodel.User{},
			&taskDatamodel.Task{}, &taskDatamodel.Comment{}, &taskDatamodel.History{}, &taskDatamodel.TimeLog{},
		)).To(Succeed())

		backend = departmentDatamodel.Department{Name: "백엔드팀", Code: "BE"}
		Expect(db.Create(&backend).Error).To(Succeed())
		users := []userDatamodel.User{
			{Username: "kim", PasswordHash: "x", FirstName: "철수", LastName: "김", Role: internal.RoleEmployee, DepartmentID: &backend.ID, IsActive: true},
			{Username: "lee", PasswordHash: "x", FirstName: "영희", LastName: "이", Role: internal.RoleEmployee, DepartmentID: &backend.ID, IsActive: true},
			{Username: "boss", PasswordHash: "x", Role: internal.RoleManager, IsActive: true},
		}
		Expect(db.Create(&users).Error).To(Succeed())
		kim = &internal.Principal{ID: users[0].ID, Username: "kim", Role: internal.RoleEmployee, DepartmentID: &backend.ID}
		lee = &internal.Principal{ID: users[1].ID, Username: "lee", Role: internal.RoleEmployee, DepartmentID: &backend.ID}
		manager = &internal.Principal{ID: users[2].ID, Username: "boss", Role: internal.RoleManager}

		repo = taskPostgres.NewTaskRepository(db)
		bus := events.NewEventBus(quietLogger())
		task.NewHistoryRecorder(repo, quietLogger()).RegisterEventHandlers(bus)
		service = task.NewService(repo, bus, quietLogger())
		ctx = context.Background()
		tomorrow = time.Now().UTC().Add(24 * time.Hour)
	})

	create := func(title string, caller *internal.Principal) *task.Task {
		t, err := service.Create(ctx, &task.CreateTaskDTO{Title: title, AssigneeID: &caller.ID}, caller)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	Describe("Create", func() {
		It("fills defaults from the caller and records the initial status", func() {
			t := create("로그인 API", kim)

			Expect(t.Status).To(Equal(task.StatusTodo))
			Expect(t.Priority).To(Equal(task.PriorityMedium))
			Expect(*t.ReporterID).To(Equal(kim.ID))
			Expect(*t.DepartmentID).To(Equal(backend.ID))
			Expect(t.DepartmentName).To(Equal("백엔드팀"))
			Expect(t.AssigneeFullName).To(Equal("김철수"))
			Expect(t.ReporterName).To(Equal("kim"))

			history, err := service.ListHistory(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].PreviousStatus).To(BeEmpty())
			Expect(history[0].NewStatus).To(Equal(task.StatusTodo))
			Expect(history[0].ChangedByName).To(Equal("kim"))
		})

		It("rejects a due date before the start date", func() {
			start := tomorrow
			due := tomorrow.Add(-48 * time.Hour)
			_, err := service.Create(ctx, &task.CreateTaskDTO{Title: "역순", StartDate: &start, DueDate: &due}, kim)

			Expect(err).To(MatchError("due_date must not be before start_date"))
		})

		It("rejects an unknown status", func() {
			_, err := service.Create(ctx, &task.CreateTaskDTO{Title: "x", Status: "ARCHIVED"}, kim)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("must be one of"))
		})
	})

	Describe("Update", func() {
		It("records status transitions and manages completed_at", func() {
			t := create("리팩터링", kim)

			done, err := service.Update(ctx, t.ID, &task.UpdateTaskDTO{Status: ptr(task.StatusDone), StatusComment: "배포 완료"}, kim)
			Expect(err).NotTo(HaveOccurred())
			Expect(done.CompletedAt).NotTo(BeNil())

			reopened, err := service.Update(ctx, t.ID, &task.UpdateTaskDTO{Status: ptr(task.StatusInProgress)}, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(reopened.CompletedAt).To(BeNil())

			history, err := service.ListHistory(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(3))
			Expect(history[1].PreviousStatus).To(Equal(task.StatusTodo))
			Expect(history[1].NewStatus).To(Equal(task.StatusDone))
			Expect(history[1].Comment).To(Equal("배포 완료"))
			Expect(history[0].ChangedByName).To(Equal("boss"))
		})

		It("leaves untouched fields alone and skips history without a status change", func() {
			t := create("문서 작성", kim)

			updated, err := service.Update(ctx, t.ID, &task.UpdateTaskDTO{Title: ptr("문서 정리")}, kim)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("문서 정리"))
			Expect(*updated.AssigneeID).To(Equal(kim.ID))

			history, err := service.ListHistory(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
		})

		It("returns not found for a missing task", func() {
			_, err := service.Update(ctx, 999, &task.UpdateTaskDTO{Title: ptr("x")}, kim)
			Expect(err).To(Equal(internal.ErrTaskNotFound))
		})
	})

	It("marks overdue open tasks as delayed", func() {
		past := time.Now().UTC().Add(-48 * time.Hour)
		t, err := service.Create(ctx, &task.CreateTaskDTO{Title: "늦음", DueDate: &past}, kim)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.IsDelayed).To(BeTrue())

		create("여유", kim)
		tasks, err := service.List(ctx, task.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(tasks).To(HaveLen(2))
	})

	Describe("List", func() {
		It("filters by status, assignee and search", func() {
			create("결제 모듈", kim)
			create("검색 개선", lee)
			t := create("결제 로그", lee)
			_, err := service.Update(ctx, t.ID, &task.UpdateTaskDTO{Status: ptr(task.StatusReview)}, lee)
			Expect(err).NotTo(HaveOccurred())

			tasks, err := service.List(ctx, task.ListFilter{Search: "결제"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(2))

			tasks, err = service.List(ctx, task.ListFilter{Search: "결제", AssigneeID: &lee.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))

			tasks, err = service.List(ctx, task.ListFilter{Status: task.StatusReview})
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].Title).To(Equal("결제 로그"))
		})
	})

	Describe("Delete", func() {
		It("allows the reporter", func() {
			t := create("삭제 대상", kim)
			_, err := service.AddComment(ctx, t.ID, &task.CreateCommentDTO{Content: "메모"}, lee)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, t.ID, kim)).To(Succeed())
			_, err = service.GetByID(ctx, t.ID)
			Expect(err).To(Equal(internal.ErrTaskNotFound))

			var remaining int64
			Expect(db.Model(&taskDatamodel.Comment{}).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
		})

		It("allows a manager", func() {
			t := create("삭제 대상", kim)
			Expect(service.Delete(ctx, t.ID, manager)).To(Succeed())
		})

		It("forbids other employees", func() {
			t := create("삭제 대상", kim)
			Expect(service.Delete(ctx, t.ID, lee)).To(Equal(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("Comments", func() {
		It("adds and lists comments with author names", func() {
			t := create("리뷰", kim)
			_, err := service.AddComment(ctx, t.ID, &task.CreateCommentDTO{Content: "확인했습니다"}, lee)
			Expect(err).NotTo(HaveOccurred())

			comments, err := service.ListComments(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].AuthorName).To(Equal("lee"))

			full, err := service.GetByID(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(full.Comments).To(HaveLen(1))
		})

		It("rejects empty content", func() {
			t := create("리뷰", kim)
			_, err := service.AddComment(ctx, t.ID, &task.CreateCommentDTO{}, lee)
			Expect(err).To(MatchError(ContainSubstring("content is required")))
		})
	})

	Describe("Time logs", func() {
		It("stores a log with its rendered duration", func() {
			t := create("작업", kim)
			start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
			end := start.Add(2*time.Hour + 30*time.Minute)

			l, err := service.AddTimeLog(ctx, t.ID, &task.CreateTimeLogDTO{StartTime: start, EndTime: &end}, kim)
			Expect(err).NotTo(HaveOccurred())
			Expect(*l.Duration).To(Equal("02:30:00"))

			logs, err := service.ListTimeLogs(ctx, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].LoggedByName).To(Equal("kim"))
			Expect(*logs[0].Duration).To(Equal("02:30:00"))
		})

		It("leaves duration empty for an open log", func() {
			t := create("작업", kim)
			l, err := service.AddTimeLog(ctx, t.ID, &task.CreateTimeLogDTO{StartTime: time.Now().UTC()}, kim)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Duration).To(BeNil())
		})

		It("rejects an end before the start", func() {
			t := create("작업", kim)
			start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
			end := start.Add(-time.Minute)

			_, err := service.AddTimeLog(ctx, t.ID, &task.CreateTimeLogDTO{StartTime: start, EndTime: &end}, kim)
			Expect(err).To(MatchError(ContainSubstring("end_time must be after start_time")))
		})
	})

	Describe("Calendar", func() {
		It("returns tasks overlapping the range", func() {
			in := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
			spanStart := time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC)
			spanEnd := time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)
			out := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
			for _, dto := range []*task.CreateTaskDTO{
				{Title: "2월 마감", DueDate: &in},
				{Title: "걸친 일정", StartDate: &spanStart, DueDate: &spanEnd},
				{Title: "4월", StartDate: &out},
				{Title: "날짜 없음"},
			} {
				_, err := service.Create(ctx, dto, kim)
				Expect(err).NotTo(HaveOccurred())
			}

			rng := task.CalendarRange{
				Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			}
			items, err := service.Calendar(ctx, rng, task.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			titles := []string{}
			for _, item := range items {
				titles = append(titles, item.Title)
				Expect(item.Color).To(Equal("#9e9e9e"))
			}
			Expect(titles).To(ConsistOf("2월 마감", "걸친 일정"))

			feed, err := service.CalendarICS(ctx, rng, task.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(feed, "BEGIN:VEVENT")).To(Equal(2))
		})

		It("rejects an empty range", func() {
			at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
			_, err := service.Calendar(ctx, task.CalendarRange{Start: at, End: at}, task.ListFilter{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Handler", func() {
		var router *chi.Mux

		BeforeEach(func() {
			h := task.NewHandler(transport.NewBaseHandler(quietLogger()), service)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithPrincipal(r.Context(), kim)))
				})
			})
			router.Get("/tasks", h.ListTasks)
			router.Post("/tasks", h.CreateTask)
			router.Get("/tasks/calendar", h.Calendar)
			router.Get("/tasks/calendar.ics", h.CalendarICS)
			router.Get("/tasks/export", h.Export)
			router.Get("/tasks/{id}", h.GetTask)
			router.Patch("/tasks/{id}", h.UpdateTask)
			router.Delete("/tasks/{id}", h.DeleteTask)
			router.Get("/tasks/{id}/comments", h.ListComments)
			router.Post("/tasks/{id}/comments", h.AddComment)
			router.Get("/tasks/{id}/history", h.ListHistory)
			router.Get("/tasks/{id}/time-logs", h.ListTimeLogs)
			router.Post("/tasks/{id}/time-logs", h.AddTimeLog)
		})

		do := func(method, path, body string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
			return w
		}

		It("creates a task and serializes it with display names", func() {
			w := do(http.MethodPost, "/tasks", `{"title":"온보딩","priority":"HIGH","estimated_hours":"4.5"}`)
			Expect(w.Code).To(Equal(http.StatusCreated))

			var body map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("priority", "HIGH"))
			Expect(body).To(HaveKeyWithValue("reporter_name", "kim"))
			Expect(body).To(HaveKeyWithValue("department_name", "백엔드팀"))
			Expect(body).To(HaveKeyWithValue("is_delayed", false))
			Expect(body).To(HaveKey("comments"))
		})

		It("returns 400 for a missing title", func() {
			w := do(http.MethodPost, "/tasks", `{"description":"제목 없음"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("title is required"))
		})

		It("handles status updates and history", func() {
			t := create("배포", kim)
			path := "/tasks/" + jsonID(t.ID)

			w := do(http.MethodPatch, path, `{"status":"IN_PROGRESS"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"status":"IN_PROGRESS"`))

			w = do(http.MethodGet, path+"/history", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"changed_by_name":"kim"`))
		})

		It("adds comments and time logs", func() {
			t := create("배포", kim)
			path := "/tasks/" + jsonID(t.ID)

			w := do(http.MethodPost, path+"/comments", `{"content":"진행 중"}`)
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).To(ContainSubstring(`"author_name":"kim"`))

			w = do(http.MethodPost, path+"/time-logs", `{"start_time":"2024-03-04T09:00:00Z","end_time":"2024-03-04T10:15:00Z"}`)
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).To(ContainSubstring(`"duration":"01:15:00"`))

			w = do(http.MethodGet, path+"/time-logs", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"logged_by_name":"kim"`))
		})

		It("returns 404 and 400 for bad ids", func() {
			Expect(do(http.MethodGet, "/tasks/999", "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodGet, "/tasks/abc", "").Code).To(Equal(http.StatusBadRequest))
		})

		It("forbids deleting someone else's task", func() {
			t, err := service.Create(ctx, &task.CreateTaskDTO{Title: "남의 일"}, lee)
			Expect(err).NotTo(HaveOccurred())

			w := do(http.MethodDelete, "/tasks/"+jsonID(t.ID), "")
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("serves the calendar as JSON and iCalendar", func() {
			due := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
			_, err := service.Create(ctx, &task.CreateTaskDTO{Title: "릴리스", DueDate: &due, IsMilestone: true}, kim)
			Expect(err).NotTo(HaveOccurred())

			w := do(http.MethodGet, "/tasks/calendar?start=2024-02-01&end=2024-02-29", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"textColor":"#ffffff"`))
			Expect(w.Body.String()).To(ContainSubstring(`"is_milestone":true`))

			w = do(http.MethodGet, "/tasks/calendar.ics?start=2024-02-01&end=2024-02-29", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/calendar"))
			Expect(w.Body.String()).To(ContainSubstring("BEGIN:VCALENDAR"))

			w = do(http.MethodGet, "/tasks/calendar?start=soon", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("exports the task list as xlsx", func() {
			create("내보내기", kim)

			w := do(http.MethodGet, "/tasks/export", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("tasks_"))
			Expect(w.Body.Len()).To(BeNumerically(">", 0))
		})
	})
})

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
