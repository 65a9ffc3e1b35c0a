package analytics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/frahmantamala/task-management/internal/analytics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const backendCountQuery = `SELECT COUNT(*) FROM accounts_user u JOIN organizations_department d ON u.department_id = d.id WHERE d.name LIKE '%백엔드%' AND u.is_active = true;`

var _ = Describe("Service", func() {
	var (
		generator *fakeGenerator
		executor  *fakeExecutor
		formatter *fakeFormatter
		service   *analytics.Service
	)

	BeforeEach(func() {
		generator = &fakeGenerator{query: backendCountQuery}
		executor = &fakeExecutor{result: &analytics.QueryResult{
			Columns: []string{"count"},
			Rows:    [][]any{{int64(12)}},
		}}
		formatter = &fakeFormatter{text: "백엔드팀의 인원수는 12명입니다."}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = analytics.NewService(analytics.Config{}, generator, executor, formatter, logger)
	})

	Context("when the question is empty", func() {
		DescribeTable("fails before any outbound call",
			func(q string) {
				_, err := service.Analyze(context.Background(), q)

				Expect(err).To(MatchError(analytics.ErrQuestionRequired))
				Expect(generator.calls).To(BeZero())
				Expect(executor.calls).To(BeZero())
				Expect(formatter.calls).To(BeZero())
			},
			Entry("empty", ""),
			Entry("whitespace", "   \n\t"),
		)
	})

	Context("when the generated text is not a SELECT", func() {
		DescribeTable("rejects without touching the database",
			func(text string) {
				generator.query = text

				_, err := service.Analyze(context.Background(), "질문")

				var rejected *analytics.RejectedQueryError
				Expect(errors.As(err, &rejected)).To(BeTrue())
				Expect(err).To(MatchError(analytics.ErrInvalidQuery))
				Expect(executor.calls).To(BeZero())
				Expect(formatter.calls).To(BeZero())
			},
			Entry("apology in Korean", "죄송합니다, 이 질문에 답할 수 없습니다"),
			Entry("write statement", "DELETE FROM tasks_task"),
			Entry("empty generation", ""),
			Entry("fenced SQL", "```sql\nSELECT 1\n```"),
		)
	})

	Context("when the generated SELECT contains a forbidden marker", func() {
		It("rejects even though the prefix is valid", func() {
			generator.query = "SELECT * FROM tasks_task t WHERE t.title LIKE '%이슈%'"

			_, err := service.Analyze(context.Background(), "이슈 목록")

			Expect(err).To(MatchError(analytics.ErrInvalidQuery))
			Expect(executor.calls).To(BeZero())
		})

		It("honors a configured marker set", func() {
			service = analytics.NewService(analytics.Config{ForbiddenMarkers: []string{}}, generator, executor, formatter, nil)
			generator.query = "SELECT * FROM tasks_task t WHERE t.title LIKE '%이슈%'"

			_, err := service.Analyze(context.Background(), "이슈 목록")

			Expect(err).NotTo(HaveOccurred())
			Expect(executor.calls).To(Equal(1))
		})
	})

	Context("when the pipeline succeeds", func() {
		It("answers the backend headcount question", func() {
			res, err := service.Analyze(context.Background(), "백엔드팀 인원수 알려줘")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Question).To(Equal("백엔드팀 인원수 알려줘"))
			Expect(res.SQLQuery).To(Equal(backendCountQuery))
			Expect(res.Result).To(Equal(int64(12)))
			Expect(res.FormattedResult).To(ContainSubstring("12"))
			Expect(executor.queries).To(Equal([]string{backendCountQuery}))
			Expect(formatter.results).To(Equal([]any{int64(12)}))
		})

		It("is idempotent for fixed model and database responses", func() {
			first, err := service.Analyze(context.Background(), "백엔드팀 인원수 알려줘")
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Analyze(context.Background(), "백엔드팀 인원수 알려줘")
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("returns row objects for multi-column results", func() {
			executor.result = &analytics.QueryResult{
				Columns: []string{"name", "score"},
				Rows:    [][]any{{"김철수", 4.5}},
			}

			res, err := service.Analyze(context.Background(), "최고 성과자")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Result).To(Equal([]map[string]any{{"name": "김철수", "score": 4.5}}))
		})
	})

	Context("when a collaborator fails", func() {
		It("propagates database errors", func() {
			executor.err = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

			_, err := service.Analyze(context.Background(), "백엔드팀 인원수 알려줘")

			Expect(err).To(MatchError(ContainSubstring("connection refused")))
			Expect(formatter.calls).To(BeZero())
		})

		It("propagates generation errors", func() {
			generator.err = errors.New("rate limited")

			_, err := service.Analyze(context.Background(), "q")

			Expect(err).To(MatchError("rate limited"))
			Expect(executor.calls).To(BeZero())
		})

		It("propagates formatting errors", func() {
			formatter.err = errors.New("overloaded")

			_, err := service.Analyze(context.Background(), "q")

			Expect(err).To(MatchError("overloaded"))
		})
	})
})

var _ = Describe("LLM stages", func() {
	It("sends the generation prompt and question to the model", func() {
		c := &fakeCompleter{responses: []string{backendCountQuery}}
		g := analytics.NewQueryGenerator(c)

		q, err := g.GenerateQuery(context.Background(), "백엔드팀 인원수 알려줘")

		Expect(err).NotTo(HaveOccurred())
		Expect(q).To(Equal(backendCountQuery))
		Expect(c.systems).To(Equal([]string{analytics.QueryGenerationPrompt}))
		Expect(c.users).To(Equal([]string{"Generate a PostgreSQL query to answer: 백엔드팀 인원수 알려줘"}))
	})

	It("sends question, SQL and rendered result to the formatter prompt", func() {
		c := &fakeCompleter{responses: []string{"총 12명입니다."}}
		f := analytics.NewResultFormatter(c)

		text, err := f.FormatResult(context.Background(), "몇 명?", "SELECT 12", int64(12))

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("총 12명입니다."))
		Expect(c.systems).To(Equal([]string{analytics.ResultFormattingPrompt}))
		Expect(c.users).To(Equal([]string{"Question: 몇 명?\nSQL: SELECT 12\nResult: 12"}))
	})

	It("wraps completer failures", func() {
		c := &fakeCompleter{err: errors.New("timeout")}

		_, err := analytics.NewQueryGenerator(c).GenerateQuery(context.Background(), "q")

		Expect(err).To(MatchError(ContainSubstring("timeout")))
	})
})

var _ = Describe("QueryResult.Value", func() {
	It("collapses a single cell", func() {
		r := &analytics.QueryResult{Columns: []string{"count"}, Rows: [][]any{{int64(3)}}}
		Expect(r.Value()).To(Equal(int64(3)))
	})

	It("returns an empty list for no rows", func() {
		r := &analytics.QueryResult{Columns: []string{"count"}}
		Expect(r.Value()).To(BeEmpty())
	})

	It("returns nil for a nil result", func() {
		var r *analytics.QueryResult
		Expect(r.Value()).To(BeNil())
	})
})
