package analytics_test

import (
	"github.com/frahmantamala/task-management/internal/analytics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validator", func() {
	v := analytics.NewValidator(nil)

	DescribeTable("accepts SELECT text free of markers",
		func(q string) {
			Expect(v.Validate(q)).To(Succeed())
		},
		Entry("uppercase", "SELECT 1"),
		Entry("lowercase with padding", "  select count(*) from tasks_task t  "),
		Entry("korean literal without markers", "SELECT COUNT(*) FROM organizations_department d WHERE d.name LIKE '%백엔드%'"),
	)

	DescribeTable("rejects",
		func(q string) {
			Expect(v.Validate(q)).To(MatchError(analytics.ErrInvalidQuery))
		},
		Entry("WITH prefix", "WITH x AS (SELECT 1) SELECT * FROM x"),
		Entry("prose", "I cannot answer that"),
		Entry("marker 이", "SELECT '이'"),
		Entry("marker 를", "SELECT '를'"),
	)
})
