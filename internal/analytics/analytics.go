package analytics

import (
	"context"
	"errors"
	"fmt"
)

// PlaceholderQuery is reported in place of a generation that failed validation.
const PlaceholderQuery = "SELECT NULL AS error;"

var (
	ErrQuestionRequired = errors.New("질문을 입력해주세요.")
	ErrInvalidQuery     = errors.New("유효한 쿼리를 생성할 수 없습니다.")
)

// RejectedQueryError is returned when a generated query fails validation. The
// rejected text is kept for logging only and never executed.
type RejectedQueryError struct {
	Reason string
	Query  string
}

func (e *RejectedQueryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidQuery.Error(), e.Reason)
}

func (e *RejectedQueryError) Unwrap() error {
	return ErrInvalidQuery
}

type AnalysisRequest struct {
	Question string `json:"question"`
}

type AnalysisResult struct {
	Question        string `json:"question"`
	SQLQuery        string `json:"sql_query"`
	Result          any    `json:"result"`
	FormattedResult string `json:"formatted_result"`
}

// QueryResult holds normalized rows from an executed query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Value collapses a single cell to its scalar; anything else becomes a list
// of row objects keyed by column name.
func (r *QueryResult) Value() any {
	if r == nil {
		return nil
	}
	if len(r.Columns) == 1 && len(r.Rows) == 1 {
		return r.Rows[0][0]
	}
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// Completer sends one system prompt and one user message to a hosted model
// and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type QueryGenerator interface {
	GenerateQuery(ctx context.Context, question string) (string, error)
}

type ResultFormatter interface {
	FormatResult(ctx context.Context, question, query string, result any) (string, error)
}

type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*QueryResult, error)
}
