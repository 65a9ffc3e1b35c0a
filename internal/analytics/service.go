package analytics

import (
	"context"
	"log/slog"
	"strings"
)

type Config struct {
	// ForbiddenMarkers overrides DefaultForbiddenMarkers when non-nil.
	ForbiddenMarkers []string
}

// Service runs the generate, validate, execute, format pipeline. Calls are
// independent and hold no shared mutable state.
type Service struct {
	generator QueryGenerator
	executor  QueryExecutor
	formatter ResultFormatter
	validator *Validator
	logger    *slog.Logger
}

func NewService(cfg Config, generator QueryGenerator, executor QueryExecutor, formatter ResultFormatter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator: generator,
		executor:  executor,
		formatter: formatter,
		validator: NewValidator(cfg.ForbiddenMarkers),
		logger:    logger,
	}
}

func (s *Service) Analyze(ctx context.Context, question string) (*AnalysisResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrQuestionRequired
	}

	query, err := s.generator.GenerateQuery(ctx, question)
	if err != nil {
		s.logger.Error("analyze: query generation failed", "error", err)
		return nil, err
	}

	if err := s.validator.Validate(query); err != nil {
		s.logger.Warn("analyze: generated query rejected", "error", err, "query", query)
		return nil, err
	}

	res, err := s.executor.Execute(ctx, query)
	if err != nil {
		s.logger.Error("analyze: query execution failed", "error", err, "query", query)
		return nil, err
	}
	value := res.Value()

	formatted, err := s.formatter.FormatResult(ctx, question, query, value)
	if err != nil {
		s.logger.Error("analyze: result formatting failed", "error", err)
		return nil, err
	}

	s.logger.Info("analyze: completed", "rows", len(res.Rows), "columns", len(res.Columns))

	return &AnalysisResult{
		Question:        question,
		SQLQuery:        query,
		Result:          value,
		FormattedResult: formatted,
	}, nil
}

var (
	_ QueryGenerator  = (*LLMQueryGenerator)(nil)
	_ ResultFormatter = (*LLMResultFormatter)(nil)
)
