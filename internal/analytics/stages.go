package analytics

import (
	"context"
	"encoding/json"
	"fmt"
)

// LLMQueryGenerator produces SQL text from a question with one model call.
type LLMQueryGenerator struct {
	completer Completer
}

func NewQueryGenerator(c Completer) *LLMQueryGenerator {
	return &LLMQueryGenerator{completer: c}
}

func (g *LLMQueryGenerator) GenerateQuery(ctx context.Context, question string) (string, error) {
	text, err := g.completer.Complete(ctx, QueryGenerationPrompt, queryGenerationMessage(question))
	if err != nil {
		return "", fmt.Errorf("generate query: %w", err)
	}
	return text, nil
}

// LLMResultFormatter renders an executed result as a sentence with one model call.
type LLMResultFormatter struct {
	completer Completer
}

func NewResultFormatter(c Completer) *LLMResultFormatter {
	return &LLMResultFormatter{completer: c}
}

func (f *LLMResultFormatter) FormatResult(ctx context.Context, question, query string, result any) (string, error) {
	rendered, err := renderResult(result)
	if err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}
	text, err := f.completer.Complete(ctx, ResultFormattingPrompt, resultFormattingMessage(question, query, rendered))
	if err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}
	return text, nil
}

func renderResult(result any) (string, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
