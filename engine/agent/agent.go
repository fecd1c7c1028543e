// Package agent implements the classification reasoning loop. The model is
// prompted with the paper and the transcript so far, and each turn either
// names a tool to run or emits a Final Answer. The loop is bounded by a fixed
// step budget so a request can never run away.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

// LLM is implemented by the language-model client.
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configures the reasoning loop.
type Options struct {
	// MaxSteps bounds the number of reasoning iterations per classification.
	MaxSteps int
}

// DefaultOptions returns the standard loop configuration.
func DefaultOptions() Options {
	return Options{MaxSteps: 10}
}

// Agent runs the classification loop over one LLM and two tools.
type Agent struct {
	llm       LLM
	retriever Retriever
	searcher  Searcher
	opts      Options
	logger    *slog.Logger
}

// New creates an Agent. All dependencies are required; logger may be nil.
func New(llm LLM, retriever Retriever, searcher Searcher, opts Options, logger *slog.Logger) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{llm: llm, retriever: retriever, searcher: searcher, opts: opts, logger: logger}
}

// Classify runs the reasoning loop until the model emits a Final Answer or
// the step budget is exhausted. The final answer text is handed to the
// validator; a validation failure fails the request as-is, with no fallback
// category substituted.
func (a *Agent) Classify(ctx context.Context, q domain.Query) (domain.Result, error) {
	if err := domain.ValidateQuery(q); err != nil {
		return domain.Result{}, err
	}

	transcript := NewTranscript(q)

	for step := 1; step <= a.opts.MaxSteps; step++ {
		output, err := a.llm.Generate(ctx, systemPrompt, buildUserPrompt(transcript))
		if err != nil {
			return domain.Result{}, fmt.Errorf("agent: llm step %d: %w", step, err)
		}

		turn, err := parseModelOutput(output)
		if err != nil {
			return domain.Result{}, err
		}

		if turn.final {
			if !transcript.Used(string(ToolRetrieval)) || !transcript.Used(string(ToolWebSearch)) {
				a.logger.Warn("model answered without consulting both tools", "steps", step)
			}
			a.logger.Info("agent finished", "steps", step)
			return domain.ParseResult(turn.rawAnswer)
		}

		kind, ok := parseToolKind(turn.action)
		if !ok {
			return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownTool, turn.action)
		}

		observation := a.invokeTool(ctx, kind, turn.actionInput)
		transcript.Append(Step{
			Thought:     turn.thought,
			Action:      string(kind),
			ActionInput: turn.actionInput,
			Observation: observation,
		})
		a.logger.Debug("agent step", "step", step, "tool", kind)
	}

	return domain.Result{}, domain.ErrAgentExhausted
}
