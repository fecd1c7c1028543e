package agent

import (
	"fmt"
	"regexp"
	"strings"
)

const systemPrompt = `You are a scientific paper classifier.

Your goal: classify the paper into one of these categories:
- Cardiovascular
- Neurological
- Hepatorenal
- Oncological

You have two tools:
- retrieval_vector_db: queries the vector database of indexed papers and returns the closest matches (title, abstract, group).
- tavily_web_search: searches the web and returns result snippets.

You MUST use both tools before giving a final answer.
Never provide a final answer without invoking a tool.
It works best to pass the paper's abstract as the input to retrieval_vector_db.

Always reason step by step in the following format:

Thought: describe what you are thinking
Action: the tool name to use
Action Input: the input for that tool
Observation: the result of the tool

Repeat Thought/Action/Observation as needed.

When you are confident, stop and return the final result in EXACT JSON format:

Final Answer:
{
    "category": "<one of the categories>",
    "confidence": <float between 0 and 1>,
    "rationale": "<short explanation>"
}

DO NOT add 'Thought:' or 'Action:' after the Final Answer.
DO NOT enclose the result in triple backticks or any code fence.`

// buildUserPrompt renders the paper plus the transcript so far.
func buildUserPrompt(t *Transcript) string {
	var b strings.Builder
	b.WriteString("Paper:\nTitle: ")
	b.WriteString(t.Query.Title)
	b.WriteString("\nAbstract: ")
	b.WriteString(t.Query.Abstract)
	b.WriteString("\n\n")
	if steps := t.Render(); steps != "" {
		b.WriteString(steps)
	}
	b.WriteString("Thought:")
	return b.String()
}

var (
	finalAnswerRegex = regexp.MustCompile(`(?is)final\s+answer\s*:\s*(.+)$`)
	actionRegex      = regexp.MustCompile(`(?i)^\s*action\s*:\s*(.+)$`)
	actionInputRegex = regexp.MustCompile(`(?i)^\s*action\s+input\s*:\s*(.+)$`)
	thoughtRegex     = regexp.MustCompile(`(?i)^\s*thought\s*:\s*(.+)$`)
	fenceRegex       = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

// parsed is the outcome of reading one model turn: either a final answer or a
// tool request.
type parsed struct {
	final       bool
	rawAnswer   string
	thought     string
	action      string
	actionInput string
}

// parseModelOutput reads one reasoning turn. Output containing the
// "Final Answer:" marker terminates the loop and hands the remainder to the
// validator. Otherwise the turn must name a tool and an input. Anything else
// is an error: the model broke the transcript grammar.
func parseModelOutput(raw string) (parsed, error) {
	if m := finalAnswerRegex.FindStringSubmatch(raw); m != nil {
		answer := strings.TrimSpace(m[1])
		// The prompt forbids fences, but strip them rather than failing the
		// request when the model ignores that instruction.
		if fm := fenceRegex.FindStringSubmatch(answer); fm != nil {
			answer = fm[1]
		}
		return parsed{final: true, rawAnswer: answer}, nil
	}

	var p parsed
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case p.actionInput == "" && actionInputRegex.MatchString(line):
			p.actionInput = strings.TrimSpace(actionInputRegex.FindStringSubmatch(line)[1])
		case p.action == "" && actionRegex.MatchString(line) && !actionInputRegex.MatchString(line):
			p.action = strings.TrimSpace(actionRegex.FindStringSubmatch(line)[1])
		case p.thought == "" && thoughtRegex.MatchString(line):
			p.thought = strings.TrimSpace(thoughtRegex.FindStringSubmatch(line)[1])
		}
	}

	if p.action == "" {
		return parsed{}, fmt.Errorf("agent: model output has neither a Final Answer nor an Action: %q", truncate(raw, 200))
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
