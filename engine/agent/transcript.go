package agent

import (
	"strings"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

// Step is one completed reasoning iteration: the model's thought, the tool it
// chose, the input it supplied, and the observation the tool produced.
type Step struct {
	Thought     string
	Action      string
	ActionInput string
	Observation string
}

// Transcript holds the evolving state of one classification call. It exists
// only for the duration of that call.
type Transcript struct {
	Query domain.Query
	Steps []Step
}

// NewTranscript starts a transcript for the given paper.
func NewTranscript(q domain.Query) *Transcript {
	return &Transcript{Query: q}
}

// Append records a completed step.
func (t *Transcript) Append(s Step) {
	t.Steps = append(t.Steps, s)
}

// Used reports whether the named action appears in the transcript.
func (t *Transcript) Used(action string) bool {
	for _, s := range t.Steps {
		if strings.EqualFold(s.Action, action) {
			return true
		}
	}
	return false
}

// Render lays the transcript out in the Thought/Action/Action Input/Observation
// grammar the prompt mandates, so the model sees its own prior steps verbatim.
func (t *Transcript) Render() string {
	if len(t.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range t.Steps {
		b.WriteString("Thought: ")
		b.WriteString(s.Thought)
		b.WriteString("\nAction: ")
		b.WriteString(s.Action)
		b.WriteString("\nAction Input: ")
		b.WriteString(s.ActionInput)
		b.WriteString("\nObservation: ")
		b.WriteString(s.Observation)
		b.WriteString("\n")
	}
	return b.String()
}
