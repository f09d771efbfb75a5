// ABOUTME: Scribe turns conversations and summary batches into summary text
// ABOUTME: Owns the fixed LLM instructions used by the summary ladder
package core

import (
	"fmt"
	"strings"

	"github.com/harper/engram/internal/models"
)

const (
	baseSummaryInstruction = `You are a conversation summarizer. Summarize the conversation in 2-3 sentences. Capture what was discussed, any decisions made, and anything the user asked to be remembered. Write in the past tense. Return only the summary.`

	recursiveSummaryInstruction = `You are a conversation summarizer. You will receive several summaries of past conversations. Consolidate them into a single 3-4 sentence summary that preserves the most important facts, decisions, and ongoing threads. Return only the consolidated summary.`

	summaryTemperature = 0.3
)

// Scribe generates summary text via the configured LLM
type Scribe struct {
	llm LLM
}

// NewScribe creates a Scribe. A nil llm makes every call fail with LLMError.
func NewScribe(llm LLM) *Scribe {
	return &Scribe{llm: llm}
}

// SummarizeMessages produces a 2-3 sentence summary of a finished session
func (s *Scribe) SummarizeMessages(messages []models.Message) (string, error) {
	if s.llm == nil {
		return "", &LLMError{Err: fmt.Errorf("no llm configured")}
	}

	transcript := BuildTranscript(messages)
	summary, err := s.llm.Complete(baseSummaryInstruction, transcript, summaryTemperature)
	if err != nil {
		return "", &LLMError{Err: err}
	}
	return strings.TrimSpace(summary), nil
}

// ConsolidateSummaries produces a 3-4 sentence consolidation of lower-level
// summaries, in input order.
func (s *Scribe) ConsolidateSummaries(summaries []models.Summary) (string, error) {
	if s.llm == nil {
		return "", &LLMError{Err: fmt.Errorf("no llm configured")}
	}

	var sb strings.Builder
	for i, summary := range summaries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("Summary %d: %s", i+1, summary.Summary))
	}

	consolidated, err := s.llm.Complete(recursiveSummaryInstruction, sb.String(), summaryTemperature)
	if err != nil {
		return "", &LLMError{Err: err}
	}
	return strings.TrimSpace(consolidated), nil
}

// BuildTranscript renders messages as "role: content" blocks separated by
// blank lines. Tool results render as the literal "[tool result]".
func BuildTranscript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if msg.ToolResult {
			content = "[tool result]"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, content))
	}
	return strings.Join(lines, "\n\n")
}
