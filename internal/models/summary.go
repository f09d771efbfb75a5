// ABOUTME: Summary models for the hierarchical conversation ladder
// ABOUTME: Defines Summary rows and the Message transcript input
package models

import "time"

// Summary is one row of the summaries table. Level 0 summarizes raw
// messages; level L+1 consolidates level-L summaries. A non-nil
// ParentSummaryID means the row has been consolidated and is frozen.
type Summary struct {
	ID              int64     `json:"id"`
	Summary         string    `json:"summary"`
	Level           int       `json:"level"`
	MessageCount    int       `json:"message_count"`
	ParentSummaryID *int64    `json:"parent_summary_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Consolidated reports whether the row has been folded into a higher level
func (s *Summary) Consolidated() bool {
	return s.ParentSummaryID != nil
}

// Message is one conversation message handed to the summarizer
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolResult bool   `json:"tool_result,omitempty"`
}
