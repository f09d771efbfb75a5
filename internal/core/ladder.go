// ABOUTME: Hierarchical summary ladder with promotion rules
// ABOUTME: Level 0 summarizes raw messages; level L+1 consolidates level L
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

// LadderConfig holds the summary ladder thresholds
type LadderConfig struct {
	// BaseThreshold is the minimum buffered messages before the host
	// should request a base summary. Advisory: the engine does not enforce it.
	BaseThreshold int
	// RecursiveThreshold is how many unconsolidated summaries at a level
	// trigger promotion to the next level.
	RecursiveThreshold int
	// MaxLevel is the highest level the ladder will produce.
	MaxLevel int
	// RecentCount is how many level-0 summaries load into the prompt.
	RecentCount int
}

// DefaultLadderConfig returns the standard thresholds
func DefaultLadderConfig() LadderConfig {
	return LadderConfig{
		BaseThreshold:      20,
		RecursiveThreshold: 10,
		MaxLevel:           3,
		RecentCount:        3,
	}
}

// Promotion describes a pending consolidation at one level
type Promotion struct {
	Level     int
	Summaries []models.Summary
}

// LoadedSummaries is the context slice of the ladder: the newest base
// summaries plus up to two of the highest-level recursive ones.
type LoadedSummaries struct {
	Recent    []models.Summary
	Recursive []models.Summary
}

// Empty reports whether nothing was loaded
func (l *LoadedSummaries) Empty() bool {
	return len(l.Recent) == 0 && len(l.Recursive) == 0
}

// SummaryLadder owns the summaries table and its promotion state machine
type SummaryLadder struct {
	store  *sqlite.SummaryStore
	scribe *Scribe
	config LadderConfig
}

// NewSummaryLadder creates a SummaryLadder
func NewSummaryLadder(store *sqlite.SummaryStore, scribe *Scribe, config LadderConfig) *SummaryLadder {
	return &SummaryLadder{
		store:  store,
		scribe: scribe,
		config: config,
	}
}

// Config returns the ladder thresholds
func (l *SummaryLadder) Config() LadderConfig {
	return l.config
}

// CreateBaseSummary summarizes a finished session's messages into a level-0
// row. An LLM failure inserts nothing.
func (l *SummaryLadder) CreateBaseSummary(messages []models.Message) (int64, error) {
	text, err := l.scribe.SummarizeMessages(messages)
	if err != nil {
		return 0, err
	}

	id, err := l.store.Insert(&models.Summary{
		Summary:      text,
		Level:        0,
		MessageCount: len(messages),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return 0, &StorageError{Op: "insert base summary", Err: err}
	}
	return id, nil
}

// CheckPromotionNeeded scans levels bottom-up for the first one holding at
// least RecursiveThreshold unconsolidated summaries. Nil means not needed.
func (l *SummaryLadder) CheckPromotionNeeded() (*Promotion, error) {
	for level := 0; level < l.config.MaxLevel; level++ {
		summaries, err := l.store.Unconsolidated(level, l.config.RecursiveThreshold+1)
		if err != nil {
			return nil, &StorageError{Op: "scan unconsolidated summaries", Err: err}
		}
		if len(summaries) >= l.config.RecursiveThreshold {
			return &Promotion{
				Level:     level + 1,
				Summaries: summaries[:l.config.RecursiveThreshold],
			}, nil
		}
	}
	return nil, nil
}

// CreateRecursiveSummary consolidates the given summaries into one row at
// targetLevel. The inputs are not marked consolidated here; use Promote for
// the full transition, or call MarkConsolidated after a successful insert.
func (l *SummaryLadder) CreateRecursiveSummary(summaries []models.Summary, targetLevel int) (int64, error) {
	if targetLevel < 1 || targetLevel > l.config.MaxLevel {
		return 0, &MemoryError{Op: "create recursive summary",
			Err: fmt.Errorf("target level %d out of range 1..%d", targetLevel, l.config.MaxLevel)}
	}

	text, err := l.scribe.ConsolidateSummaries(summaries)
	if err != nil {
		return 0, err
	}

	messageCount := 0
	for _, summary := range summaries {
		messageCount += summary.MessageCount
	}

	id, err := l.store.Insert(&models.Summary{
		Summary:      text,
		Level:        targetLevel,
		MessageCount: messageCount,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return 0, &StorageError{Op: "insert recursive summary", Err: err}
	}
	return id, nil
}

// MarkConsolidated freezes the given summaries under their new parent
func (l *SummaryLadder) MarkConsolidated(ids []int64, parentID int64) error {
	if err := l.store.MarkConsolidated(ids, parentID); err != nil {
		return &StorageError{Op: "mark consolidated", Err: err}
	}
	return nil
}

// Promote runs one promotion cycle: check, consolidate, mark. Returns
// whether a promotion happened. A failed LLM call leaves the inputs
// unconsolidated, so the cycle is safely retryable.
func (l *SummaryLadder) Promote() (bool, error) {
	promotion, err := l.CheckPromotionNeeded()
	if err != nil {
		return false, err
	}
	if promotion == nil {
		return false, nil
	}

	parentID, err := l.CreateRecursiveSummary(promotion.Summaries, promotion.Level)
	if err != nil {
		return false, err
	}

	ids := make([]int64, len(promotion.Summaries))
	for i, summary := range promotion.Summaries {
		ids[i] = summary.ID
	}
	if err := l.MarkConsolidated(ids, parentID); err != nil {
		return false, err
	}

	return true, nil
}

// PromoteAll repeats promotion cycles until no level is over threshold
func (l *SummaryLadder) PromoteAll() (int, error) {
	promoted := 0
	for {
		did, err := l.Promote()
		if err != nil {
			return promoted, err
		}
		if !did {
			return promoted, nil
		}
		promoted++
	}
}

// LoadForContext loads the newest RecentCount base summaries plus up to two
// recursive summaries. The recursive limit applies across levels, so a
// level-2 summary can crowd out level-1 context; that asymmetry is part of
// the loading contract.
func (l *SummaryLadder) LoadForContext() (*LoadedSummaries, error) {
	recent, err := l.store.RecentBase(l.config.RecentCount)
	if err != nil {
		return nil, &StorageError{Op: "load recent summaries", Err: err}
	}

	recursive, err := l.store.TopRecursive(2)
	if err != nil {
		return nil, &StorageError{Op: "load recursive summaries", Err: err}
	}

	return &LoadedSummaries{Recent: recent, Recursive: recursive}, nil
}

// PromptFragment renders loaded summaries, or the empty string when both
// sets are empty.
func (l *SummaryLadder) PromptFragment(loaded *LoadedSummaries) string {
	if loaded == nil || loaded.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Conversation History\n\n")

	if len(loaded.Recursive) > 0 {
		sb.WriteString("### Long-term Context\n\n")
		for _, summary := range loaded.Recursive {
			sb.WriteString(fmt.Sprintf("- [Level %d, %d messages, %s] %s\n",
				summary.Level, summary.MessageCount,
				summary.CreatedAt.Format("Jan 2, 2006"), summary.Summary))
		}
		sb.WriteString("\n")
	}

	if len(loaded.Recent) > 0 {
		sb.WriteString("### Recent Conversations\n\n")
		for _, summary := range loaded.Recent {
			sb.WriteString(fmt.Sprintf("- [%d messages, %s] %s\n",
				summary.MessageCount,
				summary.CreatedAt.Format("Jan 2, 2006"), summary.Summary))
		}
	}

	return sb.String()
}
