// ABOUTME: ContextHydrator assembles the full system prompt fragment
// ABOUTME: Concatenates persona, legacy memory, core blocks, and summaries
package core

import (
	"log"
	"strings"
)

// toolInstructions is the fixed suffix naming the memory tool surface
const toolInstructions = `## Memory Tools

Use memory_get_block, memory_insert, memory_replace, memory_rethink,
memory_create_block, and memory_list_blocks to manage structured memory.
Use archival_insert and archival_search for long-term records, and
memory_search to find relevant blocks. Read before you write.`

// ContextHydrator builds the prompt fragment handed to the host's LLM loop
type ContextHydrator struct {
	kv     *KVMemory
	blocks *BlockManager
	ladder *SummaryLadder
}

// NewContextHydrator creates a ContextHydrator
func NewContextHydrator(kv *KVMemory, blocks *BlockManager, ladder *SummaryLadder) *ContextHydrator {
	return &ContextHydrator{kv: kv, blocks: blocks, ladder: ladder}
}

// AssemblePrompt concatenates, in order: the persona prompt, the legacy
// memory fragment, the core-block fragment, the summary fragment, and the
// tool instructions. A failed summary load degrades to an empty section
// with a warning; prompt assembly itself never fails.
func (ch *ContextHydrator) AssemblePrompt(personaPrompt string) string {
	sections := make([]string, 0, 5)

	if personaPrompt != "" {
		sections = append(sections, personaPrompt)
	}

	sections = append(sections, ch.kv.PromptFragment())

	if fragment := ch.blocks.CorePromptFragment(); fragment != "" {
		sections = append(sections, fragment)
	}

	loaded, err := ch.ladder.LoadForContext()
	if err != nil {
		log.Printf("Warning: failed to load summaries for prompt: %v", err)
	} else if fragment := ch.ladder.PromptFragment(loaded); fragment != "" {
		sections = append(sections, fragment)
	}

	sections = append(sections, toolInstructions)

	return strings.Join(sections, "\n\n")
}
