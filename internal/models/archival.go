// ABOUTME: Archival entry model for append-only long-term records
// ABOUTME: Generates archival_<ms>_<rand> identifiers
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchivalEntry is an append-only textual record with metadata
type ArchivalEntry struct {
	ID        string                 `json:"id"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata"`
	VectorID  string                 `json:"vector_id,omitempty"`
}

// NewArchivalID generates an id of the form archival_<ms>_<rand>
func NewArchivalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("archival_%d_%s", now.UnixMilli(), suffix)
}
