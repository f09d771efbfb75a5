// ABOUTME: Legacy key-value memory entry model
// ABOUTME: Maintained for backward compatibility and as the migration source
package models

import "time"

// KVEntry is one purpose -> text row in the legacy kv_memory table
type KVEntry struct {
	Purpose   string    `json:"purpose"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}
