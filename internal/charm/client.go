// ABOUTME: Charm KV client for optional cloud backup of legacy memory
// ABOUTME: Pushes and pulls kv_memory entries keyed by purpose with SSH key auth
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harper/engram/internal/models"
)

// EntryPrefix namespaces legacy memory entries in the cloud KV
const EntryPrefix = "kv:"

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultConfig returns default configuration for the charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "cloud.charm.sh"
	}
	dbName := os.Getenv("CHARM_DB")
	if dbName == "" {
		dbName = "engram"
	}
	autoSync := true
	if v := os.Getenv("CHARM_AUTO_SYNC"); v != "" {
		autoSync = v == "true" || v == "1"
	}
	return &Config{
		Host:     host,
		DBName:   dbName,
		AutoSync: autoSync,
	}
}

// entryPayload is the JSON value stored per purpose in the cloud KV
type entryPayload struct {
	Text      string `json:"text"`
	UpdatedAt int64  `json:"updated_at"`
}

// Client wraps charm KV for legacy memory backup
type Client struct {
	kv     *kv.KV
	config *Config
}

// NewClient creates a charm client and pulls remote data when AutoSync is on
func NewClient(cfg *Config) (*Client, error) {
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{
		kv:     db,
		config: cfg,
	}

	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close closes the KV database
func (c *Client) Close() error {
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

// ID returns the charm user ID
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// PushEntries backs up legacy memory entries to the cloud KV
func (c *Client) PushEntries(entries []models.KVEntry) (int, error) {
	pushed := 0
	for _, entry := range entries {
		payload, err := json.Marshal(entryPayload{
			Text:      entry.Text,
			UpdatedAt: entry.UpdatedAt.UnixMilli(),
		})
		if err != nil {
			return pushed, fmt.Errorf("failed to marshal entry %s: %w", entry.Purpose, err)
		}
		if err := c.kv.Set([]byte(EntryPrefix+entry.Purpose), payload); err != nil {
			return pushed, fmt.Errorf("failed to push entry %s: %w", entry.Purpose, err)
		}
		pushed++
	}

	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
	return pushed, nil
}

// PullEntries retrieves every backed-up legacy memory entry
func (c *Client) PullEntries() ([]models.KVEntry, error) {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var entries []models.KVEntry
	for _, key := range keys {
		keyStr := string(key)
		if !strings.HasPrefix(keyStr, EntryPrefix) {
			continue
		}
		data, err := c.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to get key %s: %w", keyStr, err)
		}
		var payload entryPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			// Skip foreign values living under our prefix
			continue
		}
		entries = append(entries, models.KVEntry{
			Purpose:   strings.TrimPrefix(keyStr, EntryPrefix),
			Text:      payload.Text,
			UpdatedAt: time.UnixMilli(payload.UpdatedAt),
		})
	}

	return entries, nil
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	return c.kv.Sync()
}

// GetAuthorizedKeys returns the list of linked devices/keys
func (c *Client) GetAuthorizedKeys() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.AuthorizedKeys()
}
