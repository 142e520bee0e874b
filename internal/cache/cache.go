// Package cache implements the process-lifetime merchant cache: a mapping
// from normalized merchant to a learned (category, confidence) pair,
// consulted before any LLM call. Entries are written only by successful LLM
// results and user corrections, never evicted, and optionally persisted to
// SQLite so learned merchants survive restarts.
package cache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/Shirly8/sift/internal/model"
)

// LLMConfidenceCap bounds stored confidence for LLM-sourced entries. LLM
// confidences are uncalibrated; whatever the provider claims, the cache
// stores at most this value.
const LLMConfidenceCap = 0.75

// UserVerifiedConfidence is assigned to human corrections. It passes every
// downstream trust gate and is never overwritten by rule or LLM results.
const UserVerifiedConfidence = 0.99

// Entry is one learned merchant categorization.
type Entry struct {
	LastSeen     time.Time
	Category     string
	Confidence   float64
	UserVerified bool
}

const schema = `
CREATE TABLE IF NOT EXISTS merchant_cache (
	merchant      TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	user_verified INTEGER NOT NULL DEFAULT 0,
	last_seen     TIMESTAMP NOT NULL
);`

// Cache is safe for concurrent use: reads take a shared lock, writes are
// serialized. Write volume is low (one write per newly learned merchant).
type Cache struct {
	entries map[string]Entry
	db      *sql.DB
	mu      sync.RWMutex
}

// NewMemory creates a cache with no persistence.
func NewMemory() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Open creates a cache backed by a SQLite file, loading any previously
// learned merchants.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open merchant cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create merchant cache schema: %w", err)
	}

	c := &Cache{entries: make(map[string]Entry), db: db}
	if err := c.loadAll(); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("Opened merchant cache", "path", path, "entries", len(c.entries))
	return c, nil
}

func (c *Cache) loadAll() error {
	rows, err := c.db.Query(`SELECT merchant, category, confidence, user_verified, last_seen FROM merchant_cache`)
	if err != nil {
		return fmt.Errorf("failed to load merchant cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var merchant string
		var e Entry
		if err := rows.Scan(&merchant, &e.Category, &e.Confidence, &e.UserVerified, &e.LastSeen); err != nil {
			return fmt.Errorf("failed to scan merchant cache row: %w", err)
		}
		c.entries[merchant] = e
	}
	return rows.Err()
}

// Close releases the backing database, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the learned entry for a normalized merchant.
func (c *Cache) Lookup(merchant string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[merchant]
	return e, ok
}

// Len returns the number of learned merchants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SaveLLMResult records a successful LLM categorization. Confidence is capped
// at LLMConfidenceCap, unknown categories are rejected, and user-verified
// entries are never overwritten.
func (c *Cache) SaveLLMResult(merchant, category string, confidence float64) {
	if merchant == "" || !model.ValidCategory(category) || category == model.CategoryUncategorized {
		return
	}
	if confidence > LLMConfidenceCap {
		confidence = LLMConfidenceCap
	}
	if confidence < 0 {
		confidence = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[merchant]; ok && existing.UserVerified {
		return
	}
	c.put(merchant, Entry{
		Category:   category,
		Confidence: confidence,
		LastSeen:   time.Now(),
	})
}

// SaveUserCorrection records a human correction at UserVerifiedConfidence.
// Corrections always override whatever the pipeline learned.
func (c *Cache) SaveUserCorrection(merchant, category string) error {
	if merchant == "" {
		return fmt.Errorf("empty merchant")
	}
	if !model.ValidCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.put(merchant, Entry{
		Category:     category,
		Confidence:   UserVerifiedConfidence,
		UserVerified: true,
		LastSeen:     time.Now(),
	})
	slog.Info("Learned user correction", "merchant", merchant, "category", category)
	return nil
}

// put stores the entry and persists it. Caller holds the write lock.
func (c *Cache) put(merchant string, e Entry) {
	c.entries[merchant] = e

	if c.db == nil {
		return
	}
	_, err := c.db.Exec(`
		INSERT INTO merchant_cache (merchant, category, confidence, user_verified, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(merchant) DO UPDATE SET
			category = excluded.category,
			confidence = excluded.confidence,
			user_verified = excluded.user_verified,
			last_seen = excluded.last_seen`,
		merchant, e.Category, e.Confidence, e.UserVerified, e.LastSeen)
	if err != nil {
		slog.Warn("Failed to persist merchant cache entry", "merchant", merchant, "error", err)
	}
}
