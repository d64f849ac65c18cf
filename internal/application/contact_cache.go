package application

import (
	"sync"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
)

// contactCache stores recently fetched contact lists to avoid hitting the
// backend on every keystroke of the search box. Entries are keyed by manager
// username.
type contactCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]contactCacheEntry
}

type contactCacheEntry struct {
	contacts  []agenda.Client
	expiresAt time.Time
}

func newContactCache(ttl time.Duration, maxEntries int, now func() time.Time) *contactCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &contactCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]contactCacheEntry),
	}
}

func (c *contactCache) Get(key string) ([]agenda.Client, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneContacts(entry.contacts), true
}

func (c *contactCache) Store(key string, contacts []agenda.Client) {
	if c == nil {
		return
	}
	cloned := cloneContacts(contacts)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = contactCacheEntry{contacts: cloned, expiresAt: expiry}
}

func (c *contactCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]contactCacheEntry)
	c.mu.Unlock()
}

func (c *contactCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *contactCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneContacts(contacts []agenda.Client) []agenda.Client {
	if len(contacts) == 0 {
		return nil
	}
	out := make([]agenda.Client, len(contacts))
	copy(out, contacts)
	return out
}
