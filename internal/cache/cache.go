package cache

import (
	"sort"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Cache is an in-process key/value store with per-key TTLs and scored
// unique lists. Resolved links and search results are remembered here so
// repeat requests skip the provider round trips.
type Cache struct {
	data     map[string]entry
	lists    map[string]map[string]scoredMember
	maxItems int
	mu       sync.RWMutex
}

type scoredMember struct {
	score     int
	expiresAt time.Time
}

type ScoredItem struct {
	Value string
	Score int
}

func New(maxItems int) *Cache {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &Cache{
		data:     make(map[string]entry, maxItems),
		lists:    make(map[string]map[string]scoredMember),
		maxItems: maxItems,
	}
}

func (c *Cache) Set(key, value string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.maxItems {
		c.evictExpiredLocked()
		if len(c.data) >= c.maxItems {
			return false
		}
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.data[key] = e
	return true
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, exists := c.data[key]
	c.mu.RUnlock()

	if !exists {
		return "", false
	}
	if e.expired() {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (c *Cache) Exists(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.data {
		if !e.expired() {
			n++
		}
	}
	return n
}

// UniqueListAdd adds a member to a scored list, keeping one entry per value.
// Returns true when the member was not already present.
func (c *Cache) UniqueListAdd(name, member string, score int, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, exists := c.lists[name]
	if !exists {
		list = make(map[string]scoredMember)
		c.lists[name] = list
	}
	_, present := list[member]
	m := scoredMember{score: score}
	if ttl > 0 {
		m.expiresAt = time.Now().Add(ttl)
	}
	list[member] = m
	return !present
}

// UniqueListGet returns list members with scores in [minScore, maxScore],
// highest score first, capped at limit. Expired members are dropped.
func (c *Cache) UniqueListGet(name string, minScore, maxScore, limit int) []ScoredItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, exists := c.lists[name]
	if !exists {
		return nil
	}

	now := time.Now()
	items := make([]ScoredItem, 0, len(list))
	for value, m := range list {
		if !m.expiresAt.IsZero() && now.After(m.expiresAt) {
			delete(list, value)
			continue
		}
		if m.score < minScore || m.score > maxScore {
			continue
		}
		items = append(items, ScoredItem{Value: value, Score: m.score})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Value < items[j].Value
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (c *Cache) evictExpiredLocked() {
	for k, e := range c.data {
		if e.expired() {
			delete(c.data, k)
		}
	}
}
