// Package cache holds recent extraction responses for URL requests.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/use-agent/sianpdf/models"
)

type entry struct {
	key       string
	response  *models.ExtractResponse
	createdAt time.Time
}

// Cache is an in-memory cache of extraction responses with oldest-first
// eviction. It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	store      map[string]*list.Element
	order      *list.List // front is oldest
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache holding at most maxEntries responses, each dropped
// once older than ttl.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Key derives the cache key for a page URL and extraction mode.
func Key(url string, mode models.Mode) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(mode))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached response younger than maxAgeMs milliseconds.
// maxAgeMs <= 0 always misses.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ExtractResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.store[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	age := c.now().Sub(e.createdAt)
	if age > c.ttl {
		c.remove(el)
		return nil, false
	}
	if age > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}
	return e.response, true
}

// Set stores resp under key, evicting the oldest entry when full.
func (c *Cache) Set(key string, resp *models.ExtractResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.store[key]; ok {
		c.remove(el)
	}
	for c.order.Len() >= c.maxEntries {
		c.remove(c.order.Front())
	}
	c.store[key] = c.order.PushBack(&entry{key: key, response: resp, createdAt: c.now()})
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stop terminates the expiry loop. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// remove must be called with mu held.
func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.store, el.Value.(*entry).key)
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry).createdAt.Before(cutoff) {
			c.remove(el)
		} else {
			// Entries are in insertion order.
			break
		}
		el = next
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}
