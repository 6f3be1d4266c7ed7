package client

import (
	"context"
	"sync"
)

// Tag labels a cached entry. An empty ID is the collection-level tag; an
// entity tag carries the id of the single row it covers.
type Tag struct {
	Type string
	ID   string
}

// matches reports whether an invalidated tag hits a provided tag. A bare
// type invalidation hits every entry of that type; an id invalidation hits
// the matching entity tag and any bare collection tag of the type.
func (provided Tag) matches(invalidated Tag) bool {
	if provided.Type != invalidated.Type {
		return false
	}
	return invalidated.ID == "" || provided.ID == "" || provided.ID == invalidated.ID
}

// Result is one delivery to a subscriber: the refreshed data, or the last
// error for the query. Errors are never retried automatically.
type Result struct {
	Data any
	Err  error
}

// FetchFunc loads the value of one query key from the server.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is a tag-addressed cache of server responses. Entries are keyed by
// query, tagged by resource type (and id for single-entity fetches), and
// refetched in the background when a mutation invalidates a matching tag.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	tags     []Tag
	fetch    FetchFunc
	subs     map[*Subscription]bool
	has      bool
	last     Result
	inflight bool
	waiting  bool // an invalidation arrived while a fetch was running
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Subscribe registers interest in a query key. The subscriber receives the
// cached value immediately when one exists; otherwise a fetch is started.
// Concurrent subscribers to the same key share a single network call.
func (c *Cache) Subscribe(ctx context.Context, key string, tags []Tag, fetch FetchFunc) *Subscription {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			tags:  tags,
			fetch: fetch,
			subs:  make(map[*Subscription]bool),
		}
		c.entries[key] = e
	}
	sub := &Subscription{cache: c, entry: e, ch: make(chan Result, 1)}
	e.subs[sub] = true

	if e.has {
		sub.deliver(e.last)
		c.mu.Unlock()
		return sub
	}
	start := !e.inflight
	if start {
		e.inflight = true
	}
	c.mu.Unlock()

	if start {
		go c.run(ctx, e)
	}
	return sub
}

// Invalidate re-runs every subscribed query whose tags match one of the
// invalidated tags. A matching entry without live subscribers is dropped
// instead, so the next subscriber refetches rather than seeing the stale
// value.
func (c *Cache) Invalidate(tags ...Tag) {
	c.mu.Lock()
	var hit []*entry
	for key, e := range c.entries {
		if !tagsMatch(e.tags, tags) {
			continue
		}
		if len(e.subs) == 0 {
			delete(c.entries, key)
			continue
		}
		hit = append(hit, e)
	}
	var start []*entry
	for _, e := range hit {
		if e.inflight {
			e.waiting = true
			continue
		}
		e.inflight = true
		start = append(start, e)
	}
	c.mu.Unlock()

	for _, e := range start {
		go c.run(context.Background(), e)
	}
}

func tagsMatch(provided, invalidated []Tag) bool {
	for _, p := range provided {
		for _, inv := range invalidated {
			if p.matches(inv) {
				return true
			}
		}
	}
	return false
}

// run executes one fetch for an entry and fans the result out. If an
// invalidation arrived while the fetch was in flight, one more round runs so
// subscribers never miss the latest write.
func (c *Cache) run(ctx context.Context, e *entry) {
	for {
		data, err := e.fetch(ctx)

		c.mu.Lock()
		e.has = true
		e.last = Result{Data: data, Err: err}
		again := e.waiting
		e.waiting = false
		if !again {
			e.inflight = false
		}
		subs := make([]*Subscription, 0, len(e.subs))
		for sub := range e.subs {
			subs = append(subs, sub)
		}
		c.mu.Unlock()

		for _, sub := range subs {
			sub.deliver(e.last)
		}
		if !again {
			return
		}
	}
}

// Subscription is one live consumer of a query key.
type Subscription struct {
	cache  *Cache
	entry  *entry
	ch     chan Result
	mu     sync.Mutex
	closed bool
}

// Updates delivers the current value and every refresh. Slow consumers only
// ever see the most recent result.
func (s *Subscription) Updates() <-chan Result { return s.ch }

// Close unsubscribes. Pending refetch cycles stop notifying this consumer.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cache.mu.Lock()
	delete(s.entry.subs, s)
	s.cache.mu.Unlock()
}

// deliver conflates: an unread older result is replaced by the newer one.
func (s *Subscription) deliver(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- res:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- res
	}
}
