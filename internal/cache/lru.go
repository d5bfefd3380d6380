package cache

import (
	"container/list"
	"sync"
	"time"
)

// Store is a bounded TTL cache with LRU eviction. The zero value is not
// usable; create with New.
type Store[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
}

type entry[T any] struct {
	key     string
	value   T
	staleAt time.Time
}

func New[T any](capacity int, ttl time.Duration) *Store[T] {
	return &Store[T]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the live value for key. An expired entry is dropped and
// reported as a miss.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	el, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])
	if time.Now().After(e.staleAt) {
		s.drop(el)
		return zero, false
	}
	s.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key, restarting its TTL, and evicts the least
// recently used entry when over capacity.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry[T]{key: key, value: value, staleAt: time.Now().Add(s.ttl)}
	if el, ok := s.entries[key]; ok {
		el.Value = e
		s.order.MoveToFront(el)
		return
	}

	s.entries[key] = s.order.PushFront(e)
	for s.order.Len() > s.capacity {
		s.drop(s.order.Back())
	}
}

func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.drop(el)
	}
}

// Purge drops every entry. Used when a write invalidates the whole
// cached dataset.
func (s *Store[T]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// EvictExpired removes entries past their TTL and returns how many.
func (s *Store[T]) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry[T]).staleAt) {
			s.drop(el)
			evicted++
		}
		el = prev
	}
	return evicted
}

// Len returns the number of entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) drop(el *list.Element) {
	delete(s.entries, el.Value.(*entry[T]).key)
	s.order.Remove(el)
}
