// Package cache holds resolved detail posts so navigating back to a post,
// or onto a prefetched neighbor, never costs a network round trip.
package cache

import (
	"container/list"
	"sync"

	"github.com/glabrego/postdeck/internal/post"
)

const defaultCapacity = 512

// Store is an LRU map of post id to detail-form post. Writes for the same
// id are last-write-wins; entries without an id are silently ignored. The
// resolver is the only writer, but bubbletea commands run on their own
// goroutines, so access is mutex-guarded.
type Store struct {
	mu       sync.Mutex
	capacity int
	index    map[string]*list.Element
	order    *list.List // front = most recently used
}

type record struct {
	id   string
	post post.Post
}

// New returns a store bounded to capacity entries. Non-positive capacities
// fall back to the default.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		capacity: capacity,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Put stores one post, overwriting any entry with the same id.
func (s *Store) Put(p post.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
}

// PutMany stores a batch of posts in one locked pass.
func (s *Store) PutMany(posts []post.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range posts {
		s.put(p)
	}
}

func (s *Store) put(p post.Post) {
	if p.ID == "" {
		return
	}
	if elem, ok := s.index[p.ID]; ok {
		elem.Value.(*record).post = p
		s.order.MoveToFront(elem)
		return
	}
	s.index[p.ID] = s.order.PushFront(&record{id: p.ID, post: p})
	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*record).id)
	}
}

// Get returns the cached post for id, marking it recently used.
func (s *Store) Get(id string) (post.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.index[id]
	if !ok {
		return post.Post{}, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*record).post, true
}

// Has reports whether id is cached without touching recency.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]*list.Element)
	s.order.Init()
}

// Stats describes the store's current contents.
type Stats struct {
	Count int
	IDs   []string
}

// Stats returns the entry count and ids in most-recently-used order.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{Count: s.order.Len(), IDs: make([]string, 0, s.order.Len())}
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		stats.IDs = append(stats.IDs, elem.Value.(*record).id)
	}
	return stats
}
