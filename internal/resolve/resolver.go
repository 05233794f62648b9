// Package resolve turns a committed selection into full detail content,
// preferring the cache over the network and prefetching the selection's
// view neighbors for zero-latency follow-up navigation.
package resolve

import (
	"context"
	"fmt"

	"github.com/glabrego/postdeck/internal/cache"
	"github.com/glabrego/postdeck/internal/post"
)

// Client is the read API surface the resolver needs.
type Client interface {
	GetDetail(ctx context.Context, id string, surroundingIDs []string) (post.Post, []post.Post, error)
}

type Resolver struct {
	client Client
	cache  *cache.Store
}

func New(client Client, store *cache.Store) *Resolver {
	return &Resolver{client: client, cache: store}
}

// Resolution carries the resolved detail plus whatever neighbor data came
// along. TargetID tags which selection the resolution answers so the caller
// can discard stale arrivals.
type Resolution struct {
	TargetID  string
	Detail    post.Post
	Neighbors []post.Post
}

// NeighborIDs returns the ids immediately before and after the active post
// in the view, by position. An active post not present in the view has no
// neighbors. Coinciding ids are deduplicated.
func NeighborIDs(view []post.Post, activeID string) []string {
	at := -1
	for i, p := range view {
		if p.ID == activeID {
			at = i
			break
		}
	}
	if at < 0 {
		return nil
	}

	ids := make([]string, 0, 2)
	if at > 0 {
		ids = append(ids, view[at-1].ID)
	}
	if at < len(view)-1 {
		next := view[at+1].ID
		if len(ids) == 0 || ids[0] != next {
			ids = append(ids, next)
		}
	}
	return ids
}

// Resolve returns detail for the active post. Cache hit: the cached detail
// plus whichever neighbors are also cached, with no network traffic at all.
// Cache miss: one round trip fetching the post and its neighbors together,
// after which everything returned is cached. A fetch failure propagates
// without writing anything.
func (r *Resolver) Resolve(ctx context.Context, view []post.Post, active post.Post) (Resolution, error) {
	if active.ID == "" {
		return Resolution{}, fmt.Errorf("resolve detail: post has no id")
	}
	neighborIDs := NeighborIDs(view, active.ID)

	if detail, ok := r.cache.Get(active.ID); ok {
		res := Resolution{TargetID: active.ID, Detail: detail}
		for _, id := range neighborIDs {
			if n, cached := r.cache.Get(id); cached {
				res.Neighbors = append(res.Neighbors, n)
			}
		}
		return res, nil
	}

	detail, neighbors, err := r.client.GetDetail(ctx, active.ID, neighborIDs)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve detail for %s: %w", active.ID, err)
	}

	r.cache.Put(detail)
	r.cache.PutMany(neighbors)
	return Resolution{TargetID: active.ID, Detail: detail, Neighbors: neighbors}, nil
}
