package service

import (
	"container/list"
	"sync"

	"github.com/okian/wolfwise/internal/domain/lineup"
)

// resultCache keeps the latest reconstruction of the most recently refreshed
// games.
type resultCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front is most recent
	games   map[string]*list.Element
}

func newResultCache(size int) *resultCache {
	if size < 1 {
		size = 1
	}
	return &resultCache{maxSize: size, order: list.New(), games: make(map[string]*list.Element)}
}

func (c *resultCache) put(res lineup.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.games[res.GameID]; ok {
		el.Value = res
		c.order.MoveToFront(el)
		return
	}
	if len(c.games) >= c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.games, oldest.Value.(lineup.Result).GameID)
	}
	c.games[res.GameID] = c.order.PushFront(res)
}

func (c *resultCache) get(gameID string) (lineup.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.games[gameID]
	if !ok {
		return lineup.Result{}, false
	}
	return el.Value.(lineup.Result), true
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.games)
}
