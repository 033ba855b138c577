package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"welth/internal/cache"
	"welth/internal/core"
)

// Store is a backend that serves every dashboard port.
type Store interface {
	AccountReader
	TransactionLister
	DefaultAccountUpdater
}

const (
	keyAccounts     = "accounts"
	keyTransactions = "transactions"
)

// Detach returns a context that ignores the cancellation of ctx but keeps
// its values and deadline. Work shared between requests runs under it so
// that one caller going away does not fail the others.
func Detach(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// Cached keeps the account and transaction lists of a Store in an LRU+TTL
// cache. A successful default update purges both lists.
//
// Every Invalidate starts a new generation. A load that began in an older
// generation hands its result to its callers but never stores it.
type Cached struct {
	next     Store
	accounts *cache.LRUCache[[]core.Account]
	txs      *cache.LRUCache[[]core.Transaction]
	loads    singleflight.Group

	mu  sync.Mutex // orders stores against Invalidate
	gen atomic.Uint64
}

var _ Store = (*Cached)(nil)

// NewCached wraps next. The caches are registered with m for cleanup when m is not nil.
func NewCached(next Store, ttl time.Duration, m *cache.Manager) *Cached {
	c := &Cached{
		next:     next,
		accounts: cache.NewLRUCache[[]core.Account](1, ttl),
		txs:      cache.NewLRUCache[[]core.Transaction](1, ttl),
	}
	if m != nil {
		m.Register(c.accounts)
		m.Register(c.txs)
	}
	return c
}

// load serves key from lru, or fetches it once for all concurrent callers.
// Each caller stops waiting when its own ctx is done.
func load[T any](ctx context.Context, c *Cached, key string, lru *cache.LRUCache[[]T], fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := lru.Get(key); ok {
		return append([]T(nil), v...), nil
	}

	gen := c.gen.Load()
	ch := c.loads.DoChan(key, func() (any, error) {
		fctx, cancel := Detach(ctx)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen.Load() == gen {
			lru.Set(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return append([]T(nil), r.Val.([]T)...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cached) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return load(ctx, c, keyAccounts, c.accounts, c.next.ListAccounts)
}

// GetAccount is served from the cached list when present.
func (c *Cached) GetAccount(ctx context.Context, id string) (core.Account, error) {
	if v, ok := c.accounts.Get(keyAccounts); ok {
		for _, a := range v {
			if a.ID == id {
				return a, nil
			}
		}
		return core.Account{}, core.ErrAccountNotFound
	}
	return c.next.GetAccount(ctx, id)
}

func (c *Cached) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return load(ctx, c, keyTransactions, c.txs, c.next.ListTransactions)
}

func (c *Cached) UpdateDefaultAccount(ctx context.Context, id string) (UpdateResult, error) {
	res, err := c.next.UpdateDefaultAccount(ctx, id)
	if err == nil && res.Success {
		c.Invalidate()
		slog.DebugContext(ctx, "Ledger cache invalidated", "account_id", id)
	}
	return res, err
}

// Invalidate drops the cached lists and detaches loads still in flight, so
// later reads fetch again.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen.Add(1)
	c.accounts.Purge()
	c.txs.Purge()
	c.loads.Forget(keyAccounts)
	c.loads.Forget(keyTransactions)
}

// Entries returns the number of lists currently cached.
func (c *Cached) Entries() int {
	return c.accounts.Size() + c.txs.Size()
}

// Stats sums the lookup counters of both lists.
func (c *Cached) Stats() cache.Stats {
	a, t := c.accounts.Stats(), c.txs.Stats()
	return cache.Stats{Hits: a.Hits + t.Hits, Misses: a.Misses + t.Misses}
}
