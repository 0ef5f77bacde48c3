// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 10 * time.Second

// FetchFunc reads one snapshot for owner.
type FetchFunc[T any] func(ctx context.Context, owner solana.PublicKey) (T, error)

// Poller periodically fetches a snapshot per owner and fans it out to
// subscribers. Subscribers of the same owner share one scheduled job.
type Poller[T any] struct {
	name      string
	fetch     FetchFunc[T]
	scheduler *Scheduler
	logger    *zap.Logger
	timeout   time.Duration

	mu    sync.Mutex
	feeds map[solana.PublicKey]*feed[T]
}

type feed[T any] struct {
	latest atomic.Pointer[T]
	mu     sync.Mutex
	subs   map[string]func(T)
	job    *Job
	key    string
}

// Subscription is returned by Start. Cancel is idempotent.
type Subscription struct {
	ID     string
	once   sync.Once
	cancel func()
}

// Cancel stops delivery to this subscriber.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// New creates a poller named name (used as job key prefix and logger name).
func New[T any](name string, scheduler *Scheduler, fetch FetchFunc[T], logger *zap.Logger) *Poller[T] {
	return &Poller[T]{
		name:      name,
		fetch:     fetch,
		scheduler: scheduler,
		logger:    logger.Named(name),
		timeout:   defaultFetchTimeout,
		feeds:     make(map[solana.PublicKey]*feed[T]),
	}
}

// Start subscribes onSnapshot to owner's feed. The first fetch runs immediately;
// a late subscriber also receives the latest snapshot right away.
func (p *Poller[T]) Start(owner solana.PublicKey, onSnapshot func(T)) *Subscription {
	id := uuid.New().String()

	p.mu.Lock()
	f, ok := p.feeds[owner]
	if !ok {
		// The key is unique per feed so a feed being released cannot
		// unregister the job of a feed created for the same owner after it.
		f = &feed[T]{subs: make(map[string]func(T)), key: p.name + ":" + owner.String() + ":" + id}
		p.feeds[owner] = f
	}
	f.mu.Lock()
	f.subs[id] = onSnapshot
	f.mu.Unlock()
	if !ok {
		f.job = p.scheduler.Schedule(f.key, func(ctx context.Context) {
			p.poll(ctx, owner, f)
		})
	}
	p.mu.Unlock()

	if ok {
		if snap := f.latest.Load(); snap != nil {
			p.deliver(id, onSnapshot, *snap)
		}
	}

	p.logger.Debug("Subscribed", zap.String("owner", owner.String()), zap.String("subscription_id", id))
	return &Subscription{ID: id, cancel: func() { p.unsubscribe(owner, id) }}
}

// Latest returns the most recent snapshot for owner, if any.
func (p *Poller[T]) Latest(owner solana.PublicKey) (T, bool) {
	p.mu.Lock()
	f, ok := p.feeds[owner]
	p.mu.Unlock()
	if ok {
		if snap := f.latest.Load(); snap != nil {
			return *snap, true
		}
	}
	var zero T
	return zero, false
}

func (p *Poller[T]) unsubscribe(owner solana.PublicKey, id string) {
	p.mu.Lock()
	f, ok := p.feeds[owner]
	if !ok {
		p.mu.Unlock()
		return
	}
	f.mu.Lock()
	delete(f.subs, id)
	empty := len(f.subs) == 0
	f.mu.Unlock()
	if empty {
		delete(p.feeds, owner)
	}
	p.mu.Unlock()

	if empty {
		f.job.Remove()
		p.logger.Debug("Feed stopped", zap.String("owner", owner.String()), zap.String("job", f.key))
	}
}

func (p *Poller[T]) poll(ctx context.Context, owner solana.PublicKey, f *feed[T]) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	snap, err := p.fetch(fetchCtx, owner)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			p.logger.Debug("Fetch aborted", zap.String("owner", owner.String()))
			return
		}
		p.logger.Warn("Fetch failed, retrying next tick",
			zap.String("owner", owner.String()),
			zap.Error(err))
		return
	}
	if ctx.Err() != nil {
		return
	}

	f.latest.Store(&snap)

	f.mu.Lock()
	subs := make(map[string]func(T), len(f.subs))
	for id, fn := range f.subs {
		subs[id] = fn
	}
	f.mu.Unlock()

	for id, fn := range subs {
		p.deliver(id, fn, snap)
	}
}

func (p *Poller[T]) deliver(id string, fn func(T), snap T) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Subscriber panicked",
				zap.String("subscription_id", id),
				zap.Any("panic", r))
		}
	}()
	fn(snap)
}
