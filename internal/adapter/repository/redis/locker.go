package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/iho/stockledger/internal/domain"
)

// InvoiceLocker implements usecase.InvoiceLocker with a Redis lock per invoice.
type InvoiceLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
	refresh time.Duration
}

// LockerOption configures an InvoiceLocker.
type LockerOption func(*InvoiceLocker)

// WithLockRetry makes Lock retry up to n times, waiting backoff between attempts.
func WithLockRetry(n int, backoff time.Duration) LockerOption {
	return func(l *InvoiceLocker) {
		l.retries = n
		l.backoff = backoff
	}
}

// WithLockRefresh sets how often a held lock has its ttl extended. Zero
// turns refreshing off.
func WithLockRefresh(every time.Duration) LockerOption {
	return func(l *InvoiceLocker) {
		l.refresh = every
	}
}

// NewInvoiceLocker creates an InvoiceLocker whose locks expire after ttl
// unless the holder is still running. Held locks are refreshed every ttl/2.
func NewInvoiceLocker(client *redis.Client, ttl time.Duration, opts ...LockerOption) *InvoiceLocker {
	l := &InvoiceLocker{
		locker:  redislock.New(client),
		ttl:     ttl,
		retries: 5,
		backoff: 100 * time.Millisecond,
		refresh: ttl / 2,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func invoiceLockKey(invoiceID string) string {
	return "lock:invoice:" + invoiceID
}

// Lock obtains the lock for invoiceID. It returns domain.ErrInvoiceLocked
// when another holder keeps it past the retry budget.
func (l *InvoiceLocker) Lock(ctx context.Context, invoiceID string) (func(context.Context) error, error) {
	strategy := redislock.NoRetry()
	if l.retries > 0 {
		strategy = redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries)
	}

	lock, err := l.locker.Obtain(ctx, invoiceLockKey(invoiceID), l.ttl, &redislock.Options{
		RetryStrategy: strategy,
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvoiceLocked, invoiceID)
		}
		return nil, fmt.Errorf("obtain invoice lock: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, stop, done)

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
		})
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// keepAlive extends lock until stop is closed or a refresh fails. A failed
// refresh means the lock expired or was taken over.
func (l *InvoiceLocker) keepAlive(lock *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if l.refresh <= 0 {
		return
	}

	ticker := time.NewTicker(l.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.refresh)
			err := lock.Refresh(ctx, l.ttl, nil)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
